package alloc

// Free returns block p to the heap and merges it with free neighbors.
// Free(Nil) is a no-op. p must be a live pointer from Alloc or Realloc;
// nothing on this path validates that.
func (a *Allocator) Free(p Ptr) {
	if p == Nil {
		return
	}
	a.stats.FreeCalls++
	a.free(p)
}

// free releases live block p without touching the call counters.
func (a *Allocator) free(p Ptr) {
	size := a.blockSize(p)
	a.markFree(p, size, a.isPrevAlloc(p))
	a.setPrevAlloc(a.nextBlock(p), false)
	a.coalesce(p)
}

// coalesce merges free block p with free address-neighbors and links the
// result into the index. p must be marked free and not linked. Returns the
// payload offset of the merged block.
func (a *Allocator) coalesce(p Ptr) Ptr {
	size := a.blockSize(p)
	prevFree := !a.isPrevAlloc(p)
	next := a.nextBlock(p)
	nextFree := !a.isAlloc(next)

	switch {
	case !prevFree && !nextFree:
		// Nothing to merge.

	case !prevFree && nextFree:
		a.stats.CoalesceForward++
		a.removeFree(next)
		size += a.blockSize(next)
		a.markFree(p, size, true)

	case prevFree && !nextFree:
		a.stats.CoalesceBackward++
		prev := a.prevBlock(p)
		a.removeFree(prev)
		size += a.blockSize(prev)
		a.markFree(prev, size, a.isPrevAlloc(prev))
		p = prev

	default:
		a.stats.CoalesceForward++
		a.stats.CoalesceBackward++
		prev := a.prevBlock(p)
		a.removeFree(prev)
		a.removeFree(next)
		size += a.blockSize(prev) + a.blockSize(next)
		a.markFree(prev, size, a.isPrevAlloc(prev))
		p = prev
	}

	a.insertFree(p)
	return p
}
