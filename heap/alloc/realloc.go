package alloc

// Realloc resizes block p to hold at least size payload bytes.
//
//   - size == 0 frees p and returns Nil
//   - p == Nil behaves like Alloc(size)
//   - shrinking splits the tail off in place when it can form a block
//   - growing absorbs a free next block in place when it is large enough
//   - otherwise the payload moves to a new block
//
// On error p is still allocated and unchanged.
func (a *Allocator) Realloc(p Ptr, size int) (Ptr, error) {
	a.stats.ReallocCalls++

	if size == 0 {
		if p != Nil {
			a.free(p)
		}
		return Nil, nil
	}
	if p == Nil {
		return a.alloc(size)
	}
	if size < 0 {
		return Nil, ErrNegativeSize
	}
	asize, ok := adjustSize(size)
	if !ok {
		return a.alloc(size) // reports ErrOutOfMemory
	}

	oldSize := a.blockSize(p)
	switch {
	case asize == oldSize:
		// Equal block sizes mean equal payload capacity.
		return p, nil

	case asize < oldSize:
		a.shrink(p, oldSize, asize)
		return p, nil
	}

	if a.growInPlace(p, oldSize, asize) {
		return p, nil
	}

	np, err := a.alloc(size)
	if err != nil {
		return Nil, err
	}
	a.stats.ReallocCopy++
	// alloc may have grown the region; Payload reads the fresh slice.
	copy(a.Payload(np), a.Payload(p)[:min(payloadCap(oldSize), size)])
	a.free(p)
	return np, nil
}

// shrink trims block p to asize bytes and frees the tail, unless the tail
// would be smaller than a block.
func (a *Allocator) shrink(p Ptr, oldSize, asize uint32) {
	rest := oldSize - asize
	if rest < MinBlockSize {
		return
	}
	a.stats.ReallocShrink++

	a.markAlloc(p, asize, a.isPrevAlloc(p))
	tail := p + Ptr(asize)
	a.markFree(tail, rest, true)
	a.setPrevAlloc(a.nextBlock(tail), false)
	a.coalesce(tail)
}

// growInPlace extends block p over a free next block when the two together
// hold asize bytes. A leftover of at least MinBlockSize is split off again;
// anything smaller is absorbed.
func (a *Allocator) growInPlace(p Ptr, oldSize, asize uint32) bool {
	next := a.nextBlock(p)
	if a.isAlloc(next) {
		return false
	}
	total := oldSize + a.blockSize(next)
	if total < asize {
		return false
	}
	a.stats.ReallocGrowInPlace++

	a.removeFree(next)
	prevAlloc := a.isPrevAlloc(p)
	if total-asize >= MinBlockSize {
		a.markAlloc(p, asize, prevAlloc)
		tail := p + Ptr(asize)
		// The block after tail already has prevAlloc clear: next was free.
		a.markFree(tail, total-asize, true)
		a.insertFree(tail)
		return true
	}

	a.markAlloc(p, total, prevAlloc)
	a.setPrevAlloc(a.nextBlock(p), true)
	return true
}
