package alloc

import "math/bits"

// Free-list index.
//
// The root table occupies the first ListCount words of the region. Root i
// points at the smallest free block of bucket i. Lists are doubly linked and
// sorted ascending by size; equal sizes keep insertion order.

func rootOff(i int) uint32 {
	return uint32(i) * WordSize
}

func (a *Allocator) head(i int) Ptr {
	return Ptr(a.word(rootOff(i)))
}

func (a *Allocator) setHead(i int, p Ptr) {
	a.setWord(rootOff(i), uint32(p))
}

// bucketFor returns the bucket whose size range contains size.
// Monotonic: a larger size never maps to a smaller bucket.
func (a *Allocator) bucketFor(size uint32) int {
	return bucketIndex(size, a.lists)
}

func bucketIndex(size uint32, lists int) int {
	i := bits.Len32(size) - 1
	if i < 0 {
		return 0
	}
	return min(i, lists-1)
}

// insertFree links a free, unlinked block into its bucket, keeping the list
// sorted by size.
func (a *Allocator) insertFree(p Ptr) {
	size := a.blockSize(p)
	i := a.bucketFor(size)

	prev := Nil
	cur := a.head(i)
	for cur != Nil && a.blockSize(cur) <= size {
		prev = cur
		cur = a.linkNext(cur)
	}

	a.setLinkPrev(p, prev)
	a.setLinkNext(p, cur)
	if prev == Nil {
		a.setHead(i, p)
	} else {
		a.setLinkNext(prev, p)
	}
	if cur != Nil {
		a.setLinkPrev(cur, p)
	}
}

// removeFree unlinks a free block. The header must still hold the size the
// block was inserted with.
func (a *Allocator) removeFree(p Ptr) {
	prev := a.linkPrev(p)
	next := a.linkNext(p)

	if prev == Nil {
		a.setHead(a.bucketFor(a.blockSize(p)), next)
	} else {
		a.setLinkNext(prev, next)
	}
	if next != Nil {
		a.setLinkPrev(next, prev)
	}
}

// findFit returns the first block of at least asize bytes, scanning buckets
// upward from asize's own bucket. Within a bucket the first fit is the
// smallest fit. Returns Nil when nothing fits.
func (a *Allocator) findFit(asize uint32) Ptr {
	for i := a.bucketFor(asize); i < a.lists; i++ {
		for p := a.head(i); p != Nil; p = a.linkNext(p) {
			if a.blockSize(p) >= asize {
				return p
			}
		}
	}
	return Nil
}
