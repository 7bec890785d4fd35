package alloc

import "github.com/joshuapare/segheap/internal/format"

// Block layout accessors. All raw word access to the region goes through
// these helpers; a.data must be refreshed after every region growth.

func (a *Allocator) word(off uint32) uint32 {
	return format.ReadU32(a.data, int(off))
}

func (a *Allocator) setWord(off, v uint32) {
	format.PutU32(a.data, int(off), v)
}

// headerOff returns the offset of p's header word.
func headerOff(p Ptr) uint32 {
	return uint32(p) - WordSize
}

// footerOff returns the offset of the footer of a block of the given size.
func footerOff(p Ptr, size uint32) uint32 {
	return uint32(p) + size - AlignmentBytes
}

func (a *Allocator) header(p Ptr) uint32 {
	return a.word(headerOff(p))
}

func (a *Allocator) blockSize(p Ptr) uint32 {
	return format.TagSize(a.header(p))
}

func (a *Allocator) isAlloc(p Ptr) bool {
	return format.TagAlloc(a.header(p))
}

func (a *Allocator) isPrevAlloc(p Ptr) bool {
	return format.TagPrevAlloc(a.header(p))
}

// nextBlock returns the payload offset of the address-next block.
// For the last real block this is the epilogue.
func (a *Allocator) nextBlock(p Ptr) Ptr {
	return p + Ptr(a.blockSize(p))
}

// prevBlock returns the payload offset of the address-previous block.
// Valid only when that block is free: allocated blocks have no footer.
func (a *Allocator) prevBlock(p Ptr) Ptr {
	return p - Ptr(format.TagSize(a.word(uint32(p)-AlignmentBytes)))
}

// markFree writes the header and footer of a free block.
func (a *Allocator) markFree(p Ptr, size uint32, prevAlloc bool) {
	a.setWord(headerOff(p), format.Pack(size, prevAlloc, false))
	a.setWord(footerOff(p, size), format.Pack(size, false, false))
}

// markAlloc writes the header of an allocated block.
func (a *Allocator) markAlloc(p Ptr, size uint32, prevAlloc bool) {
	a.setWord(headerOff(p), format.Pack(size, prevAlloc, true))
}

// setPrevAlloc updates the previous-allocated bit in p's header. p may be the epilogue.
func (a *Allocator) setPrevAlloc(p Ptr, prevAlloc bool) {
	h := a.header(p)
	a.setWord(headerOff(p), format.Pack(format.TagSize(h), prevAlloc, format.TagAlloc(h)))
}

// Free-list links live in the first two payload words of a free block.

func (a *Allocator) linkPrev(p Ptr) Ptr {
	a.assertFree("linkPrev", p)
	return Ptr(a.word(uint32(p)))
}

func (a *Allocator) linkNext(p Ptr) Ptr {
	a.assertFree("linkNext", p)
	return Ptr(a.word(uint32(p) + WordSize))
}

func (a *Allocator) setLinkPrev(p, v Ptr) {
	a.assertFree("setLinkPrev", p)
	a.setWord(uint32(p), uint32(v))
}

func (a *Allocator) setLinkNext(p, v Ptr) {
	a.assertFree("setLinkNext", p)
	a.setWord(uint32(p)+WordSize, uint32(v))
}

// adjustSize converts a payload request into a block size.
func adjustSize(size int) (uint32, bool) {
	if size > MaxRequestSize {
		return 0, false
	}
	return uint32(max(MinBlockSize, format.Align8(size+WordSize))), true
}

// payloadCap returns the usable payload bytes of an allocated block of the given size.
func payloadCap(size uint32) int {
	return int(size) - WordSize
}
