package alloc

import (
	"fmt"
	"maps"
	"slices"

	"github.com/joshuapare/segheap/internal/format"
)

// ViolationKind classifies a heap validation failure.
type ViolationKind string

const (
	KindPrologue     ViolationKind = "Prologue"
	KindEpilogue     ViolationKind = "Epilogue"
	KindAlignment    ViolationKind = "Alignment"
	KindSize         ViolationKind = "Size"
	KindBounds       ViolationKind = "Bounds"
	KindTagMismatch  ViolationKind = "TagMismatch"
	KindPrevAllocBit ViolationKind = "PrevAllocBit"
	KindUncoalesced  ViolationKind = "Uncoalesced"
	KindListNotFree  ViolationKind = "ListNotFree"
	KindListBucket   ViolationKind = "ListBucket"
	KindListOrder    ViolationKind = "ListOrder"
	KindListLink     ViolationKind = "ListLink"
	KindListCycle    ViolationKind = "ListCycle"
	KindIndexMissing ViolationKind = "IndexMissing"
	KindIndexStray   ViolationKind = "IndexStray"
)

// Violation is a single structural inconsistency found by Validate.
type Violation struct {
	Kind ViolationKind
	Off  int // payload or word offset, -1 when not tied to a location
	Msg  string
}

func (v Violation) Error() string {
	if v.Off >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", v.Kind, v.Off, v.Msg)
	}
	return fmt.Sprintf("%s: %s", v.Kind, v.Msg)
}

// Check validates the heap and reports whether it is consistent. With
// verbose set, every violation is logged at warn level and the block
// layout at debug level. Check never modifies the heap.
func (a *Allocator) Check(verbose bool) bool {
	vs := a.Validate()
	if verbose {
		for _, v := range vs {
			a.log.Warn("heap violation", "kind", string(v.Kind), "off", v.Off, "msg", v.Msg)
		}
		for _, b := range a.Blocks() {
			a.log.Debug("block", "off", b.Off, "size", b.Size, "allocated", b.Alloc)
		}
	}
	return len(vs) == 0
}

// Validate walks the region in address order and the free-list index
// bucket by bucket, and returns every inconsistency found. It reads the heap
// defensively and does not panic on corrupted tags or links.
func (a *Allocator) Validate() []Violation {
	c := checker{a: a, data: a.data}
	walkFree := c.walkBlocks()
	if walkFree == nil {
		return c.vs
	}
	linked := c.walkLists(walkFree)
	for _, p := range slices.Sorted(maps.Keys(walkFree)) {
		if !linked[p] {
			c.add(KindIndexMissing, p, "free block is not linked in any bucket")
		}
	}
	return c.vs
}

type checker struct {
	a    *Allocator
	data []byte
	vs   []Violation
}

func (c *checker) add(kind ViolationKind, off int, msg string, args ...any) {
	c.vs = append(c.vs, Violation{Kind: kind, Off: off, Msg: fmt.Sprintf(msg, args...)})
}

func (c *checker) read(off int) (uint32, bool) {
	v, err := format.ReadU32Checked(c.data, off)
	return v, err == nil
}

// walkBlocks checks every block from the prologue to the epilogue and
// returns the set of free blocks seen. Returns nil if the walk could not
// start.
func (c *checker) walkBlocks() map[int]bool {
	n := len(c.data)
	base := int(c.a.base)
	if n < base+2*WordSize {
		c.add(KindBounds, -1, "region of %d bytes cannot hold roots and sentinels", n)
		return nil
	}

	pro, _ := c.read(base)
	if format.TagSize(pro) != 0 || !format.TagAlloc(pro) {
		c.add(KindPrologue, base, "prologue tag %#x, want size 0 allocated", pro)
	}

	free := make(map[int]bool)
	prevAlloc := true
	for p := base + 2*WordSize; ; {
		hdr := p - WordSize
		tag, ok := c.read(hdr)
		if !ok {
			c.add(KindBounds, hdr, "block walk ran past region end (%d bytes)", n)
			break
		}
		size := int(format.TagSize(tag))

		if size == 0 {
			if hdr != n-WordSize {
				c.add(KindEpilogue, hdr, "zero-size block %d bytes before region end", n-WordSize-hdr)
			}
			if !format.TagAlloc(tag) {
				c.add(KindEpilogue, hdr, "epilogue not marked allocated")
			}
			if format.TagPrevAlloc(tag) != prevAlloc {
				c.add(KindPrevAllocBit, hdr, "epilogue prev-alloc bit %v, previous block allocated=%v",
					format.TagPrevAlloc(tag), prevAlloc)
			}
			break
		}

		if !format.IsAligned(p) {
			c.add(KindAlignment, p, "payload not %d-byte aligned", AlignmentBytes)
		}
		if size < MinBlockSize || !format.IsAligned(size) {
			c.add(KindSize, p, "block size %d invalid", size)
			break
		}
		if hdr+size > n-WordSize {
			c.add(KindBounds, p, "block of %d bytes overlaps epilogue or region end", size)
			break
		}
		if format.TagPrevAlloc(tag) != prevAlloc {
			c.add(KindPrevAllocBit, p, "prev-alloc bit %v, previous block allocated=%v",
				format.TagPrevAlloc(tag), prevAlloc)
		}

		alloc := format.TagAlloc(tag)
		if !alloc {
			ftr, _ := c.read(p + size - AlignmentBytes)
			if int(format.TagSize(ftr)) != size || format.TagAlloc(ftr) {
				c.add(KindTagMismatch, p, "header size %d free, footer size %d alloc=%v",
					size, format.TagSize(ftr), format.TagAlloc(ftr))
			}
			if !prevAlloc {
				c.add(KindUncoalesced, p, "free block follows another free block")
			}
			free[p] = true
		}
		prevAlloc = alloc
		p += size
	}
	return free
}

// walkLists checks every bucket list and returns the set of linked blocks.
func (c *checker) walkLists(walkFree map[int]bool) map[int]bool {
	n := len(c.data)
	first := int(c.a.base) + 2*WordSize
	maxSteps := n/MinBlockSize + 1
	linked := make(map[int]bool)

	for i := range c.a.lists {
		head, _ := c.read(int(rootOff(i)))
		prev, prevSize := 0, 0
		for p, steps := int(head), 0; p != int(Nil); steps++ {
			if steps > maxSteps {
				c.add(KindListCycle, p, "bucket %d longer than the region allows", i)
				break
			}
			if p < first || p+2*WordSize > n || !format.IsAligned(p) {
				c.add(KindListLink, p, "bucket %d link points outside the heap", i)
				break
			}
			if linked[p] {
				c.add(KindListCycle, p, "block linked twice (bucket %d)", i)
				break
			}
			linked[p] = true

			tag, _ := c.read(p - WordSize)
			size := int(format.TagSize(tag))
			if format.TagAlloc(tag) {
				c.add(KindListNotFree, p, "bucket %d holds an allocated block", i)
			}
			if b := bucketIndex(uint32(size), c.a.lists); b != i {
				c.add(KindListBucket, p, "size %d belongs in bucket %d, found in %d", size, b, i)
			}
			if size < prevSize {
				c.add(KindListOrder, p, "size %d after size %d in bucket %d", size, prevSize, i)
			}
			if back, _ := c.read(p); int(back) != prev {
				c.add(KindListLink, p, "prev link 0x%X, want 0x%X", back, prev)
			}
			if !walkFree[p] {
				c.add(KindIndexStray, p, "bucket %d links a block the address walk did not find free", i)
			}

			next, _ := c.read(p + WordSize)
			prev, prevSize = p, size
			p = int(next)
		}
	}
	return linked
}
