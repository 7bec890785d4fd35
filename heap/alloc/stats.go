package alloc

import (
	"fmt"
	"io"

	"github.com/joshuapare/segheap/internal/format"
)

// Stats counts allocator operations since New or the last Init.
type Stats struct {
	AllocCalls   int64
	FreeCalls    int64
	ReallocCalls int64

	GrowCalls int64 // region extensions
	GrowBytes int64 // bytes added by region extensions
	FitMisses int64 // allocations that found no fitting free block

	SplitCount       int64
	CoalesceForward  int64 // merges with the address-next block
	CoalesceBackward int64 // merges with the address-previous block

	ReallocShrink      int64
	ReallocGrowInPlace int64
	ReallocCopy        int64
}

// Stats returns a snapshot of the operation counters.
func (a *Allocator) Stats() Stats {
	return a.stats
}

// Usage describes the current heap contents.
type Usage struct {
	RegionBytes  int // total region length, metadata included
	HeapBytes    int // bytes covered by real blocks
	AllocBlocks  int
	FreeBlocks   int
	AllocBytes   int // block bytes of allocated blocks
	FreeBytes    int // block bytes of free blocks
	PayloadBytes int // usable payload of allocated blocks
	LargestFree  int
	BucketCounts []int // free blocks per bucket, by block size
}

// BlockInfo is one block seen by an address-order walk.
type BlockInfo struct {
	Off   int // payload offset
	Size  int
	Alloc bool
}

// Blocks walks the heap in address order. The walk stops at the epilogue or
// at the first block whose tag is unusable, so it is safe on a damaged heap.
func (a *Allocator) Blocks() []BlockInfo {
	var out []BlockInfo
	n := len(a.data)
	for p := int(a.base) + 2*WordSize; ; {
		tag, err := format.ReadU32Checked(a.data, p-WordSize)
		if err != nil {
			break
		}
		size := int(format.TagSize(tag))
		if size < MinBlockSize || p-WordSize+size > n-WordSize {
			break
		}
		out = append(out, BlockInfo{Off: p, Size: size, Alloc: format.TagAlloc(tag)})
		p += size
	}
	return out
}

// Usage summarizes the heap by walking every block.
func (a *Allocator) Usage() Usage {
	u := Usage{
		RegionBytes:  len(a.data),
		BucketCounts: make([]int, a.lists),
	}
	for _, b := range a.Blocks() {
		u.HeapBytes += b.Size
		if b.Alloc {
			u.AllocBlocks++
			u.AllocBytes += b.Size
			u.PayloadBytes += payloadCap(uint32(b.Size))
			continue
		}
		u.FreeBlocks++
		u.FreeBytes += b.Size
		u.LargestFree = max(u.LargestFree, b.Size)
		u.BucketCounts[a.bucketFor(uint32(b.Size))]++
	}
	return u
}

// Dump writes a human readable listing of the heap to w: one line per
// block, then the non-empty buckets.
func (a *Allocator) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "heap %s: region %d bytes, roots %d, base 0x%X\n",
		a.cfg.Name, len(a.data), a.lists, a.base); err != nil {
		return err
	}
	for _, b := range a.Blocks() {
		state := "free"
		if b.Alloc {
			state = "alloc"
		}
		if _, err := fmt.Fprintf(w, "  0x%08X %8d %s\n", b.Off, b.Size, state); err != nil {
			return err
		}
	}
	if len(a.data) < int(a.base) {
		return nil
	}
	for i := range a.lists {
		head := a.head(i)
		if head == Nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "  bucket %2d: head 0x%X\n", i, uint32(head)); err != nil {
			return err
		}
	}
	return nil
}
