// Package alloc implements a segregated free-list heap allocator over a
// single growable region.
//
// # Overview
//
// The allocator hands out 8-byte aligned payloads from a region.Region and
// keeps every piece of bookkeeping inside the region itself: boundary tags
// around each block, a table of bucket roots at the start of the region, and
// free-list links stored in the payload bytes of free blocks.
//
// # Allocator Interface
//
//   - Alloc(size): Allocate a block with at least size payload bytes
//   - Free(p): Return a block, merging it with free neighbors
//   - Realloc(p, size): Resize a block, in place when possible
//   - Check(verbose): Validate heap structure (diagnostics only)
//
// # Region Layout
//
//	+-------------------+----------+--------+-----+--------+----------+
//	| bucket roots      | prologue | block  | ... | block  | epilogue |
//	| ListCount words   | 0/a      |        |     |        | 0/a      |
//	+-------------------+----------+--------+-----+--------+----------+
//
// The prologue and epilogue are zero-size allocated sentinel words, so every
// real block has well-defined neighbors.
//
// # Block Layout
//
//	allocated:  [header][payload ...................]
//	free:       [header][prev link][next link] ... [footer]
//
// Header and footer words pack the block size with flag bits (see
// internal/format). Allocated blocks have no footer; instead each header
// records whether the previous block is allocated, and the previous footer
// is read only when that bit is clear.
//
// # Size Classes
//
// Bucket i holds free blocks with size in [2^i, 2^(i+1)); the last bucket
// holds everything at or above its lower bound. Each bucket is a doubly
// linked list kept in ascending size order, so the first fit found in a
// bucket is also the best fit within it:
//
//	Bucket 4:   16 -   31 bytes
//	Bucket 5:   32 -   63 bytes
//	...
//	Bucket 12:   4 -    8 KB
//	...
//	Bucket 19: 512 KB+
//
// # Usage Example
//
//	a, err := alloc.New(region.NewMem(0), nil)
//	if err != nil {
//	    return err
//	}
//
//	p, err := a.Alloc(100)
//	if err != nil {
//	    return err
//	}
//	copy(a.Payload(p), data)
//
//	p, err = a.Realloc(p, 400)
//	...
//	a.Free(p)
//
// # Errors
//
// Alloc and Realloc report ErrOutOfMemory when the region cannot grow; the
// heap is left untouched. Free performs no validation: freeing a pointer
// twice or freeing a pointer that Alloc never returned corrupts the heap and
// is only detected after the fact by Check.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must serialize access,
// for example with a single mutex around the whole allocator.
package alloc
