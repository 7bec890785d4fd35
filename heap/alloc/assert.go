//go:build debug

package alloc

import "fmt"

// assertFree panics if p is not a free block.
// Only enabled with -tags debug.
func (a *Allocator) assertFree(method string, p Ptr) {
	if a.isAlloc(p) {
		panic(fmt.Sprintf("%s: block 0x%X is allocated", method, uint32(p)))
	}
}
