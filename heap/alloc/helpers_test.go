package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segheap/region"
)

// Offsets of a fresh default heap: 20 bucket roots (80 bytes), prologue at
// 80, first header at 84, first payload at 88, one 4096-byte free block.
const (
	firstPayload  = 88
	initialFree   = MinGrowthBytes
	initialRegion = firstPayload + initialFree
)

func newTestAllocator(t testing.TB) *Allocator {
	t.Helper()
	a, err := New(region.NewMem(0), nil)
	require.NoError(t, err)
	require.Empty(t, a.Validate())
	return a
}

func mustAlloc(t testing.TB, a *Allocator, size int) Ptr {
	t.Helper()
	p, err := a.Alloc(size)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	return p
}

func requireValid(t testing.TB, a *Allocator) {
	t.Helper()
	vs := a.Validate()
	require.Empty(t, vs, "heap violations: %v", vs)
}

func kinds(vs []Violation) []ViolationKind {
	out := make([]ViolationKind, len(vs))
	for i, v := range vs {
		out[i] = v.Kind
	}
	return out
}

func freeBlocks(a *Allocator) []BlockInfo {
	var out []BlockInfo
	for _, b := range a.Blocks() {
		if !b.Alloc {
			out = append(out, b)
		}
	}
	return out
}

// bucketList returns the payload offsets linked in bucket i, head first.
func bucketList(a *Allocator, i int) []Ptr {
	var out []Ptr
	for p := a.head(i); p != Nil; p = a.linkNext(p) {
		out = append(out, p)
	}
	return out
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
