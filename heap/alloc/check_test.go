package alloc

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segheap/internal/format"
	"github.com/joshuapare/segheap/region"
)

func putWord(a *Allocator, off int, v uint32) {
	format.PutU32(a.Region().Bytes(), off, v)
}

// Test_Validate_Clean verifies a busy heap validates without findings.
func Test_Validate_Clean(t *testing.T) {
	a := newTestAllocator(t)
	var ptrs []Ptr
	for i := range 50 {
		ptrs = append(ptrs, mustAlloc(t, a, 1+i*37))
	}
	for i := 0; i < len(ptrs); i += 3 {
		a.Free(ptrs[i])
	}
	requireValid(t, a)
	require.True(t, a.Check(false))
}

// Test_Validate_Corruption damages the heap in targeted ways and checks
// the validator names each problem.
func Test_Validate_Corruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(a *Allocator, p, tail Ptr)
		want    ViolationKind
	}{
		{
			name: "Prologue",
			corrupt: func(a *Allocator, _, _ Ptr) {
				putWord(a, int(a.base), format.Pack(8, true, false))
			},
			want: KindPrologue,
		},
		{
			name: "Epilogue",
			corrupt: func(a *Allocator, _, _ Ptr) {
				n := len(a.Region().Bytes())
				putWord(a, n-WordSize, format.Pack(0, false, false))
			},
			want: KindEpilogue,
		},
		{
			name: "FooterMismatch",
			corrupt: func(a *Allocator, _, tail Ptr) {
				size := a.blockSize(tail)
				putWord(a, int(footerOff(tail, size)), format.Pack(size-8, false, false))
			},
			want: KindTagMismatch,
		},
		{
			name: "PrevAllocBit",
			corrupt: func(a *Allocator, p, _ Ptr) {
				putWord(a, int(headerOff(p)), format.Pack(a.blockSize(p), false, true))
			},
			want: KindPrevAllocBit,
		},
		{
			name: "BadSize",
			corrupt: func(a *Allocator, p, _ Ptr) {
				putWord(a, int(headerOff(p)), format.Pack(8, true, true))
			},
			want: KindSize,
		},
		{
			name: "OutOfBounds",
			corrupt: func(a *Allocator, p, _ Ptr) {
				putWord(a, int(headerOff(p)), format.Pack(1<<20, true, true))
			},
			want: KindBounds,
		},
		{
			name: "AllocatedInList",
			corrupt: func(a *Allocator, _, tail Ptr) {
				putWord(a, int(headerOff(tail)), format.Pack(a.blockSize(tail), true, true))
			},
			want: KindListNotFree,
		},
		{
			name: "WrongBucket",
			corrupt: func(a *Allocator, _, tail Ptr) {
				a.setHead(a.bucketFor(a.blockSize(tail)), Nil)
				a.setHead(3, tail)
			},
			want: KindListBucket,
		},
		{
			name: "BrokenPrevLink",
			corrupt: func(a *Allocator, p, tail Ptr) {
				putWord(a, int(tail), uint32(p))
			},
			want: KindListLink,
		},
		{
			name: "LinkOutsideHeap",
			corrupt: func(a *Allocator, _, tail Ptr) {
				putWord(a, int(tail)+WordSize, 1<<30)
			},
			want: KindListLink,
		},
		{
			name: "Cycle",
			corrupt: func(a *Allocator, _, tail Ptr) {
				putWord(a, int(tail)+WordSize, uint32(tail))
			},
			want: KindListCycle,
		},
		{
			name: "Unlinked",
			corrupt: func(a *Allocator, _, tail Ptr) {
				a.setHead(a.bucketFor(a.blockSize(tail)), Nil)
			},
			want: KindIndexMissing,
		},
		{
			name: "Uncoalesced",
			corrupt: func(a *Allocator, p, tail Ptr) {
				// Mark p free in place without merging it with the tail.
				size := a.blockSize(p)
				a.markFree(p, size, true)
				a.setPrevAlloc(tail, false)
				a.insertFree(p)
			},
			want: KindUncoalesced,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestAllocator(t)
			p := mustAlloc(t, a, 100)
			tail := freeBlocks(a)[0].Off

			tc.corrupt(a, p, Ptr(tail))

			vs := a.Validate()
			require.Contains(t, kinds(vs), tc.want, "violations: %v", vs)
			require.False(t, a.Check(false))
		})
	}
}

// Test_Validate_Stray links an allocated block the address walk reports as allocated.
func Test_Validate_Stray(t *testing.T) {
	a := newTestAllocator(t)
	p := mustAlloc(t, a, 100)
	a.setHead(0, p)
	putWord(a, int(p), uint32(Nil))
	putWord(a, int(p)+WordSize, uint32(Nil))

	require.Contains(t, kinds(a.Validate()), KindIndexStray)
}

// Test_Validate_TruncatedRegion must not panic on a region too short for the roots.
func Test_Validate_TruncatedRegion(t *testing.T) {
	a := newTestAllocator(t)
	a.data = a.data[:40]

	vs := a.Validate()
	require.Len(t, vs, 1)
	require.Equal(t, KindBounds, vs[0].Kind)
	require.Empty(t, a.Blocks())
	require.NoError(t, a.Dump(&bytes.Buffer{}))
}

// Test_Violation_Error checks the message format.
func Test_Violation_Error(t *testing.T) {
	v := Violation{Kind: KindTagMismatch, Off: 0xC0, Msg: "header size 16 free"}
	require.Equal(t, "TagMismatch at offset 0xC0: header size 16 free", v.Error())

	v = Violation{Kind: KindBounds, Off: -1, Msg: "too small"}
	require.Equal(t, "Bounds: too small", v.Error())
}

// Test_Check_VerboseLogs verifies violations reach the configured logger.
func Test_Check_VerboseLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := DefaultConfig
	cfg.Logger = logger

	a, err := New(region.NewMem(0), &cfg)
	require.NoError(t, err)
	p := mustAlloc(t, a, 100)

	require.True(t, a.Check(true))
	require.Contains(t, buf.String(), "msg=block")
	require.NotContains(t, buf.String(), "heap violation")

	putWord(a, int(headerOff(p)), format.Pack(a.blockSize(p), false, true))
	buf.Reset()
	require.False(t, a.Check(true))
	out := buf.String()
	require.Contains(t, out, "heap violation")
	require.Contains(t, out, "kind=PrevAllocBit")
	require.Contains(t, out, "alloc=Default")
}

// Test_Dump lists blocks and non-empty buckets.
func Test_Dump(t *testing.T) {
	a := newTestAllocator(t)
	mustAlloc(t, a, 100)

	var buf bytes.Buffer
	require.NoError(t, a.Dump(&buf))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "heap Default: region 4184 bytes"))
	require.Contains(t, out, "0x00000058      104 alloc")
	require.Contains(t, out, "0x000000C0     3992 free")
	require.Contains(t, out, "bucket 11: head 0xC0")
}

// Test_Usage_Accounting checks Usage totals add up.
func Test_Usage_Accounting(t *testing.T) {
	a := newTestAllocator(t)
	mustAlloc(t, a, 100)
	p := mustAlloc(t, a, 200)
	mustAlloc(t, a, 8)
	a.Free(p)

	u := a.Usage()
	require.Equal(t, 2, u.AllocBlocks)
	require.Equal(t, 2, u.FreeBlocks)
	require.Equal(t, 104+16, u.AllocBytes)
	require.Equal(t, 100+12, u.PayloadBytes)
	require.Equal(t, u.HeapBytes, u.AllocBytes+u.FreeBytes)
	require.Equal(t, initialFree, u.HeapBytes)
	require.Equal(t, 1, u.BucketCounts[7])
}
