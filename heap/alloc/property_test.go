package alloc

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/segheap/region"
)

// Test_Property_RandomOps runs a seeded mix of alloc, free and realloc,
// checking after every step that live payloads keep their bytes, never
// overlap, stay aligned, and that the heap validates.
func Test_Property_RandomOps(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig, ConfigFewLists} {
		t.Run(cfg.Name, func(t *testing.T) {
			runRandomOps(t, cfg, 42, 3000)
		})
	}
}

type liveBlock struct {
	size int
	fill byte
}

func runRandomOps(t *testing.T, cfg Config, seed int64, steps int) {
	a, err := New(region.NewMem(64<<20), &cfg)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(seed))
	live := make(map[Ptr]liveBlock)
	var order []Ptr
	nextFill := byte(1)

	pick := func() (Ptr, int) {
		i := rng.Intn(len(order))
		return order[i], i
	}
	randSize := func() int {
		if rng.Intn(20) == 0 {
			return 1 + rng.Intn(20000)
		}
		return 1 + rng.Intn(600)
	}

	for step := range steps {
		switch op := rng.Intn(10); {
		case op < 5 || len(order) == 0:
			size := randSize()
			p, err := a.Alloc(size)
			require.NoError(t, err, "step %d", step)
			_, dup := live[p]
			require.False(t, dup, "step %d: 0x%X handed out twice", step, p)
			fill(a.Payload(p)[:size], nextFill)
			live[p] = liveBlock{size, nextFill}
			order = append(order, p)
			nextFill++

		case op < 8:
			p, i := pick()
			a.Free(p)
			delete(live, p)
			order = slices.Delete(order, i, i+1)

		default:
			p, i := pick()
			b := live[p]
			size := randSize()
			q, err := a.Realloc(p, size)
			require.NoError(t, err, "step %d", step)
			kept := min(b.size, size)
			for j, v := range a.Payload(q)[:kept] {
				require.Equal(t, b.fill, v, "step %d: realloc lost byte %d", step, j)
			}
			fill(a.Payload(q)[:size], b.fill)
			delete(live, p)
			live[q] = liveBlock{size, b.fill}
			order[i] = q
		}

		vs := a.Validate()
		require.Empty(t, vs, "step %d: %v", step, vs)
		checkLive(t, a, live, step, step%25 == 0 || step == steps-1)
	}
}

// checkLive verifies alignment and disjointness of every live block, and
// with content set also compares payload bytes.
func checkLive(t *testing.T, a *Allocator, live map[Ptr]liveBlock, step int, content bool) {
	t.Helper()
	ptrs := make([]Ptr, 0, len(live))
	for p := range live {
		ptrs = append(ptrs, p)
	}
	slices.Sort(ptrs)

	end := 0
	for _, p := range ptrs {
		b := live[p]
		require.Zero(t, int(p)%AlignmentBytes, "step %d: 0x%X misaligned", step, p)
		require.True(t, a.isAlloc(p), "step %d: 0x%X not allocated", step, p)
		require.GreaterOrEqual(t, a.Size(p), b.size)
		require.GreaterOrEqual(t, int(p), end, "step %d: 0x%X overlaps previous block", step, p)
		end = int(p) + a.Size(p)

		if !content {
			continue
		}
		for j, v := range a.Payload(p)[:b.size] {
			if v != b.fill {
				require.Failf(t, "payload corrupted", "step %d: 0x%X byte %d = %#x, want %#x",
					step, p, j, v, b.fill)
			}
		}
	}
}
