package trace

import (
	"fmt"
	"math/rand"
)

// GenOptions controls Generate.
type GenOptions struct {
	Ops         int   // at most this many operations, including the frees that close the trace
	IDs         int   // distinct block ids
	MaxSize     int   // largest request size
	ReallocRate int   // percent of non-alloc steps that reallocate instead of freeing
	Seed        int64 // random seed; the same options always produce the same trace
}

// DefaultGenOptions is a small mixed workload.
var DefaultGenOptions = GenOptions{
	Ops:         2000,
	IDs:         400,
	MaxSize:     4096,
	ReallocRate: 30,
	Seed:        1,
}

// Generate builds a random trace that allocates, reallocates and frees ids
// in a valid order and ends with every id freed.
func Generate(opts GenOptions) (*Trace, error) {
	if opts.Ops < 2 || opts.IDs < 1 || opts.MaxSize < 1 {
		return nil, fmt.Errorf("trace: generate: need ops >= 2, ids >= 1, max size >= 1 (got %d, %d, %d)",
			opts.Ops, opts.IDs, opts.MaxSize)
	}
	if opts.ReallocRate < 0 || opts.ReallocRate > 100 {
		return nil, fmt.Errorf("trace: generate: realloc rate %d outside [0, 100]", opts.ReallocRate)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	t := &Trace{
		Name:   fmt.Sprintf("gen-%d", opts.Seed),
		NumIDs: opts.IDs,
		Weight: 1,
		Ops:    make([]Op, 0, opts.Ops),
	}

	var live, idle []int
	for id := opts.IDs - 1; id >= 0; id-- {
		idle = append(idle, id)
	}
	size := func() int {
		// Mostly small requests with an occasional large one.
		if rng.Intn(8) == 0 {
			return 1 + rng.Intn(opts.MaxSize)
		}
		return 1 + rng.Intn(max(1, opts.MaxSize/16))
	}

	var cur, peak int
	sizes := make([]int, opts.IDs)
	for {
		rem := opts.Ops - len(t.Ops) - len(live)
		canAlloc := len(idle) > 0 && rem >= 2
		if rem <= 0 || (len(live) == 0 && !canAlloc) {
			break
		}

		switch {
		case canAlloc && (len(live) == 0 || rng.Intn(2) == 0):
			id := idle[len(idle)-1]
			idle = idle[:len(idle)-1]
			live = append(live, id)
			sizes[id] = size()
			cur += sizes[id]
			t.Ops = append(t.Ops, Op{Kind: OpAlloc, ID: id, Size: sizes[id]})

		case rem == 1 || rng.Intn(100) < opts.ReallocRate:
			id := live[rng.Intn(len(live))]
			n := size()
			cur += n - sizes[id]
			sizes[id] = n
			t.Ops = append(t.Ops, Op{Kind: OpRealloc, ID: id, Size: n})

		default:
			i := rng.Intn(len(live))
			id := live[i]
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			idle = append(idle, id)
			cur -= sizes[id]
			t.Ops = append(t.Ops, Op{Kind: OpFree, ID: id})
		}
		peak = max(peak, cur)
	}
	for _, id := range live {
		t.Ops = append(t.Ops, Op{Kind: OpFree, ID: id})
	}

	t.SuggestedHeap = peak
	return t, nil
}
