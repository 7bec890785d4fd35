package trace

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/joshuapare/segheap/heap/alloc"
)

// ReplayOptions controls Replay.
type ReplayOptions struct {
	// Validate fills payloads with a per-id pattern and checks placement and
	// contents on every operation.
	Validate bool

	// CheckEach runs the heap validator after every operation.
	CheckEach bool

	// Logger receives per-trace progress. Nil discards.
	Logger *slog.Logger
}

// Result summarizes one replay.
type Result struct {
	Trace        string        `json:"trace"`
	Ops          int           `json:"ops"`
	PeakPayload  int           `json:"peak_payload_bytes"`
	RegionBytes  int           `json:"region_bytes"`
	Utilization  float64       `json:"utilization"`
	Elapsed      time.Duration `json:"elapsed_ns"`
	OpsPerSecond float64       `json:"ops_per_second"`
	Stats        alloc.Stats   `json:"stats"`
}

// Replay runs every operation of t against a. The allocator should be
// freshly initialized. Replay stops at the first allocation failure or,
// with validation enabled, the first detected corruption.
func Replay(a *alloc.Allocator, t *Trace, opts ReplayOptions) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("trace", t.Name)

	r := replayer{
		a:     a,
		t:     t,
		opts:  opts,
		ptrs:  make([]alloc.Ptr, t.NumIDs),
		sizes: make([]int, t.NumIDs),
	}

	log.Debug("replay start", "ops", len(t.Ops), "ids", t.NumIDs)
	start := time.Now()
	for i, op := range t.Ops {
		if err := r.step(op); err != nil {
			log.Warn("replay failed", "op", i, "err", err)
			return nil, fmt.Errorf("%s: op %d (%s id %d): %w", t.Name, i, op.Kind, op.ID, err)
		}
	}
	elapsed := time.Since(start)

	res := &Result{
		Trace:       t.Name,
		Ops:         len(t.Ops),
		PeakPayload: r.peak,
		RegionBytes: a.Region().Len(),
		Elapsed:     elapsed,
		Stats:       a.Stats(),
	}
	if res.RegionBytes > 0 {
		res.Utilization = float64(res.PeakPayload) / float64(res.RegionBytes)
	}
	if secs := elapsed.Seconds(); secs > 0 {
		res.OpsPerSecond = float64(res.Ops) / secs
	}
	log.Debug("replay done", "elapsed", elapsed, "utilization", res.Utilization)
	return res, nil
}

type replayer struct {
	a    *alloc.Allocator
	t    *Trace
	opts ReplayOptions

	ptrs  []alloc.Ptr
	sizes []int
	spans spanSet

	live, peak int
}

func (r *replayer) step(op Op) error {
	switch op.Kind {
	case OpAlloc:
		p, err := r.a.Alloc(op.Size)
		if err != nil {
			return err
		}
		if err := r.place(op.ID, p, op.Size); err != nil {
			return err
		}

	case OpRealloc:
		old, oldSize := r.ptrs[op.ID], r.sizes[op.ID]
		if err := r.verify(op.ID); err != nil {
			return err
		}
		p, err := r.a.Realloc(old, op.Size)
		if err != nil {
			return err
		}
		r.forget(op.ID)
		if r.opts.Validate && p != alloc.Nil {
			// The preserved prefix must still carry the old pattern.
			keep := min(oldSize, op.Size)
			if i := mismatch(r.a.Payload(p)[:keep], op.ID); i >= 0 {
				return fmt.Errorf("%w: realloc lost payload byte %d", ErrCorrupt, i)
			}
		}
		if err := r.place(op.ID, p, op.Size); err != nil {
			return err
		}

	case OpFree:
		if err := r.verify(op.ID); err != nil {
			return err
		}
		r.a.Free(r.ptrs[op.ID])
		r.forget(op.ID)
	}

	if r.opts.CheckEach {
		if vs := r.a.Validate(); len(vs) > 0 {
			return fmt.Errorf("%w: %d violations, first: %v", ErrCorrupt, len(vs), vs[0])
		}
	}
	return nil
}

// place records a new live block and, when validating, checks where it
// landed and stamps its pattern.
func (r *replayer) place(id int, p alloc.Ptr, size int) error {
	r.ptrs[id], r.sizes[id] = p, size
	r.live += size
	r.peak = max(r.peak, r.live)
	if !r.opts.Validate || p == alloc.Nil {
		return nil
	}

	lo, hi := int(p), int(p)+size
	if lo%alloc.AlignmentBytes != 0 {
		return fmt.Errorf("%w: payload 0x%X not %d-byte aligned", ErrCorrupt, lo, alloc.AlignmentBytes)
	}
	if hi > r.a.Region().Len() {
		return fmt.Errorf("%w: payload [0x%X, 0x%X) past region end 0x%X", ErrCorrupt, lo, hi, r.a.Region().Len())
	}
	if other, ok := r.spans.insert(span{lo, hi, id}); !ok {
		return fmt.Errorf("%w: payload [0x%X, 0x%X) overlaps id %d at [0x%X, 0x%X)",
			ErrCorrupt, lo, hi, other.id, other.lo, other.hi)
	}
	stamp(r.a.Payload(p)[:size], id)
	return nil
}

// verify checks that id's payload still carries its pattern.
func (r *replayer) verify(id int) error {
	p := r.ptrs[id]
	if !r.opts.Validate || p == alloc.Nil {
		return nil
	}
	if i := mismatch(r.a.Payload(p)[:r.sizes[id]], id); i >= 0 {
		return fmt.Errorf("%w: payload of id %d changed at byte %d", ErrCorrupt, id, i)
	}
	return nil
}

func (r *replayer) forget(id int) {
	if r.opts.Validate && r.ptrs[id] != alloc.Nil {
		r.spans.remove(int(r.ptrs[id]))
	}
	r.live -= r.sizes[id]
	r.ptrs[id], r.sizes[id] = alloc.Nil, 0
}

func pattern(id, i int) byte {
	return byte(id*131 + i*7 + 1)
}

func stamp(b []byte, id int) {
	for i := range b {
		b[i] = pattern(id, i)
	}
}

// mismatch returns the index of the first byte that does not match id's
// pattern, or -1.
func mismatch(b []byte, id int) int {
	for i, v := range b {
		if v != pattern(id, i) {
			return i
		}
	}
	return -1
}

type span struct {
	lo, hi int
	id     int
}

// spanSet is a set of disjoint payload ranges sorted by start.
type spanSet struct {
	s []span
}

// insert adds sp unless it overlaps a member, in which case it returns
// that member and false.
func (ss *spanSet) insert(sp span) (span, bool) {
	i, _ := slices.BinarySearchFunc(ss.s, sp.lo, func(e span, lo int) int { return e.lo - lo })
	if i > 0 && ss.s[i-1].hi > sp.lo {
		return ss.s[i-1], false
	}
	if i < len(ss.s) && ss.s[i].lo < sp.hi {
		return ss.s[i], false
	}
	ss.s = slices.Insert(ss.s, i, sp)
	return span{}, true
}

func (ss *spanSet) remove(lo int) {
	if i, ok := slices.BinarySearchFunc(ss.s, lo, func(e span, lo int) int { return e.lo - lo }); ok {
		ss.s = slices.Delete(ss.s, i, i+1)
	}
}
