package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/segheap/internal/format"
	"github.com/joshuapare/segheap/region"
)

// Allocator is a segregated free-list allocator over a single region.
// - Boundary tags give O(1) neighbor lookup for coalescing
// - Bucket lists are sorted by size so the first fit in a bucket is its best fit
// - All metadata lives in the region; the struct only caches scalars.
type Allocator struct {
	r    region.Region
	data []byte // r.Bytes(), refreshed after every grow

	cfg   Config
	lists int    // number of buckets
	base  uint32 // offset of the prologue word

	log   *slog.Logger
	stats Stats
}

// New creates an allocator over an empty region and establishes the initial
// heap: bucket roots, prologue, epilogue and one free block of
// cfg.GrowthBytes.
//
// Parameters:
//   - r: The region to manage (must be empty)
//   - cfg: Size class and growth configuration (use nil for DefaultConfig)
func New(r region.Region, cfg *Config) (*Allocator, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	c, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrRegionNotEmpty, r.Len())
	}

	a := &Allocator{
		r:     r,
		cfg:   c,
		lists: c.ListCount,
		base:  uint32(format.Align8(c.ListCount * WordSize)),
		log:   newLogger(c),
	}
	if err := a.setup(); err != nil {
		return nil, err
	}
	return a, nil
}

// Init discards every block and rebuilds an empty heap over the same region.
func (a *Allocator) Init() error {
	if err := a.r.Reset(); err != nil {
		return fmt.Errorf("alloc: reset region: %w", err)
	}
	a.data = nil
	a.stats = Stats{}
	return a.setup()
}

func (a *Allocator) setup() error {
	if _, err := a.r.Grow(int(a.base) + 2*WordSize); err != nil {
		return fmt.Errorf("%w: initial region: %w", ErrOutOfMemory, err)
	}
	a.data = a.r.Bytes()

	for i := range a.lists {
		a.setHead(i, Nil)
	}
	a.setWord(a.base, format.Pack(0, true, true))          // prologue
	a.setWord(a.base+WordSize, format.Pack(0, true, true)) // epilogue

	if _, err := a.extend(a.cfg.GrowthBytes); err != nil {
		return err
	}
	return nil
}

// Config returns the normalized configuration.
func (a *Allocator) Config() Config {
	return a.cfg
}

// Region returns the managed region.
func (a *Allocator) Region() region.Region {
	return a.r
}

// Alloc allocates a block with at least size payload bytes.
// A zero size returns Nil with no error.
func (a *Allocator) Alloc(size int) (Ptr, error) {
	a.stats.AllocCalls++
	return a.alloc(size)
}

// alloc is Alloc without the call counter, shared with Realloc.
func (a *Allocator) alloc(size int) (Ptr, error) {
	if size == 0 {
		return Nil, nil
	}
	if size < 0 {
		return Nil, ErrNegativeSize
	}
	asize, ok := adjustSize(size)
	if !ok {
		return Nil, fmt.Errorf("%w: request of %d bytes", ErrOutOfMemory, size)
	}

	p := a.findFit(asize)
	if p == Nil {
		a.stats.FitMisses++
		var err error
		p, err = a.extend(max(int(asize), a.cfg.GrowthBytes))
		if err != nil {
			return Nil, err
		}
	}

	a.place(p, asize)
	return p, nil
}

// place allocates asize bytes at the start of free block p, splitting off
// the tail when it can hold a block of its own.
func (a *Allocator) place(p Ptr, asize uint32) {
	csize := a.blockSize(p)
	prevAlloc := a.isPrevAlloc(p)
	a.removeFree(p)

	if csize-asize >= MinBlockSize {
		a.stats.SplitCount++
		a.markAlloc(p, asize, prevAlloc)
		rest := p + Ptr(asize)
		// The block after rest already has prevAlloc clear: p was free.
		a.markFree(rest, csize-asize, true)
		a.insertFree(rest)
		return
	}

	a.markAlloc(p, csize, prevAlloc)
	a.setPrevAlloc(a.nextBlock(p), true)
}

// extend grows the region by at least n bytes, turns the new span into a
// free block (merged with a free tail block, if any) and returns it.
func (a *Allocator) extend(n int) (Ptr, error) {
	size := format.Align8(n)
	old := a.r.Len()
	if size > format.MaxRegionSize-old {
		a.log.Warn("out of memory", "need", size, "region", old, "reason", "offset space exhausted")
		return Nil, fmt.Errorf("%w: region of %d bytes cannot grow by %d", ErrOutOfMemory, old, size)
	}

	off, err := a.r.Grow(size)
	if err != nil {
		a.log.Warn("out of memory", "need", size, "region", old, "err", err)
		return Nil, fmt.Errorf("%w: grow by %d: %w", ErrOutOfMemory, size, err)
	}
	if off != old {
		return Nil, fmt.Errorf("%w: region grew at %d, expected %d", ErrOutOfMemory, off, old)
	}
	a.data = a.r.Bytes()
	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(size)

	// The old epilogue word becomes the new block's header.
	p := Ptr(off)
	a.markFree(p, uint32(size), a.isPrevAlloc(p))
	a.setWord(uint32(off+size)-WordSize, format.Pack(0, false, true))

	a.log.Debug("region grown", "bytes", size, "len", a.r.Len())
	return a.coalesce(p), nil
}

// Payload returns the payload bytes of the allocated block p. The slice
// aliases the region and is invalidated by any call that grows it.
func (a *Allocator) Payload(p Ptr) []byte {
	end := uint32(p) + uint32(payloadCap(a.blockSize(p)))
	return a.data[p:end:end]
}

// Size returns the payload capacity of the allocated block p.
func (a *Allocator) Size(p Ptr) int {
	return payloadCap(a.blockSize(p))
}
