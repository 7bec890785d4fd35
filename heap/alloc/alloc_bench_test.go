package alloc

import (
	"math/rand"
	"testing"

	"github.com/joshuapare/segheap/region"
)

// BenchmarkAllocFree measures a same-size alloc/free round trip.
func BenchmarkAllocFree(b *testing.B) {
	a := newTestAllocator(b)
	b.ReportAllocs()
	for b.Loop() {
		p, err := a.Alloc(64)
		if err != nil {
			b.Fatal(err)
		}
		a.Free(p)
	}
}

// BenchmarkMixedSizes compares configurations on a random working set.
func BenchmarkMixedSizes(b *testing.B) {
	for _, cfg := range []Config{DefaultConfig, ConfigFewLists, ConfigLargeChunks} {
		b.Run(cfg.Name, func(b *testing.B) {
			a, err := New(region.NewMem(256<<20), &cfg)
			if err != nil {
				b.Fatal(err)
			}
			rng := rand.New(rand.NewSource(1))
			ptrs := make([]Ptr, 512)
			for b.Loop() {
				i := rng.Intn(len(ptrs))
				if ptrs[i] != Nil {
					a.Free(ptrs[i])
					ptrs[i] = Nil
					continue
				}
				p, err := a.Alloc(8 + rng.Intn(2048))
				if err != nil {
					b.Fatal(err)
				}
				ptrs[i] = p
			}
		})
	}
}

// BenchmarkRealloc measures growing a block by small steps.
func BenchmarkRealloc(b *testing.B) {
	a := newTestAllocator(b)
	p := Nil
	size := 0
	for b.Loop() {
		size += 16
		if size > 1<<16 {
			a.Free(p)
			p, size = Nil, 16
		}
		var err error
		p, err = a.Realloc(p, size)
		if err != nil {
			b.Fatal(err)
		}
	}
}
