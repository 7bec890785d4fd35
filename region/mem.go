package region

import "fmt"

// Mem is a slice-backed Region with a fixed size limit.
type Mem struct {
	data  []byte
	limit int
}

// NewMem returns an empty in-memory region. A limit <= 0 selects DefaultLimit.
func NewMem(limit int) *Mem {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Mem{limit: limit}
}

// Grow implements Region.
func (m *Mem) Grow(n int) (int, error) {
	if n < 0 {
		return 0, ErrBadGrow
	}
	old := len(m.data)
	if n > m.limit-old {
		return 0, fmt.Errorf("%w: len=%d grow=%d limit=%d", ErrLimit, old, n, m.limit)
	}
	if cap(m.data)-old < n {
		// Double to keep growth amortized, but never past the limit.
		newCap := max(2*cap(m.data), old+n)
		newCap = min(newCap, m.limit)
		grown := make([]byte, old+n, newCap)
		copy(grown, m.data)
		m.data = grown
		return old, nil
	}
	m.data = m.data[:old+n]
	clear(m.data[old:])
	return old, nil
}

// Bytes implements Region.
func (m *Mem) Bytes() []byte { return m.data }

// Len implements Region.
func (m *Mem) Len() int { return len(m.data) }

// Limit returns the maximum size of the region.
func (m *Mem) Limit() int { return m.limit }

// Reset implements Region. The backing array is kept for reuse.
func (m *Mem) Reset() error {
	m.data = m.data[:0]
	return nil
}
