package region

import "errors"

// DefaultLimit caps a region at 20 MiB, the classic simulated heap size.
const DefaultLimit = 20 * (1 << 20)

var (
	// ErrLimit indicates that growing would exceed the region's limit.
	ErrLimit = errors.New("region: size limit reached")

	// ErrClosed indicates use of a region after Close.
	ErrClosed = errors.New("region: closed")

	// ErrBadGrow indicates a negative growth request.
	ErrBadGrow = errors.New("region: negative grow")
)

// Region is a contiguous, monotonically growing span of bytes.
type Region interface {
	// Grow extends the region by n bytes and returns the offset of the
	// first new byte (the length before growing). New bytes are zeroed.
	Grow(n int) (int, error)

	// Bytes returns the current contents. The slice is invalidated by Grow
	// and Reset.
	Bytes() []byte

	// Len returns the current length in bytes.
	Len() int

	// Reset drops all bytes, returning the region to length zero.
	Reset() error
}
