package format

import "errors"

// ErrTruncated indicates the buffer lacked the bytes required for a word.
var ErrTruncated = errors.New("format: truncated buffer")

// ReadU32Checked is ReadU32 with an explicit bounds check for diagnostic
// walkers that must not panic on a corrupted heap.
func ReadU32Checked(b []byte, off int) (uint32, error) {
	if off < 0 || off+WordSize > len(b) {
		return 0, ErrTruncated
	}
	return ReadU32(b, off), nil
}
