package trace

import "errors"

var (
	// ErrBadTrace indicates a malformed trace or one that frees an id that is not live.
	ErrBadTrace = errors.New("trace: bad trace")

	// ErrCorrupt indicates that replay observed a misplaced or damaged payload,
	// or a heap that failed validation.
	ErrCorrupt = errors.New("trace: heap corruption")
)
