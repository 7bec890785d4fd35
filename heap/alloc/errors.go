package alloc

import "errors"

var (
	// ErrOutOfMemory indicates the region could not grow to satisfy a request.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrNegativeSize indicates a negative request size.
	ErrNegativeSize = errors.New("alloc: negative size")

	// ErrRegionNotEmpty indicates New was given a region that already holds data.
	ErrRegionNotEmpty = errors.New("alloc: region not empty")

	// ErrBadConfig indicates an invalid Config.
	ErrBadConfig = errors.New("alloc: bad config")
)
