package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/segheap/internal/format"
)

// Ptr is the offset of a payload within the region.
type Ptr uint32

// Nil is the null Ptr. Offset zero lies in the bucket root table and is never a payload.
const Nil Ptr = format.NilOffset

const (
	// WordSize is the size of a header, footer or link word.
	WordSize = format.WordSize

	// AlignmentBytes is the payload alignment and block size granularity.
	AlignmentBytes = format.DoubleWordSize

	// MinBlockSize is the smallest block: header, two links and a footer.
	MinBlockSize = format.MinBlockSize

	// SegregatedListCount is the default number of size-class buckets.
	SegregatedListCount = 20

	// MinGrowthBytes is the default minimum region growth step.
	MinGrowthBytes = 1 << 12

	// MaxRequestSize is the largest payload Alloc accepts.
	MaxRequestSize = 1<<31 - 64

	minListCount = 5 // bucket 4 is the first that can hold a MinBlockSize block
	maxListCount = 32
)

// Config selects the size-class and growth strategy.
// Different configurations trade scan length against bucket occupancy.
type Config struct {
	// Name for this configuration (for reports and benchmarks)
	Name string

	// ListCount is the number of segregated buckets.
	ListCount int

	// GrowthBytes is the minimum number of bytes requested from the region
	// when no free block fits.
	GrowthBytes int

	// Logger receives growth and diagnostic events. Nil discards them
	// unless SEGHEAP_LOG_ALLOC is set.
	Logger *slog.Logger
}

// Predefined configurations.
var (
	// ConfigFewLists: coarse buckets, shorter root table, longer list scans.
	ConfigFewLists = Config{
		Name:        "FewLists",
		ListCount:   12,
		GrowthBytes: MinGrowthBytes,
	}

	// ConfigLargeChunks: default buckets, 64KB growth step for allocation-heavy workloads.
	ConfigLargeChunks = Config{
		Name:        "LargeChunks",
		ListCount:   SegregatedListCount,
		GrowthBytes: 64 << 10,
	}

	// DefaultConfig is used when New receives a nil config.
	DefaultConfig = Config{
		Name:        "Default",
		ListCount:   SegregatedListCount,
		GrowthBytes: MinGrowthBytes,
	}
)

// normalize validates the config and rounds the growth step to the alignment.
func (c Config) normalize() (Config, error) {
	if c.ListCount < minListCount || c.ListCount > maxListCount {
		return c, fmt.Errorf("%w: list count %d outside [%d, %d]",
			ErrBadConfig, c.ListCount, minListCount, maxListCount)
	}
	if c.GrowthBytes < MinBlockSize || c.GrowthBytes > MaxRequestSize {
		return c, fmt.Errorf("%w: growth bytes %d outside [%d, %d]",
			ErrBadConfig, c.GrowthBytes, MinBlockSize, MaxRequestSize)
	}
	c.GrowthBytes = format.Align8(c.GrowthBytes)
	if c.Name == "" {
		c.Name = "Custom"
	}
	return c, nil
}

// String returns the configuration name.
func (c Config) String() string {
	return c.Name
}
