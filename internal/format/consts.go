// Package format houses the low-level boundary-tag encoding used by the heap
// allocator. Everything that touches raw words inside the managed region goes
// through this package so the rest of the code never manipulates bits directly.
package format

const (
	// WordSize is the size of a header, footer or free-list link word.
	WordSize = 4

	// DoubleWordSize is the payload alignment unit. Every block size is a
	// multiple of it and every payload offset is aligned to it.
	DoubleWordSize = 8

	// AlignmentMask is DoubleWordSize-1.
	AlignmentMask = DoubleWordSize - 1

	// MinBlockSize is the smallest encodable block: header, two link words
	// and a footer.
	MinBlockSize = 2 * DoubleWordSize

	// TagFlagMask covers the low bits of a tag word that hold flags.
	// Alignment guarantees the low three bits of a size are zero.
	TagFlagMask = 0x7

	// TagAllocBit marks the block itself as allocated.
	TagAllocBit = 0x1

	// TagPrevAllocBit marks the address-previous block as allocated.
	// Allocated blocks carry no footer, so this bit is the only way to know
	// whether reading the word below a header is meaningful.
	TagPrevAllocBit = 0x2

	// NilOffset terminates free lists. Offset zero always lies inside the
	// bucket root table and can never be a payload.
	NilOffset = 0

	// MaxRegionSize bounds the region so every offset fits in a word.
	MaxRegionSize = 1<<32 - DoubleWordSize
)
