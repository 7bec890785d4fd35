package format

// Boundary tags.
//
// A tag word packs a block size with its flag bits:
//
//	bit  0     allocated
//	bit  1     previous block allocated (headers only)
//	bits 3..31 size in bytes, header and footer included
//
// Headers carry both flags. Footers exist on free blocks only and carry the
// size with the allocated bit cleared.

// Pack combines a size with its flags into a tag word.
func Pack(size uint32, prevAlloc, alloc bool) uint32 {
	v := size &^ TagFlagMask
	if prevAlloc {
		v |= TagPrevAllocBit
	}
	if alloc {
		v |= TagAllocBit
	}
	return v
}

// TagSize extracts the size from a tag word.
func TagSize(tag uint32) uint32 {
	return tag &^ TagFlagMask
}

// TagAlloc reports whether the tag marks an allocated block.
func TagAlloc(tag uint32) bool {
	return tag&TagAllocBit != 0
}

// TagPrevAlloc reports whether the tag marks the previous block as allocated.
func TagPrevAlloc(tag uint32) bool {
	return tag&TagPrevAllocBit != 0
}
