package cache

import "math/bits"

// A Geometry holds the derived bit-field layout of a 32-bit address for one
// cache configuration.
type Geometry struct {
	NumSets    uint32
	NumWays    uint32
	BlockSize  uint32
	OffsetBits uint32
	IndexBits  uint32
	TagBits    uint32
}

// MakeGeometry derives the address layout from a validated config.
func MakeGeometry(cfg Config) Geometry {
	numSets := cfg.NumSets()
	offsetBits := uint32(bits.TrailingZeros32(cfg.BlockSize))
	indexBits := uint32(bits.TrailingZeros32(numSets))

	return Geometry{
		NumSets:    numSets,
		NumWays:    cfg.Associativity,
		BlockSize:  cfg.BlockSize,
		OffsetBits: offsetBits,
		IndexBits:  indexBits,
		TagBits:    32 - offsetBits - indexBits,
	}
}

// Decompose splits an address into its tag, set index, and block offset.
// All shifts are logical. A one-set cache has IndexBits == 0 and every
// address decomposes to index 0.
func (g Geometry) Decompose(addr uint32) (tag, index, offset uint32) {
	offset = addr & ((1 << g.OffsetBits) - 1)
	index = (addr >> g.OffsetBits) & ((1 << g.IndexBits) - 1)
	tag = addr >> (g.OffsetBits + g.IndexBits)

	return tag, index, offset
}
