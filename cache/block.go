package cache

// A Block is the metadata associated with one cache line.
type Block struct {
	Valid       bool
	Dirty       bool
	Tag         uint32
	LastAccess  uint64
	InsertedAt  uint64
	AccessCount uint64
}

// A Set is the group of ways that one set index maps to. The position of a
// block within the set is its way index.
type Set struct {
	Blocks []Block
}

// Clone returns a deep copy of the set.
func (s Set) Clone() Set {
	blocks := make([]Block, len(s.Blocks))
	copy(blocks, s.Blocks)

	return Set{Blocks: blocks}
}

// Stats counts the accesses observed by one cache level.
type Stats struct {
	Hits          uint64
	Misses        uint64
	TotalAccesses uint64
	Writebacks    uint64
}

// HitRate returns the fraction of accesses that hit. It is computed at read
// time and reports 0 for a cache that has not been accessed.
func (s Stats) HitRate() float64 {
	if s.TotalAccesses == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.TotalAccesses)
}
