package cache

// An AccessResult describes the outcome of one cache access.
type AccessResult struct {
	Hit        bool
	SetIndex   uint32
	WayIndex   int
	Tag        uint32
	Evicted    bool
	EvictedTag uint32
}

// A Comp is one level of a set-associative cache. It is single-threaded:
// the owner serializes Access calls with snapshot reads.
type Comp struct {
	config   Config
	geometry Geometry
	finder   VictimFinder

	sets  []Set
	clock uint64
	stats Stats
}

// Config returns the configuration the cache was built with.
func (c *Comp) Config() Config {
	return c.config
}

// Geometry returns the derived address layout.
func (c *Comp) Geometry() Geometry {
	return c.geometry
}

// Access performs one read or write. It advances the internal access
// counter, looks the address up in its set, and installs the block on a
// miss. Access never fails.
func (c *Comp) Access(addr uint32, isWrite bool) AccessResult {
	c.clock++
	tag, index, _ := c.geometry.Decompose(addr)
	set := &c.sets[index]
	c.stats.TotalAccesses++

	for way := range set.Blocks {
		block := &set.Blocks[way]
		if block.Valid && block.Tag == tag {
			c.stats.Hits++
			c.finder.Touch(block, c.clock)

			if isWrite && c.config.Write == WriteBack {
				block.Dirty = true
			}

			return AccessResult{
				Hit:      true,
				SetIndex: index,
				WayIndex: way,
				Tag:      tag,
			}
		}
	}

	c.stats.Misses++

	way, evicted, evictedTag := c.victimWay(set)
	block := &set.Blocks[way]
	block.Valid = true
	block.Dirty = isWrite && c.config.Write == WriteBack
	block.Tag = tag
	block.LastAccess = c.clock
	block.InsertedAt = c.clock
	block.AccessCount = 1

	return AccessResult{
		Hit:        false,
		SetIndex:   index,
		WayIndex:   way,
		Tag:        tag,
		Evicted:    evicted,
		EvictedTag: evictedTag,
	}
}

// victimWay picks the way to install into. Invalid ways are used first,
// left to right; the replacement policy only runs on a full set.
func (c *Comp) victimWay(set *Set) (way int, evicted bool, evictedTag uint32) {
	for i, block := range set.Blocks {
		if !block.Valid {
			return i, false, 0
		}
	}

	way = c.finder.FindVictim(set)
	victim := &set.Blocks[way]

	if victim.Dirty {
		c.stats.Writebacks++
	}

	return way, true, victim.Tag
}

// Stats returns a snapshot of the access counters.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Sets returns a deep copy of every set for inspection. Mutating the copy
// does not affect the cache.
func (c *Comp) Sets() []Set {
	sets := make([]Set, len(c.sets))
	for i, s := range c.sets {
		sets[i] = s.Clone()
	}

	return sets
}

// Reset restores the cache to its construction-time state: counters zeroed
// and every block invalid. Blocks are reused in place.
func (c *Comp) Reset() {
	c.clock = 0
	c.stats = Stats{}

	for i := range c.sets {
		for j := range c.sets[i].Blocks {
			c.sets[i].Blocks[j] = Block{}
		}
	}
}

// AMAT returns hitTime + (1 - hitRate) * missPenalty over the current
// stats.
func (c *Comp) AMAT(hitTime, missPenalty float64) float64 {
	return hitTime + (1-c.stats.HitRate())*missPenalty
}
