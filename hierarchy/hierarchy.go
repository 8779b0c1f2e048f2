// Package hierarchy routes memory accesses through up to two cache levels
// and the main memory, accumulating latency and combined statistics.
package hierarchy

import (
	"github.com/dath2006/cache-insights/cache"
	"github.com/dath2006/cache-insights/memory"
)

// A Level identifies one stop on the data path of an access.
type Level int

// The three stops an access can visit, in lookup order.
const (
	LevelL1 Level = iota + 1
	LevelL2
	LevelMemory
)

func (l Level) String() string {
	switch l {
	case LevelL1:
		return "L1"
	case LevelL2:
		return "L2"
	case LevelMemory:
		return "Memory"
	}

	return "Unknown"
}

// Hit latencies per level, in cycles. Every visited level contributes its
// hit time even when it misses.
const (
	L1HitCycles = 1
	L2HitCycles = 10
)

// defaultMemBlockSize is the memory transfer size when no cache level is
// enabled.
const defaultMemBlockSize = 64

// A Config selects the cache levels of a hierarchy. A disabled level is
// skipped during lookup; with both levels disabled every access goes
// straight to memory.
type Config struct {
	L1        cache.Config
	L2        cache.Config
	L1Enabled bool
	L2Enabled bool
}

// A LevelResult is the per-level outcome of one access. MemoryAccessed is
// set on a level that missed when control reached the main memory.
type LevelResult struct {
	cache.AccessResult

	Level          Level
	MemoryAccessed bool
}

// An AccessResult is the full outcome of one access through the hierarchy.
// Levels that were not visited are nil.
type AccessResult struct {
	L1     *LevelResult
	L2     *LevelResult
	Memory *memory.AccessResult

	TotalLatencyCycles uint64
	DataPath           []Level
}

// A Comp owns the cache levels and the memory model and routes accesses
// through them. Lookups are independent: an L1 miss probes L2 with the same
// address, and no inclusion between the levels is enforced.
type Comp struct {
	l1  *cache.Comp
	l2  *cache.Comp
	mem *memory.Comp

	combined    cache.Stats
	totalCycles uint64
}

// L1 returns the L1 cache, or nil when disabled.
func (c *Comp) L1() *cache.Comp {
	return c.l1
}

// L2 returns the L2 cache, or nil when disabled.
func (c *Comp) L2() *cache.Comp {
	return c.l2
}

// Memory returns the main-memory model.
func (c *Comp) Memory() *memory.Comp {
	return c.mem
}

// Access routes one access through the enabled levels and, on a full miss,
// the main memory.
func (c *Comp) Access(addr uint32, isWrite bool) AccessResult {
	result := AccessResult{DataPath: make([]Level, 0, 3)}

	c.combined.TotalAccesses++
	hit := false

	if c.l1 != nil {
		r := c.l1.Access(addr, isWrite)
		result.L1 = &LevelResult{AccessResult: r, Level: LevelL1}
		result.DataPath = append(result.DataPath, LevelL1)
		result.TotalLatencyCycles += L1HitCycles
		hit = r.Hit
	}

	if !hit && c.l2 != nil {
		r := c.l2.Access(addr, isWrite)
		result.L2 = &LevelResult{AccessResult: r, Level: LevelL2}
		result.DataPath = append(result.DataPath, LevelL2)
		result.TotalLatencyCycles += L2HitCycles
		hit = r.Hit
	}

	if hit {
		c.combined.Hits++
	} else {
		memResult := c.mem.Access(addr, isWrite, c.memBlockSize())
		result.Memory = &memResult
		result.DataPath = append(result.DataPath, LevelMemory)
		result.TotalLatencyCycles += memResult.LatencyCycles
		c.combined.Misses++

		if result.L1 != nil {
			result.L1.MemoryAccessed = true
		}
		if result.L2 != nil {
			result.L2.MemoryAccessed = true
		}
	}

	c.totalCycles += result.TotalLatencyCycles

	return result
}

// memBlockSize is the transfer unit for memory accesses: L1's block size
// when L1 is enabled, otherwise L2's, otherwise 64 bytes.
func (c *Comp) memBlockSize() uint32 {
	switch {
	case c.l1 != nil:
		return c.l1.Config().BlockSize
	case c.l2 != nil:
		return c.l2.Config().BlockSize
	}

	return defaultMemBlockSize
}

// CombinedStats counts an access as a hit when any enabled level hit, and
// as a miss when every enabled level missed and memory was accessed.
func (c *Comp) CombinedStats() cache.Stats {
	return c.combined
}

// TotalCycles returns the latency accumulated over all accesses so far.
func (c *Comp) TotalCycles() uint64 {
	return c.totalCycles
}

// MemoryStats returns a snapshot of the memory traffic counters.
func (c *Comp) MemoryStats() memory.Stats {
	return c.mem.Stats()
}

// MemoryRegions returns a snapshot of the memory heat-map regions.
func (c *Comp) MemoryRegions() [memory.NumRegions]memory.Region {
	return c.mem.Regions()
}

// Reset restores every level and the memory to the construction-time state.
func (c *Comp) Reset() {
	if c.l1 != nil {
		c.l1.Reset()
	}
	if c.l2 != nil {
		c.l2.Reset()
	}
	c.mem.Reset()
	c.combined = cache.Stats{}
	c.totalCycles = 0
}

// AMAT evaluates the average memory access time over the current stats. A
// level with zero accesses contributes a miss rate of 1.
func (c *Comp) AMAT(l1Hit, l2Hit, memPenalty float64) float64 {
	switch {
	case c.l1 != nil && c.l2 != nil:
		return l1Hit + missRate(c.l1.Stats())*
			(l2Hit+missRate(c.l2.Stats())*memPenalty)
	case c.l1 != nil:
		return l1Hit + missRate(c.l1.Stats())*memPenalty
	case c.l2 != nil:
		return l2Hit + missRate(c.l2.Stats())*memPenalty
	}

	return memPenalty
}

// missRate treats an unaccessed level as always missing.
func missRate(s cache.Stats) float64 {
	if s.TotalAccesses == 0 {
		return 1
	}

	return 1 - s.HitRate()
}
