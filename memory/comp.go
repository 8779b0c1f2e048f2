package memory

// NumRegions is the number of heat-map regions tracked per memory.
const NumRegions = 16

// historyCap bounds the rolling access-history buffer.
const historyCap = 1000

// A Region is one slice of the observed address range with its access
// counters. Untouched regions keep zero counters.
type Region struct {
	StartAddress uint32
	EndAddress   uint32
	AccessCount  uint64
	ReadCount    uint64
	WriteCount   uint64
	LastAccess   uint64
}

// Stats aggregates the traffic observed by the memory.
type Stats struct {
	TotalReads              uint64
	TotalWrites             uint64
	TotalAccesses           uint64
	BytesTransferred        uint64
	AverageLatency          float64
	BandwidthUtilizationPct float64
	PeakBandwidthMBs        float64
	EffectiveBandwidthMBs   float64
}

// An AccessResult describes one completed memory access.
type AccessResult struct {
	Address          uint32
	IsWrite          bool
	LatencyCycles    uint64
	BytesTransferred uint64
}

// A Comp is the main-memory model. Latency is a scalar plus a burst
// correction; there is no command scheduling or bank state.
type Comp struct {
	config    Config
	sizeBytes uint64

	regions [NumRegions]Region
	minSeen uint32
	maxSeen uint32
	seenAny bool

	accessClock uint64
	totalCycles uint64
	stats       Stats
	history     []AccessResult
}

// Config returns the configuration the memory was built with.
func (c *Comp) Config() Config {
	return c.config
}

// Access wraps the address into the physical memory, updates the heat map,
// and returns the latency and transfer size of the access. It never fails.
func (c *Comp) Access(addr uint32, isWrite bool, blockSize uint32) AccessResult {
	c.accessClock++

	wrapped := uint32(uint64(addr) % c.sizeBytes)
	c.recordRegionAccess(wrapped, isWrite)

	busBytes := uint64(c.config.BusWidthBits / 8)
	transfer := uint64(blockSize)
	if burst := busBytes * uint64(c.config.BurstLength); burst > transfer {
		transfer = burst
	}

	burstCycles := (transfer + busBytes - 1) / busBytes
	latency := c.config.LatencyCycles + burstCycles

	c.totalCycles += latency
	c.stats.TotalAccesses++
	if isWrite {
		c.stats.TotalWrites++
	} else {
		c.stats.TotalReads++
	}
	c.stats.BytesTransferred += transfer

	// Single-pass running mean over memory accesses only.
	c.stats.AverageLatency += (float64(latency) - c.stats.AverageLatency) /
		float64(c.stats.TotalAccesses)

	c.stats.EffectiveBandwidthMBs =
		float64(c.stats.BytesTransferred) / float64(c.totalCycles) *
			float64(c.config.FrequencyMHz)
	c.stats.BandwidthUtilizationPct =
		100 * c.stats.EffectiveBandwidthMBs / c.stats.PeakBandwidthMBs

	result := AccessResult{
		Address:          wrapped,
		IsWrite:          isWrite,
		LatencyCycles:    latency,
		BytesTransferred: transfer,
	}

	if len(c.history) == historyCap {
		c.history = c.history[1:]
	}
	c.history = append(c.history, result)

	return result
}

// recordRegionAccess grows the observed range, recomputes the region
// boundaries, and bumps the counters of the region holding wrapped.
// Boundaries move whenever min/max move, so only the snapshot taken after
// an access is authoritative.
func (c *Comp) recordRegionAccess(wrapped uint32, isWrite bool) {
	if !c.seenAny {
		c.minSeen = wrapped
		c.maxSeen = wrapped
		c.seenAny = true
	} else {
		if wrapped < c.minSeen {
			c.minSeen = wrapped
		}
		if wrapped > c.maxSeen {
			c.maxSeen = wrapped
		}
	}

	span := uint64(c.maxSeen) - uint64(c.minSeen) + 1
	regionSize := (span + NumRegions - 1) / NumRegions

	for i := range c.regions {
		start := uint64(c.minSeen) + uint64(i)*regionSize
		c.regions[i].StartAddress = uint32(start)
		c.regions[i].EndAddress = uint32(start + regionSize - 1)
	}

	idx := int((uint64(wrapped) - uint64(c.minSeen)) / regionSize)
	if idx >= NumRegions {
		idx = NumRegions - 1
	}

	region := &c.regions[idx]
	region.AccessCount++
	if isWrite {
		region.WriteCount++
	} else {
		region.ReadCount++
	}
	region.LastAccess = c.accessClock
}

// Stats returns a snapshot of the traffic counters.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Regions returns a snapshot of the heat-map regions.
func (c *Comp) Regions() [NumRegions]Region {
	return c.regions
}

// History returns a copy of the rolling access history, oldest first.
func (c *Comp) History() []AccessResult {
	history := make([]AccessResult, len(c.history))
	copy(history, c.history)

	return history
}

// Reset clears all counters, the history, and the observed address range,
// so a fresh memory reports empty regions. The peak bandwidth figure is
// recomputed from the config.
func (c *Comp) Reset() {
	c.regions = [NumRegions]Region{}
	c.minSeen = 0
	c.maxSeen = 0
	c.seenAny = false
	c.accessClock = 0
	c.totalCycles = 0
	c.history = nil
	c.stats = Stats{PeakBandwidthMBs: peakBandwidthMBs(c.config)}
}

// peakBandwidthMBs is (bus_width * frequency * k) / 8000 with k = 2 for
// double-data-rate technologies.
func peakBandwidthMBs(cfg Config) float64 {
	k := 1.0
	if cfg.isDoubleDataRate() {
		k = 2.0
	}

	return float64(cfg.BusWidthBits) * float64(cfg.FrequencyMHz) * k / 8000
}
