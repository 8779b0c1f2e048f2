package memory

// A Builder can build main-memory models.
type Builder struct {
	sizeMB        uint32
	latencyCycles uint64
	busWidthBits  uint32
	frequencyMHz  uint32
	memType       MemType
	burstLength   uint32
}

// MakeBuilder returns a Builder with a 1-GiB DDR4 memory on a 64-bit,
// 2400-MHz bus with burst length 8 as the default.
func MakeBuilder() Builder {
	return Builder{
		sizeMB:        1024,
		latencyCycles: 100,
		busWidthBits:  64,
		frequencyMHz:  2400,
		memType:       DDR4,
		burstLength:   8,
	}
}

// WithSizeMB sets the memory capacity in MiB.
func (b Builder) WithSizeMB(sizeMB uint32) Builder {
	b.sizeMB = sizeMB
	return b
}

// WithLatency sets the base access latency in cycles.
func (b Builder) WithLatency(cycles uint64) Builder {
	b.latencyCycles = cycles
	return b
}

// WithBusWidth sets the data-bus width in bits.
func (b Builder) WithBusWidth(bits uint32) Builder {
	b.busWidthBits = bits
	return b
}

// WithFrequency sets the bus frequency in MHz.
func (b Builder) WithFrequency(mhz uint32) Builder {
	b.frequencyMHz = mhz
	return b
}

// WithMemType sets the memory technology.
func (b Builder) WithMemType(t MemType) Builder {
	b.memType = t
	return b
}

// WithBurstLength sets the burst length in bus beats.
func (b Builder) WithBurstLength(burst uint32) Builder {
	b.burstLength = burst
	return b
}

// WithConfig copies all fields from cfg.
func (b Builder) WithConfig(cfg Config) Builder {
	b.sizeMB = cfg.SizeMB
	b.latencyCycles = cfg.LatencyCycles
	b.busWidthBits = cfg.BusWidthBits
	b.frequencyMHz = cfg.FrequencyMHz
	b.memType = cfg.MemType
	b.burstLength = cfg.BurstLength

	return b
}

// Build validates the configuration and returns the memory model.
func (b Builder) Build() (*Comp, error) {
	cfg := Config{
		SizeMB:        b.sizeMB,
		LatencyCycles: b.latencyCycles,
		BusWidthBits:  b.busWidthBits,
		FrequencyMHz:  b.frequencyMHz,
		MemType:       b.memType,
		BurstLength:   b.burstLength,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Comp{
		config:    cfg,
		sizeBytes: uint64(cfg.SizeMB) << 20,
	}
	c.Reset()

	return c, nil
}
