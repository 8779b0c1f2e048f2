package hierarchy

import (
	"github.com/dath2006/cache-insights/cache"
	"github.com/dath2006/cache-insights/memory"
)

// A Builder can build cache hierarchies.
type Builder struct {
	config    Config
	memConfig memory.Config
	randSeed  int64
}

// MakeBuilder returns a Builder with both levels disabled and the default
// memory model. Levels are enabled by WithL1/WithL2.
func MakeBuilder() Builder {
	return Builder{
		memConfig: memory.Config{
			SizeMB:        1024,
			LatencyCycles: 100,
			BusWidthBits:  64,
			FrequencyMHz:  2400,
			MemType:       memory.DDR4,
			BurstLength:   8,
		},
	}
}

// WithL1 enables the L1 level with the given configuration.
func (b Builder) WithL1(cfg cache.Config) Builder {
	b.config.L1 = cfg
	b.config.L1Enabled = true
	return b
}

// WithL2 enables the L2 level with the given configuration.
func (b Builder) WithL2(cfg cache.Config) Builder {
	b.config.L2 = cfg
	b.config.L2Enabled = true
	return b
}

// WithConfig replaces the whole level selection.
func (b Builder) WithConfig(cfg Config) Builder {
	b.config = cfg
	return b
}

// WithMemory sets the main-memory configuration.
func (b Builder) WithMemory(cfg memory.Config) Builder {
	b.memConfig = cfg
	return b
}

// WithRandSeed seeds the rand sources of RANDOM-policy levels. L2 derives
// its seed from the same value so the two levels stay decoupled.
func (b Builder) WithRandSeed(seed int64) Builder {
	b.randSeed = seed
	return b
}

// Build constructs the enabled levels and the memory. Any invalid
// configuration fails the whole build.
func (b Builder) Build() (*Comp, error) {
	c := &Comp{}

	if b.config.L1Enabled {
		l1, err := cache.MakeBuilder().
			WithConfig(b.config.L1).
			WithRandSeed(b.randSeed).
			Build()
		if err != nil {
			return nil, err
		}
		c.l1 = l1
	}

	if b.config.L2Enabled {
		l2, err := cache.MakeBuilder().
			WithConfig(b.config.L2).
			WithRandSeed(b.randSeed + 1).
			Build()
		if err != nil {
			return nil, err
		}
		c.l2 = l2
	}

	mem, err := memory.MakeBuilder().WithConfig(b.memConfig).Build()
	if err != nil {
		return nil, err
	}
	c.mem = mem

	return c, nil
}
