package cache

import "math/rand"

// A Builder can build caches.
type Builder struct {
	sizeBytes     uint32
	blockSize     uint32
	associativity uint32
	policy        ReplacementPolicy
	write         WritePolicy
	randSeed      int64
	finder        VictimFinder
}

// MakeBuilder returns a Builder with a 32-KiB, 4-way, 64-byte-block,
// write-back LRU cache as the default.
func MakeBuilder() Builder {
	return Builder{
		sizeBytes:     32 * 1024,
		blockSize:     64,
		associativity: 4,
		policy:        LRU,
		write:         WriteBack,
	}
}

// WithSize sets the total capacity in bytes.
func (b Builder) WithSize(sizeBytes uint32) Builder {
	b.sizeBytes = sizeBytes
	return b
}

// WithBlockSize sets the block (line) size in bytes.
func (b Builder) WithBlockSize(blockSize uint32) Builder {
	b.blockSize = blockSize
	return b
}

// WithAssociativity sets the number of ways per set.
func (b Builder) WithAssociativity(ways uint32) Builder {
	b.associativity = ways
	return b
}

// WithPolicy sets the replacement policy.
func (b Builder) WithPolicy(policy ReplacementPolicy) Builder {
	b.policy = policy
	return b
}

// WithWritePolicy sets the write policy.
func (b Builder) WithWritePolicy(write WritePolicy) Builder {
	b.write = write
	return b
}

// WithRandSeed seeds the rand source used by the RANDOM policy. The
// default seed is 0, so unseeded caches are still reproducible.
func (b Builder) WithRandSeed(seed int64) Builder {
	b.randSeed = seed
	return b
}

// WithVictimFinder injects a custom victim finder, overriding the one the
// replacement policy would select.
func (b Builder) WithVictimFinder(finder VictimFinder) Builder {
	b.finder = finder
	return b
}

// WithConfig copies all geometry and policy fields from cfg.
func (b Builder) WithConfig(cfg Config) Builder {
	b.sizeBytes = cfg.SizeBytes
	b.blockSize = cfg.BlockSize
	b.associativity = cfg.Associativity
	b.policy = cfg.Policy
	b.write = cfg.Write

	return b
}

// Build validates the geometry and returns the cache. An invalid geometry
// fails with ErrConfigInvalid before any stats exist.
func (b Builder) Build() (*Comp, error) {
	cfg := Config{
		SizeBytes:     b.sizeBytes,
		BlockSize:     b.blockSize,
		Associativity: b.associativity,
		Policy:        b.policy,
		Write:         b.write,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	geometry := MakeGeometry(cfg)

	finder := b.finder
	if finder == nil {
		finder = NewVictimFinder(
			cfg.Policy, rand.New(rand.NewSource(b.randSeed)))
	}

	c := &Comp{
		config:   cfg,
		geometry: geometry,
		finder:   finder,
		sets:     make([]Set, geometry.NumSets),
	}

	for i := range c.sets {
		c.sets[i].Blocks = make([]Block, geometry.NumWays)
	}

	return c, nil
}
