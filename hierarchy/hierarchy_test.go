package hierarchy

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dath2006/cache-insights/cache"
	"github.com/dath2006/cache-insights/memory"
)

func smallCache(sizeBytes uint32) cache.Config {
	return cache.Config{
		SizeBytes:     sizeBytes,
		BlockSize:     16,
		Associativity: 1,
		Policy:        cache.LRU,
		Write:         cache.WriteBack,
	}
}

func testMemory() memory.Config {
	return memory.Config{
		SizeMB:        64,
		LatencyCycles: 100,
		BusWidthBits:  64,
		FrequencyMHz:  2400,
		MemType:       memory.DDR4,
		BurstLength:   8,
	}
}

var _ = Describe("Comp", func() {
	Context("with both levels enabled", func() {
		var c *Comp

		BeforeEach(func() {
			var err error
			c, err = MakeBuilder().
				WithL1(smallCache(32)).
				WithL2(smallCache(64)).
				WithMemory(testMemory()).
				Build()
			Expect(err).ToNot(HaveOccurred())
		})

		It("should walk L1, L2, memory on a cold access", func() {
			r := c.Access(0x00, false)

			Expect(r.DataPath).To(Equal([]Level{LevelL1, LevelL2, LevelMemory}))
			Expect(r.L1.Hit).To(BeFalse())
			Expect(r.L2.Hit).To(BeFalse())
			Expect(r.L1.MemoryAccessed).To(BeTrue())
			Expect(r.L2.MemoryAccessed).To(BeTrue())

			// 16-byte block padded to the 64-byte burst: 8 transfer cycles.
			Expect(r.Memory.LatencyCycles).To(Equal(uint64(108)))
			Expect(r.TotalLatencyCycles).To(Equal(uint64(1 + 10 + 108)))
		})

		It("should stop at L1 on a warm access", func() {
			c.Access(0x00, false)
			r := c.Access(0x00, false)

			Expect(r.DataPath).To(Equal([]Level{LevelL1}))
			Expect(r.L1.Hit).To(BeTrue())
			Expect(r.L2).To(BeNil())
			Expect(r.Memory).To(BeNil())
			Expect(r.L1.MemoryAccessed).To(BeFalse())
			Expect(r.TotalLatencyCycles).To(Equal(uint64(1)))
		})

		It("should charge L1's hit time even when it misses", func() {
			// L2 is twice L1: 0x20 conflicts in L1 (2 sets) but not in
			// L2 (4 sets).
			c.Access(0x00, false)
			c.Access(0x20, false)
			r := c.Access(0x00, false)

			Expect(r.L1.Hit).To(BeFalse())
			Expect(r.L2.Hit).To(BeTrue())
			Expect(r.DataPath).To(Equal([]Level{LevelL1, LevelL2}))
			Expect(r.TotalLatencyCycles).To(Equal(uint64(1 + 10)))
		})

		It("should count a combined hit when any level hits", func() {
			c.Access(0x00, false)
			c.Access(0x20, false)
			c.Access(0x00, false) // L1 miss, L2 hit

			combined := c.CombinedStats()
			Expect(combined.TotalAccesses).To(Equal(uint64(3)))
			Expect(combined.Hits).To(Equal(uint64(1)))
			Expect(combined.Misses).To(Equal(uint64(2)))
		})

		It("should accumulate monotonically positive latency", func() {
			var last uint64
			for _, addr := range []uint32{0x00, 0x20, 0x00, 0x40, 0x00} {
				r := c.Access(addr, false)
				Expect(r.TotalLatencyCycles).To(BeNumerically(">", 0))

				total := c.TotalCycles()
				Expect(total).To(BeNumerically(">", last))
				last = total
			}
		})

		It("should transfer L1's block size on a full miss", func() {
			r := c.Access(0x00, false)
			// 16-byte L1 block, padded to the 64-byte burst minimum.
			Expect(r.Memory.BytesTransferred).To(Equal(uint64(64)))
		})
	})

	Context("with only L2 enabled", func() {
		It("should skip L1 entirely", func() {
			c, err := MakeBuilder().
				WithL2(smallCache(64)).
				WithMemory(testMemory()).
				Build()
			Expect(err).ToNot(HaveOccurred())

			r := c.Access(0x00, false)
			Expect(r.L1).To(BeNil())
			Expect(r.DataPath).To(Equal([]Level{LevelL2, LevelMemory}))
			Expect(r.TotalLatencyCycles).To(Equal(uint64(10 + 108)))
		})
	})

	Context("with no level enabled", func() {
		It("should go straight to memory with 64-byte lines", func() {
			c, err := MakeBuilder().WithMemory(testMemory()).Build()
			Expect(err).ToNot(HaveOccurred())

			r := c.Access(0x00, false)
			Expect(r.DataPath).To(Equal([]Level{LevelMemory}))
			Expect(r.Memory.BytesTransferred).To(Equal(uint64(64)))
			Expect(c.CombinedStats().Misses).To(Equal(uint64(1)))
		})
	})

	Context("independent lookups", func() {
		It("should not enforce inclusion between the levels", func() {
			c, err := MakeBuilder().
				WithL1(smallCache(32)).
				WithL2(smallCache(64)).
				WithMemory(testMemory()).
				Build()
			Expect(err).ToNot(HaveOccurred())

			// 0x00 and 0x20 alternate in L1's set 0; L2 keeps both.
			c.Access(0x00, false)
			c.Access(0x20, false)

			l1Valid := 0
			for _, set := range c.L1().Sets() {
				for _, b := range set.Blocks {
					if b.Valid {
						l1Valid++
					}
				}
			}
			l2Valid := 0
			for _, set := range c.L2().Sets() {
				for _, b := range set.Blocks {
					if b.Valid {
						l2Valid++
					}
				}
			}

			Expect(l1Valid).To(Equal(1))
			Expect(l2Valid).To(Equal(2))
		})
	})

	Context("reset", func() {
		It("should zero every level and the memory", func() {
			c, err := MakeBuilder().
				WithL1(smallCache(32)).
				WithL2(smallCache(64)).
				WithMemory(testMemory()).
				Build()
			Expect(err).ToNot(HaveOccurred())

			c.Access(0x00, true)
			c.Reset()

			Expect(c.CombinedStats()).To(Equal(cache.Stats{}))
			Expect(c.TotalCycles()).To(Equal(uint64(0)))
			Expect(c.L1().Stats()).To(Equal(cache.Stats{}))
			Expect(c.L2().Stats()).To(Equal(cache.Stats{}))
			Expect(c.MemoryStats().TotalAccesses).To(Equal(uint64(0)))
		})
	})

	Context("invalid configurations", func() {
		It("should refuse to build a bad level", func() {
			bad := smallCache(32)
			bad.BlockSize = 3

			_, err := MakeBuilder().
				WithL1(bad).
				WithMemory(testMemory()).
				Build()
			Expect(err).To(MatchError(cache.ErrConfigInvalid))
		})
	})
})

var _ = Describe("AMAT", func() {
	memCfg := testMemory()

	It("should return the raw penalty with no levels", func() {
		c, err := MakeBuilder().WithMemory(memCfg).Build()
		Expect(err).ToNot(HaveOccurred())

		Expect(c.AMAT(1, 10, 100)).To(Equal(100.0))
	})

	It("should fold both levels", func() {
		c, err := MakeBuilder().
			WithL1(smallCache(32)).
			WithL2(smallCache(64)).
			WithMemory(memCfg).
			Build()
		Expect(err).ToNot(HaveOccurred())

		// L1: 1 hit / 2; L2: 0 hits / 1.
		c.Access(0x00, false)
		c.Access(0x00, false)

		l1Miss := 1 - c.L1().Stats().HitRate()
		expected := 1 + l1Miss*(10+1.0*100)
		Expect(c.AMAT(1, 10, 100)).To(BeNumerically("~", expected, 1e-9))
	})

	It("should treat an unaccessed level as always missing", func() {
		c, err := MakeBuilder().
			WithL1(smallCache(32)).
			WithL2(smallCache(64)).
			WithMemory(memCfg).
			Build()
		Expect(err).ToNot(HaveOccurred())

		// No accesses at all: AMAT = 1 + 1*(10 + 1*100).
		Expect(c.AMAT(1, 10, 100)).To(Equal(111.0))
	})

	It("should use only L1 when L2 is disabled", func() {
		c, err := MakeBuilder().
			WithL1(smallCache(32)).
			WithMemory(memCfg).
			Build()
		Expect(err).ToNot(HaveOccurred())

		c.Access(0x00, false)
		c.Access(0x00, false)

		Expect(c.AMAT(1, 10, 100)).To(BeNumerically("~", 1+0.5*100, 1e-9))
	})
})
