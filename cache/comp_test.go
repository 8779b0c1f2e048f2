package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

func mustBuild(b Builder) *Comp {
	c, err := b.Build()
	Expect(err).ToNot(HaveOccurred())
	return c
}

var _ = Describe("Comp", func() {
	Context("direct-mapped conflicts", func() {
		// 64 B, 1 way, 16 B blocks: 4 sets.
		var c *Comp

		BeforeEach(func() {
			c = mustBuild(MakeBuilder().
				WithSize(64).WithBlockSize(16).WithAssociativity(1))
		})

		It("should miss on alternating tags of the same set", func() {
			Expect(c.Access(0x000, false).Hit).To(BeFalse())
			Expect(c.Access(0x040, false).Hit).To(BeFalse())
			Expect(c.Access(0x000, false).Hit).To(BeFalse())

			stats := c.Stats()
			Expect(stats.Misses).To(Equal(uint64(3)))
			Expect(stats.Writebacks).To(Equal(uint64(0)))

			set0 := c.Sets()[0]
			Expect(set0.Blocks[0].Valid).To(BeTrue())
			tag, _, _ := c.Geometry().Decompose(0x000)
			Expect(set0.Blocks[0].Tag).To(Equal(tag))
		})

		It("should report the displaced tag", func() {
			c.Access(0x000, false)
			r := c.Access(0x040, false)

			evictedTag, _, _ := c.Geometry().Decompose(0x000)
			Expect(r.Evicted).To(BeTrue())
			Expect(r.EvictedTag).To(Equal(evictedTag))
		})
	})

	Context("policy divergence in a 2-way set", func() {
		// 128 B, 2 ways, 16 B blocks: 4 sets; 0x00/0x40/0x80 share set 0.
		trace := []uint32{0x00, 0x40, 0x00, 0x80}

		replay := func(policy ReplacementPolicy) *Comp {
			c := mustBuild(MakeBuilder().
				WithSize(128).WithBlockSize(16).WithAssociativity(2).
				WithPolicy(policy))
			for _, addr := range trace {
				c.Access(addr, false)
			}
			return c
		}

		tags := func(c *Comp) []uint32 {
			var out []uint32
			for _, b := range c.Sets()[0].Blocks {
				if b.Valid {
					out = append(out, b.Tag)
				}
			}
			return out
		}

		It("should retain the hot block under LRU", func() {
			c := replay(LRU)

			stats := c.Stats()
			Expect(stats.Hits).To(Equal(uint64(1)))
			Expect(stats.HitRate()).To(Equal(0.25))

			tag0, _, _ := c.Geometry().Decompose(0x00)
			tag8, _, _ := c.Geometry().Decompose(0x80)
			Expect(tags(c)).To(ConsistOf(tag0, tag8))
		})

		It("should evict the first insertion under FIFO", func() {
			c := replay(FIFO)

			tag4, _, _ := c.Geometry().Decompose(0x40)
			tag8, _, _ := c.Geometry().Decompose(0x80)
			Expect(tags(c)).To(ConsistOf(tag4, tag8))
		})
	})

	Context("LFU versus LRU", func() {
		It("should protect the frequent block under LFU only", func() {
			build := func(policy ReplacementPolicy) *Comp {
				return mustBuild(MakeBuilder().
					WithSize(128).WithBlockSize(16).WithAssociativity(2).
					WithPolicy(policy))
			}

			replay := func(c *Comp) {
				for i := 0; i < 5; i++ {
					c.Access(0x00, false)
				}
				c.Access(0x40, false)
				c.Access(0x80, false)
			}

			lfu := build(LFU)
			replay(lfu)
			tag0, _, _ := lfu.Geometry().Decompose(0x00)
			Expect(lfu.Sets()[0].Blocks[0].Tag).To(Equal(tag0))
			Expect(lfu.Sets()[0].Blocks[0].Valid).To(BeTrue())

			lru := build(LRU)
			replay(lru)
			tag8, _, _ := lru.Geometry().Decompose(0x80)
			Expect(lru.Sets()[0].Blocks[0].Tag).To(Equal(tag8))
		})
	})

	Context("write-back dirty accounting", func() {
		It("should write back an evicted dirty block", func() {
			// 32 B, 1 way, 16 B blocks: 2 sets; 0x00 and 0x20 share set 0.
			c := mustBuild(MakeBuilder().
				WithSize(32).WithBlockSize(16).WithAssociativity(1))

			r := c.Access(0x00, true)
			Expect(r.Hit).To(BeFalse())
			Expect(c.Sets()[0].Blocks[0].Dirty).To(BeTrue())

			c.Access(0x20, false)
			Expect(c.Stats().Writebacks).To(Equal(uint64(1)))
		})

		It("should not write back a clean victim", func() {
			c := mustBuild(MakeBuilder().
				WithSize(32).WithBlockSize(16).WithAssociativity(1))

			c.Access(0x00, false)
			c.Access(0x20, false)
			Expect(c.Stats().Writebacks).To(Equal(uint64(0)))
		})

		It("should mark a hit block dirty on a write", func() {
			c := mustBuild(MakeBuilder().
				WithSize(32).WithBlockSize(16).WithAssociativity(1))

			c.Access(0x00, false)
			c.Access(0x00, true)
			Expect(c.Sets()[0].Blocks[0].Dirty).To(BeTrue())
		})
	})

	Context("write-through", func() {
		It("should never mark a block dirty", func() {
			c := mustBuild(MakeBuilder().
				WithSize(64).WithBlockSize(16).WithAssociativity(2).
				WithWritePolicy(WriteThrough))

			for _, addr := range []uint32{0x00, 0x20, 0x00, 0x40, 0x60} {
				c.Access(addr, true)
			}

			for _, set := range c.Sets() {
				for _, b := range set.Blocks {
					Expect(b.Dirty).To(BeFalse())
				}
			}
			Expect(c.Stats().Writebacks).To(Equal(uint64(0)))
		})

		It("should still install on a write miss", func() {
			c := mustBuild(MakeBuilder().
				WithSize(64).WithBlockSize(16).WithAssociativity(1).
				WithWritePolicy(WriteThrough))

			c.Access(0x00, true)
			Expect(c.Sets()[0].Blocks[0].Valid).To(BeTrue())
		})
	})

	Context("bookkeeping invariants", func() {
		It("should keep hits + misses == total at every step", func() {
			c := mustBuild(MakeBuilder().
				WithSize(128).WithBlockSize(16).WithAssociativity(2))

			addrs := []uint32{0x00, 0x40, 0x00, 0x80, 0x40, 0xC0, 0x00}
			for i, addr := range addrs {
				c.Access(addr, i%3 == 0)
				stats := c.Stats()
				Expect(stats.Hits + stats.Misses).To(Equal(stats.TotalAccesses))
				Expect(stats.TotalAccesses).To(Equal(uint64(i + 1)))
			}
		})

		It("should never hold duplicate valid tags in a set", func() {
			c := mustBuild(MakeBuilder().
				WithSize(256).WithBlockSize(16).WithAssociativity(4))

			addrs := []uint32{
				0x000, 0x100, 0x000, 0x200, 0x300, 0x100, 0x400, 0x000,
			}
			for _, addr := range addrs {
				c.Access(addr, false)

				for _, set := range c.Sets() {
					seen := map[uint32]bool{}
					for _, b := range set.Blocks {
						if !b.Valid {
							continue
						}
						Expect(seen[b.Tag]).To(BeFalse())
						seen[b.Tag] = true
					}
				}
			}
		})

		It("should install the missed tag as exactly one valid block", func() {
			c := mustBuild(MakeBuilder().
				WithSize(128).WithBlockSize(16).WithAssociativity(2))

			r := c.Access(0x240, false)
			Expect(r.Hit).To(BeFalse())

			matches := 0
			for _, b := range c.Sets()[r.SetIndex].Blocks {
				if b.Valid && b.Tag == r.Tag {
					matches++
				}
			}
			Expect(matches).To(Equal(1))
		})

		It("should count the installing access itself", func() {
			c := mustBuild(MakeBuilder().
				WithSize(64).WithBlockSize(16).WithAssociativity(1))

			r := c.Access(0x00, false)
			Expect(c.Sets()[0].Blocks[r.WayIndex].AccessCount).
				To(Equal(uint64(1)))
		})
	})

	Context("snapshots", func() {
		It("should deep-copy the sets", func() {
			c := mustBuild(MakeBuilder().
				WithSize(64).WithBlockSize(16).WithAssociativity(1))
			c.Access(0x00, false)

			snapshot := c.Sets()
			snapshot[0].Blocks[0].Tag = 0xDEAD
			snapshot[0].Blocks[0].Valid = false

			Expect(c.Sets()[0].Blocks[0].Valid).To(BeTrue())
		})
	})

	Context("reset", func() {
		It("should behave like a fresh cache after reset", func() {
			build := func() *Comp {
				return mustBuild(MakeBuilder().
					WithSize(128).WithBlockSize(16).WithAssociativity(2).
					WithPolicy(LFU))
			}

			used := build()
			for _, addr := range []uint32{0x00, 0x40, 0x80, 0x00, 0x40} {
				used.Access(addr, true)
			}
			used.Reset()

			Expect(used.Stats()).To(Equal(Stats{}))

			fresh := build()
			for _, addr := range []uint32{0x00, 0x40, 0x00, 0x80} {
				Expect(used.Access(addr, false)).
					To(Equal(fresh.Access(addr, false)))
			}
			Expect(used.Stats()).To(Equal(fresh.Stats()))
			Expect(used.Sets()).To(Equal(fresh.Sets()))
		})
	})

	Context("edge geometries", func() {
		It("should behave as global LRU with a single set", func() {
			// 64 B, 4 ways, 16 B blocks: fully associative.
			c := mustBuild(MakeBuilder().
				WithSize(64).WithBlockSize(16).WithAssociativity(4))

			for _, addr := range []uint32{0x00, 0x10, 0x20, 0x30} {
				c.Access(addr, false)
			}
			c.Access(0x00, false) // refresh the oldest

			r := c.Access(0x40, false)
			evictedTag, _, _ := c.Geometry().Decompose(0x10)
			Expect(r.EvictedTag).To(Equal(evictedTag))
		})

		It("should report zero hit rate on an empty cache", func() {
			c := mustBuild(MakeBuilder())
			Expect(c.Stats().HitRate()).To(Equal(0.0))
		})

		It("should miss on the single access of a one-access trace", func() {
			c := mustBuild(MakeBuilder())
			Expect(c.Access(0x00, false).Hit).To(BeFalse())
			Expect(c.Stats().HitRate()).To(Equal(0.0))
		})
	})

	Context("AMAT", func() {
		It("should evaluate hit + missRate * penalty", func() {
			c := mustBuild(MakeBuilder().
				WithSize(128).WithBlockSize(16).WithAssociativity(2))

			c.Access(0x00, false)
			c.Access(0x00, false)
			c.Access(0x40, false)
			c.Access(0x80, false)
			// 1 hit out of 4.

			Expect(c.AMAT(1, 100)).To(BeNumerically("~", 1+0.75*100, 1e-9))
		})
	})
})

var _ = Describe("Comp with a mock finder", func() {
	var (
		mockCtrl *gomock.Controller
		finder   *MockVictimFinder
		c        *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		finder = NewMockVictimFinder(mockCtrl)

		var err error
		c, err = MakeBuilder().
			WithSize(64).WithBlockSize(16).WithAssociativity(2).
			WithVictimFinder(finder).
			Build()
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should fill invalid ways without consulting the finder", func() {
		c.Access(0x00, false)
		c.Access(0x40, false)
	})

	It("should consult the finder only when the set is full", func() {
		c.Access(0x00, false)
		c.Access(0x40, false)

		finder.EXPECT().FindVictim(gomock.Any()).Return(1)
		r := c.Access(0x80, false)
		Expect(r.WayIndex).To(Equal(1))
		Expect(r.Evicted).To(BeTrue())
	})

	It("should report hits to the finder", func() {
		c.Access(0x00, false)

		finder.EXPECT().Touch(gomock.Any(), uint64(2))
		Expect(c.Access(0x00, false).Hit).To(BeTrue())
	})
})
