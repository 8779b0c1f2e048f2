// Package analysis evaluates cache configurations against a trace: a
// parameter-sweep optimizer that ranks candidates by a cost-adjusted score,
// and a comparison runner that pits named configurations against each
// other.
package analysis

import (
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/dath2006/cache-insights/cache"
	"github.com/dath2006/cache-insights/hierarchy"
	"github.com/dath2006/cache-insights/memory"
	"github.com/dath2006/cache-insights/trace"
)

// Cost-factor multipliers applied to log2 of the total size in KiB.
const (
	singleLevelCostWeight = 0.1
	multiLevelCostWeight  = 0.05
)

// A SingleLevelSweepInput enumerates the single-level candidate space.
// Invalid combinations are skipped silently and never enter the results.
type SingleLevelSweepInput struct {
	Trace           []trace.Access
	CacheSizesKB    []uint32
	Associativities []uint32
	BlockSizes      []uint32
	Policies        []cache.ReplacementPolicy
	Write           cache.WritePolicy
	Memory          memory.Config
	RandSeed        int64
	Workers         int
}

// A SingleLevelResult is one scored candidate of a single-level sweep.
type SingleLevelResult struct {
	Config cache.Config
	Stats  cache.Stats
	AMAT   float64
	Score  float64
}

// SingleLevelSweep replays the trace on every valid candidate and returns
// the results sorted by score, best first. Candidates with equal scores
// keep their enumeration order, so non-RANDOM sweeps are bitwise
// reproducible and RANDOM sweeps are reproducible under a fixed seed.
func SingleLevelSweep(in SingleLevelSweepInput) []SingleLevelResult {
	if in.Memory.Validate() != nil {
		return nil
	}

	write := in.Write
	if write == "" {
		write = cache.WriteBack
	}

	var candidates []cache.Config
	for _, sizeKB := range in.CacheSizesKB {
		for _, assoc := range in.Associativities {
			for _, block := range in.BlockSizes {
				for _, policy := range in.Policies {
					cfg := cache.Config{
						SizeBytes:     sizeKB * 1024,
						BlockSize:     block,
						Associativity: assoc,
						Policy:        policy,
						Write:         write,
					}
					if cfg.Validate() != nil {
						continue
					}
					candidates = append(candidates, cfg)
				}
			}
		}
	}

	results := make([]SingleLevelResult, len(candidates))

	runParallel(len(candidates), in.Workers, func(i int) {
		cfg := candidates[i]

		comp, err := hierarchy.MakeBuilder().
			WithL1(cfg).
			WithMemory(in.Memory).
			WithRandSeed(in.RandSeed).
			Build()
		if err != nil {
			return
		}

		for _, a := range in.Trace {
			comp.Access(a.Address, a.IsWrite)
		}

		amat := comp.AMAT(hierarchy.L1HitCycles, hierarchy.L2HitCycles,
			float64(in.Memory.LatencyCycles))

		results[i] = SingleLevelResult{
			Config: cfg,
			Stats:  comp.L1().Stats(),
			AMAT:   amat,
			Score:  score(amat, cfg.SizeBytes/1024, singleLevelCostWeight),
		}
	})

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// A MultiLevelSweepInput enumerates two-level candidates. Associativities,
// block sizes, and policies are shared between the levels; the L2 must be
// strictly larger than the L1.
type MultiLevelSweepInput struct {
	Trace           []trace.Access
	L1SizesKB       []uint32
	L2SizesKB       []uint32
	Associativities []uint32
	BlockSizes      []uint32
	Policies        []cache.ReplacementPolicy
	Write           cache.WritePolicy
	Memory          memory.Config
	RandSeed        int64
	Workers         int
}

// A MultiLevelResult is one scored candidate of a multi-level sweep.
type MultiLevelResult struct {
	L1      cache.Config
	L2      cache.Config
	L1Stats cache.Stats
	L2Stats cache.Stats
	AMAT    float64
	Score   float64
}

// MultiLevelSweep replays the trace on every valid L1/L2 pair and returns
// the results sorted by score, best first.
func MultiLevelSweep(in MultiLevelSweepInput) []MultiLevelResult {
	if in.Memory.Validate() != nil {
		return nil
	}

	write := in.Write
	if write == "" {
		write = cache.WriteBack
	}

	type pair struct{ l1, l2 cache.Config }

	var candidates []pair
	for _, l1KB := range in.L1SizesKB {
		for _, l2KB := range in.L2SizesKB {
			if l2KB <= l1KB {
				continue
			}

			for _, assoc := range in.Associativities {
				for _, block := range in.BlockSizes {
					for _, policy := range in.Policies {
						l1 := cache.Config{
							SizeBytes:     l1KB * 1024,
							BlockSize:     block,
							Associativity: assoc,
							Policy:        policy,
							Write:         write,
						}
						l2 := l1
						l2.SizeBytes = l2KB * 1024

						if l1.Validate() != nil || l2.Validate() != nil {
							continue
						}
						candidates = append(candidates, pair{l1, l2})
					}
				}
			}
		}
	}

	results := make([]MultiLevelResult, len(candidates))

	runParallel(len(candidates), in.Workers, func(i int) {
		c := candidates[i]

		comp, err := hierarchy.MakeBuilder().
			WithL1(c.l1).
			WithL2(c.l2).
			WithMemory(in.Memory).
			WithRandSeed(in.RandSeed).
			Build()
		if err != nil {
			return
		}

		for _, a := range in.Trace {
			comp.Access(a.Address, a.IsWrite)
		}

		amat := comp.AMAT(hierarchy.L1HitCycles, hierarchy.L2HitCycles,
			float64(in.Memory.LatencyCycles))
		totalKB := (c.l1.SizeBytes + c.l2.SizeBytes) / 1024

		results[i] = MultiLevelResult{
			L1:      c.l1,
			L2:      c.l2,
			L1Stats: comp.L1().Stats(),
			L2Stats: comp.L2().Stats(),
			AMAT:    amat,
			Score:   score(amat, totalKB, multiLevelCostWeight),
		}
	})

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// score is (1/AMAT) / (1 + weight * log2(totalKB)).
func score(amat float64, totalKB uint32, weight float64) float64 {
	costFactor := math.Log2(float64(totalKB)) * weight
	return (1 / amat) / (1 + costFactor)
}

// runParallel fans the candidate indices out over a worker pool. Every
// worker owns its own engine, memory model, and rand source; results land
// in pre-indexed slots so the merge is deterministic.
func runParallel(n, workers int, job func(i int)) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			job(i)
		}
		return
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				job(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}
