package trace

import (
	"fmt"
	"math/rand"
)

// A Pattern names one of the built-in generators.
type Pattern string

// The built-in access patterns.
const (
	PatternSequential Pattern = "sequential"
	PatternRandom     Pattern = "random"
	PatternStrided    Pattern = "strided"
	PatternTemporal   Pattern = "temporal"
	PatternWorkingSet Pattern = "working-set"
	PatternThrashing  Pattern = "thrashing"
	PatternLRUKiller  Pattern = "lru-killer"
	PatternZipfian    Pattern = "zipfian"
	PatternScanReuse  Pattern = "scan-reuse"
)

// Patterns lists the built-in patterns in a stable order.
func Patterns() []Pattern {
	return []Pattern{
		PatternSequential,
		PatternRandom,
		PatternStrided,
		PatternTemporal,
		PatternWorkingSet,
		PatternThrashing,
		PatternLRUKiller,
		PatternZipfian,
		PatternScanReuse,
	}
}

// Generate runs the named pattern. Deterministic patterns ignore rng.
func Generate(pattern Pattern, p Params, rng *rand.Rand) ([]Access, error) {
	switch pattern {
	case PatternSequential:
		return Sequential(p, rng), nil
	case PatternRandom:
		return Random(p, rng), nil
	case PatternStrided:
		return Strided(p), nil
	case PatternTemporal:
		return Temporal(p), nil
	case PatternWorkingSet:
		return WorkingSet(p, rng), nil
	case PatternThrashing:
		return Thrashing(p), nil
	case PatternLRUKiller:
		return LRUKiller(p), nil
	case PatternZipfian:
		return Zipfian(p, rng), nil
	case PatternScanReuse:
		return ScanReuse(p), nil
	}

	return nil, fmt.Errorf("unknown pattern %q", pattern)
}

// A PatternInfo documents one generator: what it produces, what cache
// behavior it exercises, and how the stress levels tune it.
type PatternInfo struct {
	Name        string
	Description string
	Tests       string
	Expected    string
	Tunings     map[StressLevel]string
}

// Info returns the documentation for a pattern.
func (p Pattern) Info() PatternInfo {
	switch p {
	case PatternSequential:
		return PatternInfo{
			Name: "Sequential",
			Description: "Forward walk from a block-aligned base with a " +
				"fixed stride; about 25% writes.",
			Tests: "Spatial locality and block-size amortization.",
			Expected: "High hit rate once the stride stays inside a " +
				"block; misses only on block boundaries.",
			Tunings: map[StressLevel]string{
				Light:    "stride floor of blockSize/4",
				Moderate: "stride floor of blockSize/4",
				Heavy:    "stride floor of blockSize/4",
				Extreme:  "stride floor of blockSize/4",
			},
		}
	case PatternRandom:
		return PatternInfo{
			Name: "Random",
			Description: "Uniform block-aligned addresses inside the " +
				"calibrated working set; about 30% writes.",
			Tests: "Capacity behavior with no exploitable locality.",
			Expected: "Hit rate tracks workingSet/cacheSize; drops " +
				"sharply past 1x.",
			Tunings: map[StressLevel]string{
				Light:    "working set 0.5x of L1",
				Moderate: "working set 1.5x of L1",
				Heavy:    "working set 3x of L1",
				Extreme:  "working set 8x of L1",
			},
		}
	case PatternStrided:
		return PatternInfo{
			Name: "Strided",
			Description: "Steps by a multiple of the set span, " +
				"read-only.",
			Tests: "Associativity: all accesses land on few sets.",
			Expected: "Conflict misses once the distinct tags per set " +
				"exceed the ways.",
			Tunings: map[StressLevel]string{
				Light:    "stride 0.25x of the set span",
				Moderate: "stride 0.5x of the set span",
				Heavy:    "stride 1x of the set span",
				Extreme:  "stride 2x of the set span",
			},
		}
	case PatternTemporal:
		return PatternInfo{
			Name: "Temporal",
			Description: "A hot set accessed with a frequency gradient, " +
				"interleaved with single scans over a disjoint cold set.",
			Tests: "Replacement-policy quality: recency versus " +
				"frequency.",
			Expected: "LFU keeps the frequent blocks through the cold " +
				"scan; LRU loses them.",
			Tunings: map[StressLevel]string{
				Light:    "hot 0.7x / cold 0.3x of the working set",
				Moderate: "hot 0.5x / cold 1x of the working set",
				Heavy:    "hot 0.3x / cold 2x of the working set",
				Extreme:  "hot 0.2x / cold 5x of the working set",
			},
		}
	case PatternWorkingSet:
		return PatternInfo{
			Name: "WorkingSet",
			Description: "Cycles block-aligned over a fixed window; " +
				"about 12.5% writes.",
			Tests: "The capacity cliff at exactly the window size.",
			Expected: "Near-perfect hits while the window fits; near-" +
				"zero once it does not.",
			Tunings: map[StressLevel]string{
				Light:    "window 0.5x of L1",
				Moderate: "window 1.5x of L1",
				Heavy:    "window 3x of L1",
				Extreme:  "window 8x of L1",
			},
		}
	case PatternThrashing:
		return PatternInfo{
			Name: "Thrashing",
			Description: "Cycles read-only over a window larger than " +
				"the cache.",
			Tests: "Eviction of every block before its reuse.",
			Expected: "Hit rate collapses toward zero under LRU and " +
				"FIFO.",
			Tunings: map[StressLevel]string{
				Light:    "window 1.3x of L1",
				Moderate: "window 2x of L1",
				Heavy:    "window 4x of L1",
				Extreme:  "window 10x of L1",
			},
		}
	case PatternLRUKiller:
		return PatternInfo{
			Name: "LRUKiller",
			Description: "Cycles through slightly more same-set tags " +
				"than the ways can hold, spaced 1 MiB apart.",
			Tests: "The LRU worst case: the evicted block is always " +
				"the next one needed.",
			Expected: "Zero hits under LRU; RANDOM does noticeably " +
				"better.",
			Tunings: map[StressLevel]string{
				Light:    "targets 2 ways plus 1 extra tag",
				Moderate: "targets 4 ways plus 2 extra tags",
				Heavy:    "targets 8 ways plus 3 extra tags",
				Extreme:  "targets 16 ways plus 4 extra tags",
			},
		}
	case PatternZipfian:
		return PatternInfo{
			Name: "Zipfian",
			Description: "Samples blocks from a 1/i^0.99 popularity " +
				"distribution; about 20% writes.",
			Tests: "Skewed reuse as seen in real workloads.",
			Expected: "Hit rate well above uniform-random at the same " +
				"working-set size; LFU shines.",
			Tunings: map[StressLevel]string{
				Light:    "0.5x of L1 distinct blocks",
				Moderate: "1.5x of L1 distinct blocks",
				Heavy:    "3x of L1 distinct blocks",
				Extreme:  "8x of L1 distinct blocks",
			},
		}
	case PatternScanReuse:
		return PatternInfo{
			Name: "ScanReuse",
			Description: "A forward scan followed by a reverse pass " +
				"over its tail, read-only.",
			Tests: "Whether the policy retains the recently scanned " +
				"tail.",
			Expected: "LRU serves the reverse pass from cache; FIFO " +
				"misses part of it.",
			Tunings: map[StressLevel]string{
				Light:    "reuses the last 1/2 of the scan",
				Moderate: "reuses the last 1/4 of the scan",
				Heavy:    "reuses the last 1/8 of the scan",
				Extreme:  "reuses the last 1/16 of the scan",
			},
		}
	}

	return PatternInfo{Name: string(p)}
}
