package analysis

import (
	"github.com/dath2006/cache-insights/cache"
	"github.com/dath2006/cache-insights/hierarchy"
	"github.com/dath2006/cache-insights/memory"
	"github.com/dath2006/cache-insights/trace"
)

// A NamedConfig is one labelled hierarchy entering a comparison.
type NamedConfig struct {
	Name   string
	Config hierarchy.Config
}

// A ComparisonResult carries the metrics of one configuration after the
// full trace was replayed through it.
type ComparisonResult struct {
	Name            string
	L1Stats         *cache.Stats
	L2Stats         *cache.Stats
	CombinedHitRate float64
	AMAT            float64
	TotalCycles     uint64
}

// A ComparisonReport lists the per-configuration results in input order and
// the winner index per metric. Winner indices are -1 when there are no
// results.
type ComparisonReport struct {
	Results []ComparisonResult

	BestHitRate int
	BestAMAT    int
	BestCycles  int
}

// Compare replays the trace through every named configuration and picks
// the winners: highest combined hit rate, lowest AMAT, lowest total
// cycles. Ties go to the lowest input index. An empty trace yields an
// empty report, not an error.
func Compare(
	configs []NamedConfig,
	tr []trace.Access,
	memCfg memory.Config,
	randSeed int64,
) ComparisonReport {
	report := ComparisonReport{BestHitRate: -1, BestAMAT: -1, BestCycles: -1}

	if len(tr) == 0 {
		return report
	}

	for _, nc := range configs {
		comp, err := hierarchy.MakeBuilder().
			WithConfig(nc.Config).
			WithMemory(memCfg).
			WithRandSeed(randSeed).
			Build()
		if err != nil {
			continue
		}

		for _, a := range tr {
			comp.Access(a.Address, a.IsWrite)
		}

		result := ComparisonResult{
			Name: nc.Name,
			AMAT: comp.AMAT(hierarchy.L1HitCycles, hierarchy.L2HitCycles,
				float64(memCfg.LatencyCycles)),
			TotalCycles: comp.TotalCycles(),
		}

		if l1 := comp.L1(); l1 != nil {
			stats := l1.Stats()
			result.L1Stats = &stats
		}
		if l2 := comp.L2(); l2 != nil {
			stats := l2.Stats()
			result.L2Stats = &stats
		}

		result.CombinedHitRate = combinedHitRate(result.L1Stats, result.L2Stats)

		report.Results = append(report.Results, result)
	}

	for i, r := range report.Results {
		if report.BestHitRate < 0 ||
			r.CombinedHitRate > report.Results[report.BestHitRate].CombinedHitRate {
			report.BestHitRate = i
		}
		if report.BestAMAT < 0 ||
			r.AMAT < report.Results[report.BestAMAT].AMAT {
			report.BestAMAT = i
		}
		if report.BestCycles < 0 ||
			r.TotalCycles < report.Results[report.BestCycles].TotalCycles {
			report.BestCycles = i
		}
	}

	return report
}

// combinedHitRate folds the per-level hit rates by inclusion-exclusion:
// an access hits the hierarchy when L1 hits, or L1 misses and L2 hits.
func combinedHitRate(l1, l2 *cache.Stats) float64 {
	switch {
	case l1 != nil && l2 != nil:
		l1hr := l1.HitRate()
		return l1hr + (1-l1hr)*l2.HitRate()
	case l1 != nil:
		return l1.HitRate()
	case l2 != nil:
		return l2.HitRate()
	}

	return 0
}
