package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dath2006/cache-insights/analysis"
	"github.com/dath2006/cache-insights/cache"
	"github.com/dath2006/cache-insights/trace"
)

var sweepFlags struct {
	tracePath string
	multi     bool

	sizesKB   []uint
	l1SizesKB []uint
	l2SizesKB []uint
	assocs    []uint
	blocks    []uint
	policies  []string

	mem     memFlags
	seed    int64
	workers int
	top     int
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Evaluate a cartesian product of cache configurations on a trace",
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().StringVar(&sweepFlags.tracePath, "trace", "",
		"trace file to replay")
	_ = sweepCmd.MarkFlagRequired("trace")

	sweepCmd.Flags().BoolVar(&sweepFlags.multi, "multi-level", false,
		"sweep L1/L2 pairs instead of single levels")
	sweepCmd.Flags().UintSliceVar(&sweepFlags.sizesKB, "sizes-kb",
		[]uint{4, 8, 16, 32, 64}, "cache sizes in KiB (single-level)")
	sweepCmd.Flags().UintSliceVar(&sweepFlags.l1SizesKB, "l1-sizes-kb",
		[]uint{16, 32, 64}, "L1 sizes in KiB (multi-level)")
	sweepCmd.Flags().UintSliceVar(&sweepFlags.l2SizesKB, "l2-sizes-kb",
		[]uint{128, 256, 512}, "L2 sizes in KiB (multi-level)")
	sweepCmd.Flags().UintSliceVar(&sweepFlags.assocs, "assocs",
		[]uint{1, 2, 4, 8}, "associativities")
	sweepCmd.Flags().UintSliceVar(&sweepFlags.blocks, "blocks",
		[]uint{32, 64, 128}, "block sizes in bytes")
	sweepCmd.Flags().StringSliceVar(&sweepFlags.policies, "policies",
		[]string{"LRU", "FIFO", "LFU", "RANDOM"}, "replacement policies")

	addMemFlags(sweepCmd, &sweepFlags.mem)
	sweepCmd.Flags().Int64Var(&sweepFlags.seed, "seed", 0,
		"seed for RANDOM-policy eviction")
	sweepCmd.Flags().IntVar(&sweepFlags.workers, "workers", 0,
		"parallel workers (0 uses all CPUs)")
	sweepCmd.Flags().IntVar(&sweepFlags.top, "top", 10,
		"number of results to print")
}

func runSweep(_ *cobra.Command, _ []string) error {
	tr, err := loadTrace(sweepFlags.tracePath)
	if err != nil {
		return err
	}

	policies := make([]cache.ReplacementPolicy, 0, len(sweepFlags.policies))
	for _, p := range sweepFlags.policies {
		policies = append(policies, cache.ReplacementPolicy(p))
	}

	if sweepFlags.multi {
		return runMultiSweep(tr, policies)
	}

	return runSingleSweep(tr, policies)
}

func runSingleSweep(
	tr []trace.Access,
	policies []cache.ReplacementPolicy,
) error {
	results := analysis.SingleLevelSweep(analysis.SingleLevelSweepInput{
		Trace:           tr,
		CacheSizesKB:    toUint32(sweepFlags.sizesKB),
		Associativities: toUint32(sweepFlags.assocs),
		BlockSizes:      toUint32(sweepFlags.blocks),
		Policies:        policies,
		Memory:          sweepFlags.mem.config(),
		RandSeed:        sweepFlags.seed,
		Workers:         sweepFlags.workers,
	})

	fmt.Printf("%d configurations evaluated\n", len(results))
	for i, r := range results {
		if i >= sweepFlags.top {
			break
		}

		fmt.Printf("%2d. %4dKiB %2d-way %3dB %-6s  hit %.4f  AMAT %7.2f  score %.5f\n",
			i+1, r.Config.SizeBytes/1024, r.Config.Associativity,
			r.Config.BlockSize, r.Config.Policy,
			r.Stats.HitRate(), r.AMAT, r.Score)
	}

	return nil
}

func runMultiSweep(
	tr []trace.Access,
	policies []cache.ReplacementPolicy,
) error {
	results := analysis.MultiLevelSweep(analysis.MultiLevelSweepInput{
		Trace:           tr,
		L1SizesKB:       toUint32(sweepFlags.l1SizesKB),
		L2SizesKB:       toUint32(sweepFlags.l2SizesKB),
		Associativities: toUint32(sweepFlags.assocs),
		BlockSizes:      toUint32(sweepFlags.blocks),
		Policies:        policies,
		Memory:          sweepFlags.mem.config(),
		RandSeed:        sweepFlags.seed,
		Workers:         sweepFlags.workers,
	})

	fmt.Printf("%d configurations evaluated\n", len(results))
	for i, r := range results {
		if i >= sweepFlags.top {
			break
		}

		fmt.Printf("%2d. L1 %4dKiB / L2 %4dKiB %2d-way %3dB %-6s  L1 hit %.4f  AMAT %7.2f  score %.5f\n",
			i+1, r.L1.SizeBytes/1024, r.L2.SizeBytes/1024,
			r.L1.Associativity, r.L1.BlockSize, r.L1.Policy,
			r.L1Stats.HitRate(), r.AMAT, r.Score)
	}

	return nil
}

func toUint32(in []uint) []uint32 {
	out := make([]uint32, len(in))
	for i, v := range in {
		out[i] = uint32(v)
	}

	return out
}
