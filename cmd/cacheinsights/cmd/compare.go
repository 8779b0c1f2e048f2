package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dath2006/cache-insights/analysis"
	"github.com/dath2006/cache-insights/cache"
	"github.com/dath2006/cache-insights/hierarchy"
)

var compareFlags struct {
	tracePath string
	presets   []string
	mem       memFlags
	seed      int64
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run named configurations over one trace and rank the winners",
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&compareFlags.tracePath, "trace", "",
		"trace file to replay")
	_ = compareCmd.MarkFlagRequired("trace")

	compareCmd.Flags().StringSliceVar(&compareFlags.presets, "presets", nil,
		"preset names to compare (default: all)")
	addMemFlags(compareCmd, &compareFlags.mem)
	compareCmd.Flags().Int64Var(&compareFlags.seed, "seed", 0,
		"seed for RANDOM-policy eviction")
}

func presetConfigs() []analysis.NamedConfig {
	l1 := func(sizeKB, assoc, block uint32, policy cache.ReplacementPolicy,
	) cache.Config {
		return cache.Config{
			SizeBytes:     sizeKB * 1024,
			BlockSize:     block,
			Associativity: assoc,
			Policy:        policy,
			Write:         cache.WriteBack,
		}
	}

	return []analysis.NamedConfig{
		{
			Name: "direct-mapped",
			Config: hierarchy.Config{
				L1: l1(32, 1, 64, cache.LRU), L1Enabled: true,
			},
		},
		{
			Name: "4-way-lru",
			Config: hierarchy.Config{
				L1: l1(32, 4, 64, cache.LRU), L1Enabled: true,
			},
		},
		{
			Name: "4-way-lfu",
			Config: hierarchy.Config{
				L1: l1(32, 4, 64, cache.LFU), L1Enabled: true,
			},
		},
		{
			Name: "8-way-fifo",
			Config: hierarchy.Config{
				L1: l1(32, 8, 64, cache.FIFO), L1Enabled: true,
			},
		},
		{
			Name: "l1-plus-l2",
			Config: hierarchy.Config{
				L1: l1(32, 4, 64, cache.LRU), L1Enabled: true,
				L2: l1(256, 8, 64, cache.LRU), L2Enabled: true,
			},
		},
	}
}

func runCompare(_ *cobra.Command, _ []string) error {
	tr, err := loadTrace(compareFlags.tracePath)
	if err != nil {
		return err
	}

	configs := presetConfigs()
	if len(compareFlags.presets) > 0 {
		selected := make([]analysis.NamedConfig, 0, len(compareFlags.presets))
		for _, name := range compareFlags.presets {
			found := false
			for _, nc := range configs {
				if nc.Name == name {
					selected = append(selected, nc)
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("unknown preset %q", name)
			}
		}
		configs = selected
	}

	report := analysis.Compare(
		configs, tr, compareFlags.mem.config(), compareFlags.seed)

	if len(report.Results) == 0 {
		fmt.Println("No results (empty trace?)")
		return nil
	}

	for _, r := range report.Results {
		fmt.Printf("%-14s  combined hit %.4f  AMAT %7.2f  cycles %d\n",
			r.Name, r.CombinedHitRate, r.AMAT, r.TotalCycles)
	}

	fmt.Printf("Best hit rate: %s\n", report.Results[report.BestHitRate].Name)
	fmt.Printf("Best AMAT:     %s\n", report.Results[report.BestAMAT].Name)
	fmt.Printf("Best cycles:   %s\n", report.Results[report.BestCycles].Name)

	return nil
}
