package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dath2006/cache-insights/cache"
	"github.com/dath2006/cache-insights/hierarchy"
	"github.com/dath2006/cache-insights/history"
	"github.com/dath2006/cache-insights/monitoring"
)

var runFlags struct {
	l1          cacheFlags
	l2          cacheFlags
	l2Enabled   bool
	writePolicy string
	mem         memFlags
	seed        int64

	historyPath string
	serve       bool
	openPage    bool
	port        int
}

var runCmd = &cobra.Command{
	Use:   "run <trace-file>",
	Short: "Replay a trace through a cache hierarchy and report the stats",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	addCacheFlags(runCmd, "l1", &runFlags.l1, 32, 4, 64)
	addCacheFlags(runCmd, "l2", &runFlags.l2, 256, 8, 64)
	runCmd.Flags().BoolVar(&runFlags.l2Enabled, "l2", false,
		"enable the L2 level")
	runCmd.Flags().StringVar(&runFlags.writePolicy, "write-policy",
		"WriteBack", "write policy: WriteBack or WriteThrough")
	addMemFlags(runCmd, &runFlags.mem)
	runCmd.Flags().Int64Var(&runFlags.seed, "seed", 0,
		"seed for RANDOM-policy eviction")

	runCmd.Flags().StringVar(&runFlags.historyPath, "history",
		envDefault("CACHE_INSIGHTS_HISTORY", ""),
		"SQLite file to append this run to")
	runCmd.Flags().BoolVar(&runFlags.serve, "serve", false,
		"keep serving the results over HTTP after the replay")
	runCmd.Flags().BoolVar(&runFlags.openPage, "open", false,
		"open the monitoring page in the browser (implies --serve)")

	defaultPort, _ := strconv.Atoi(envDefault("CACHE_INSIGHTS_PORT", "0"))
	runCmd.Flags().IntVar(&runFlags.port, "port", defaultPort,
		"monitoring server port (0 picks a random port)")
}

func runRun(_ *cobra.Command, args []string) error {
	accesses, err := loadTrace(args[0])
	if err != nil {
		return err
	}

	write := cache.WritePolicy(runFlags.writePolicy)

	builder := hierarchy.MakeBuilder().
		WithL1(runFlags.l1.config(write)).
		WithMemory(runFlags.mem.config()).
		WithRandSeed(runFlags.seed)
	if runFlags.l2Enabled {
		builder = builder.WithL2(runFlags.l2.config(write))
	}

	comp, err := builder.Build()
	if err != nil {
		return err
	}

	for _, a := range accesses {
		comp.Access(a.Address, a.IsWrite)
	}

	printHierarchyStats(comp, len(accesses))

	if runFlags.historyPath != "" {
		if err := saveRun(comp, len(accesses)); err != nil {
			return err
		}
	}

	if runFlags.serve || runFlags.openPage {
		return serveRun(comp)
	}

	return nil
}

func printHierarchyStats(comp *hierarchy.Comp, traceLength int) {
	fmt.Printf("Accesses: %d\n", traceLength)

	if l1 := comp.L1(); l1 != nil {
		s := l1.Stats()
		fmt.Printf("L1: %d hits, %d misses, %d writebacks, hit rate %.4f\n",
			s.Hits, s.Misses, s.Writebacks, s.HitRate())
	}
	if l2 := comp.L2(); l2 != nil {
		s := l2.Stats()
		fmt.Printf("L2: %d hits, %d misses, %d writebacks, hit rate %.4f\n",
			s.Hits, s.Misses, s.Writebacks, s.HitRate())
	}

	combined := comp.CombinedStats()
	memStats := comp.MemoryStats()

	fmt.Printf("Combined hit rate: %.4f\n", combined.HitRate())
	fmt.Printf("Total cycles: %d\n", comp.TotalCycles())
	fmt.Printf("AMAT: %.2f cycles\n",
		comp.AMAT(hierarchy.L1HitCycles, hierarchy.L2HitCycles,
			float64(comp.Memory().Config().LatencyCycles)))
	fmt.Printf("Memory: %d accesses, %.2f MB/s effective (%.1f%% of peak)\n",
		memStats.TotalAccesses, memStats.EffectiveBandwidthMBs,
		memStats.BandwidthUtilizationPct)
}

func saveRun(comp *hierarchy.Comp, traceLength int) error {
	store, err := history.NewSQLiteStore(runFlags.historyPath)
	if err != nil {
		return err
	}

	record := history.Record{
		Memory:      comp.Memory().Config(),
		TraceLength: traceLength,
		Combined:    comp.CombinedStats(),
	}

	if l1 := comp.L1(); l1 != nil {
		record.Config.L1 = l1.Config()
		record.Config.L1Enabled = true
		s := l1.Stats()
		record.L1Stats = &s
	}
	if l2 := comp.L2(); l2 != nil {
		record.Config.L2 = l2.Config()
		record.Config.L2Enabled = true
		s := l2.Stats()
		record.L2Stats = &s
	}

	memStats := comp.MemoryStats()
	record.MemoryStats = &memStats

	id, err := store.Save(record)
	if err != nil {
		return err
	}

	fmt.Printf("Saved run %s to %s\n", id, runFlags.historyPath)

	return nil
}

func serveRun(comp *hierarchy.Comp) error {
	monitor := monitoring.NewMonitor()
	monitor.RegisterHierarchy(comp)

	if runFlags.port != 0 {
		monitor.WithPortNumber(runFlags.port)
	}
	if runFlags.historyPath != "" {
		store, err := history.NewSQLiteStore(runFlags.historyPath)
		if err != nil {
			return err
		}
		monitor.RegisterHistory(store)
	}

	if _, err := monitor.StartServer(); err != nil {
		return err
	}

	if runFlags.openPage {
		if err := monitor.OpenBrowser(); err != nil {
			return err
		}
	}

	select {}
}
