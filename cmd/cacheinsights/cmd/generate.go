package cmd

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/dath2006/cache-insights/trace"
)

var generateFlags struct {
	pattern string
	count   int
	base    string
	stride  uint32
	stress  string
	seed    int64

	hint cacheFlags

	outPath string
	list    bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a calibrated access trace from a built-in pattern",
	RunE:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateFlags.pattern, "pattern",
		"sequential", "pattern name (see --list)")
	generateCmd.Flags().IntVar(&generateFlags.count, "count", 10000,
		"number of accesses")
	generateCmd.Flags().StringVar(&generateFlags.base, "base", "0x10000",
		"base address in hex")
	generateCmd.Flags().Uint32Var(&generateFlags.stride, "stride", 0,
		"stride in bytes (sequential only)")
	generateCmd.Flags().StringVar(&generateFlags.stress, "stress",
		"moderate", "stress level: light, moderate, heavy, extreme")
	generateCmd.Flags().Int64Var(&generateFlags.seed, "seed", 0,
		"seed for stochastic patterns")

	addCacheFlags(generateCmd, "l1", &generateFlags.hint, 32, 4, 64)

	generateCmd.Flags().StringVarP(&generateFlags.outPath, "out", "o", "",
		"output file (default stdout)")
	generateCmd.Flags().BoolVar(&generateFlags.list, "list", false,
		"list the available patterns and exit")
}

func runGenerate(_ *cobra.Command, _ []string) error {
	if generateFlags.list {
		for _, p := range trace.Patterns() {
			info := p.Info()
			fmt.Printf("%-12s %s\n", p, info.Description)
			fmt.Printf("             tests: %s\n", info.Tests)
		}
		return nil
	}

	stress, err := parseStress(generateFlags.stress)
	if err != nil {
		return err
	}

	base, err := parseHexAddr(generateFlags.base)
	if err != nil {
		return err
	}

	params := trace.Params{
		Base:   base,
		Count:  generateFlags.count,
		Stride: generateFlags.stride,
		Hint: trace.GeometryHint{
			CacheSizeBytes: generateFlags.hint.sizeKB * 1024,
			BlockSize:      generateFlags.hint.block,
			Associativity:  generateFlags.hint.assoc,
		},
		Stress: stress,
	}

	rng := rand.New(rand.NewSource(generateFlags.seed))

	accesses, err := trace.Generate(
		trace.Pattern(generateFlags.pattern), params, rng)
	if err != nil {
		return err
	}

	out := os.Stdout
	if generateFlags.outPath != "" {
		f, err := os.Create(generateFlags.outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return trace.Format(out, accesses)
}
