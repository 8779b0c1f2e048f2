package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dath2006/cache-insights/cache"
	"github.com/dath2006/cache-insights/memory"
	"github.com/dath2006/cache-insights/trace"
)

// cacheFlags groups the per-level cache flags of a command.
type cacheFlags struct {
	sizeKB uint32
	assoc  uint32
	block  uint32
	policy string
}

func addCacheFlags(c *cobra.Command, prefix string, f *cacheFlags,
	sizeKB, assoc, block uint32,
) {
	c.Flags().Uint32Var(&f.sizeKB, prefix+"-size-kb", sizeKB,
		"cache size in KiB")
	c.Flags().Uint32Var(&f.assoc, prefix+"-assoc", assoc,
		"ways per set")
	c.Flags().Uint32Var(&f.block, prefix+"-block", block,
		"block size in bytes")
	c.Flags().StringVar(&f.policy, prefix+"-policy", "LRU",
		"replacement policy: LRU, FIFO, LFU, RANDOM")
}

func (f cacheFlags) config(write cache.WritePolicy) cache.Config {
	return cache.Config{
		SizeBytes:     f.sizeKB * 1024,
		BlockSize:     f.block,
		Associativity: f.assoc,
		Policy:        cache.ReplacementPolicy(f.policy),
		Write:         write,
	}
}

// memFlags groups the main-memory flags of a command.
type memFlags struct {
	sizeMB  uint32
	latency uint64
	bus     uint32
	freq    uint32
	memType string
	burst   uint32
}

func addMemFlags(c *cobra.Command, f *memFlags) {
	c.Flags().Uint32Var(&f.sizeMB, "mem-size-mb", 1024,
		"memory size in MiB")
	c.Flags().Uint64Var(&f.latency, "mem-latency", 100,
		"memory base latency in cycles")
	c.Flags().Uint32Var(&f.bus, "bus-width", 64,
		"bus width in bits: 32, 64, 128, or 256")
	c.Flags().Uint32Var(&f.freq, "mem-freq", 2400,
		"bus frequency in MHz")
	c.Flags().StringVar(&f.memType, "mem-type", "DDR4",
		"memory type: DDR3, DDR4, DDR5, SRAM, Custom")
	c.Flags().Uint32Var(&f.burst, "burst", 8,
		"burst length in bus beats")
}

func (f memFlags) config() memory.Config {
	return memory.Config{
		SizeMB:        f.sizeMB,
		LatencyCycles: f.latency,
		BusWidthBits:  f.bus,
		FrequencyMHz:  f.freq,
		MemType:       memory.MemType(f.memType),
		BurstLength:   f.burst,
	}
}

func parseStress(s string) (trace.StressLevel, error) {
	switch s {
	case "light":
		return trace.Light, nil
	case "moderate":
		return trace.Moderate, nil
	case "heavy":
		return trace.Heavy, nil
	case "extreme":
		return trace.Extreme, nil
	}

	return 0, fmt.Errorf("unknown stress level %q", s)
}

func parseHexAddr(s string) (uint32, error) {
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad address %q: %w", s, err)
	}

	return uint32(v), nil
}

func loadTrace(path string) ([]trace.Access, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	accesses, skipped, err := trace.Parse(f)
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d malformed trace lines\n", skipped)
	}

	return accesses, nil
}
