// Package memory models the main memory behind the cache hierarchy: a
// scalar latency with a burst-transfer correction, bandwidth accounting,
// and a dynamic 16-region heat map over the observed working set.
package memory

import (
	"errors"
	"fmt"
)

// ErrConfigInvalid is returned when a memory configuration cannot be built.
var ErrConfigInvalid = errors.New("memory config invalid")

// MemType names the memory technology. It only affects the peak-bandwidth
// figure: DDR technologies transfer on both clock edges.
type MemType string

// Supported memory technologies.
const (
	DDR3   MemType = "DDR3"
	DDR4   MemType = "DDR4"
	DDR5   MemType = "DDR5"
	SRAM   MemType = "SRAM"
	Custom MemType = "Custom"
)

// A Config describes the main memory.
type Config struct {
	SizeMB        uint32
	LatencyCycles uint64
	BusWidthBits  uint32
	FrequencyMHz  uint32
	MemType       MemType
	BurstLength   uint32
}

// Validate checks the construction invariants.
func (c Config) Validate() error {
	if c.SizeMB == 0 {
		return fmt.Errorf("%w: size must be positive", ErrConfigInvalid)
	}

	switch c.BusWidthBits {
	case 32, 64, 128, 256:
	default:
		return fmt.Errorf("%w: bus width %d not in {32, 64, 128, 256}",
			ErrConfigInvalid, c.BusWidthBits)
	}

	if c.FrequencyMHz == 0 {
		return fmt.Errorf("%w: frequency must be positive", ErrConfigInvalid)
	}

	if c.BurstLength == 0 {
		return fmt.Errorf("%w: burst length must be positive",
			ErrConfigInvalid)
	}

	switch c.MemType {
	case DDR3, DDR4, DDR5, SRAM, Custom:
	default:
		return fmt.Errorf("%w: unknown memory type %q",
			ErrConfigInvalid, c.MemType)
	}

	return nil
}

// isDoubleDataRate reports whether the technology transfers on both edges.
func (c Config) isDoubleDataRate() bool {
	switch c.MemType {
	case DDR3, DDR4, DDR5:
		return true
	}

	return false
}
