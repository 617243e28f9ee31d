package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for different operation types.
type TimingConfig struct {
	// MoveLatency is the latency of an immediate register move.
	// Default: 1 cycle.
	MoveLatency uint64 `json:"move_latency"`

	// LoadLatency is the load-to-use latency assuming an L1 hit.
	// Default: 3 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency of a store (fire-and-forget into the
	// store buffer). Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`

	// WritebackLatency is the extra cost of a post-increment base
	// writeback. Default: 0 cycles (the address generator updates the
	// base in parallel with the access).
	WritebackLatency uint64 `json:"writeback_latency"`

	// L1HitLatency is the L1 data access latency used by the cache
	// model. Default: 1 cycle.
	L1HitLatency uint64 `json:"l1_hit_latency"`

	// MemoryLatency is the access latency of on-chip memory behind the
	// L1, used as the cache miss penalty. Default: 8 cycles.
	MemoryLatency uint64 `json:"memory_latency"`
}

// DefaultTimingConfig returns the default timing values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		MoveLatency:      1,
		LoadLatency:      3,
		StoreLatency:     1,
		WritebackLatency: 0,
		L1HitLatency:     1,
		MemoryLatency:    8,
	}
}

// LoadConfig reads a timing configuration from a JSON file. Fields
// omitted from the file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values that would make the
// cycle accounting meaningless.
func (c *TimingConfig) Validate() error {
	if c.MoveLatency == 0 {
		return fmt.Errorf("move_latency must be at least 1")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be at least 1")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be at least 1")
	}
	if c.MemoryLatency < c.L1HitLatency {
		return fmt.Errorf("memory_latency must not be smaller than l1_hit_latency")
	}
	return nil
}
