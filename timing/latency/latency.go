// Package latency provides per-operation timing models for cycle
// estimation.
//
// The default values describe a small embedded DSP core with
// single-cycle issue and a multi-cycle load-to-use path; all values can
// be overridden via TimingConfig.
package latency

import (
	"github.com/sarchlab/bfsim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a latency table with custom timing values.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// Config returns the table's timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}

// GetLatency returns the execution latency in cycles for the given
// instruction, assuming an L1 hit for memory operations.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	switch inst.Op {
	case insts.OpMove:
		return t.config.MoveLatency

	case insts.OpLoad:
		latency := t.config.LoadLatency
		if inst.Addr.PostInc {
			latency += t.config.WritebackLatency
		}
		return latency

	case insts.OpStore:
		latency := t.config.StoreLatency
		if inst.Addr.PostInc {
			latency += t.config.WritebackLatency
		}
		return latency

	default:
		return 1
	}
}

// IsMemoryOp returns true if the instruction accesses memory.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Op == insts.OpLoad || inst.Op == insts.OpStore
}
