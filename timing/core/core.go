// Package core provides a cycle estimate for a completed functional
// run. It replays the recorded execution trace: memory operations go
// through the data-cache model for hit/miss latency, everything else is
// charged from the latency table. This is a flat per-operation
// accounting, not a pipeline model.
package core

import (
	"github.com/sarchlab/bfsim/emu"
	"github.com/sarchlab/bfsim/insts"
	"github.com/sarchlab/bfsim/timing/cache"
	"github.com/sarchlab/bfsim/timing/latency"
)

// Stats holds the result of a replay.
type Stats struct {
	// Cycles is the estimated cycle count.
	Cycles uint64
	// Instructions is the number of instructions replayed.
	Instructions uint64
	// DCache holds data-cache statistics for the replay.
	DCache cache.Statistics
}

// CPI returns cycles per instruction, or 0 for an empty trace.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core estimates cycles for recorded runs.
type Core struct {
	table  *latency.Table
	dcache *cache.Cache
}

// New creates a Core from a latency table and a data cache. The cache
// may be nil, in which case memory operations cost the table's flat
// load/store latency.
func New(table *latency.Table, dcache *cache.Cache) *Core {
	return &Core{
		table:  table,
		dcache: dcache,
	}
}

// Replay charges cycles for every entry of the trace.
func (c *Core) Replay(trace []emu.TraceEntry) Stats {
	var stats Stats

	for _, entry := range trace {
		stats.Instructions++
		stats.Cycles += c.entryCycles(entry)
	}

	if c.dcache != nil {
		stats.DCache = c.dcache.Stats()
	}
	return stats
}

func (c *Core) entryCycles(entry emu.TraceEntry) uint64 {
	inst := entry.Inst

	if c.dcache == nil || !entry.HasAddr {
		return c.table.GetLatency(inst)
	}

	// Memory ops: one issue cycle plus the cache access, plus any
	// writeback cost from the table. The trace does not carry store
	// values; replay runs after the verdict, so the cache's view of
	// memory is scratch.
	var access cache.AccessResult
	size := int(inst.Addr.Size)
	if inst.Op == insts.OpStore {
		access = c.dcache.Write(uint64(entry.Addr), size, 0)
	} else {
		access = c.dcache.Read(uint64(entry.Addr), size)
	}

	cycles := 1 + access.Latency
	if inst.Addr.PostInc {
		cycles += c.table.Config().WritebackLatency
	}
	return cycles
}
