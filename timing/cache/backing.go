package cache

import (
	"github.com/sarchlab/bfsim/emu"
)

// MemoryBacking adapts emu.Memory as a BackingStore.
//
// The timing model only replays addresses the functional core already
// validated, but a cache line can extend past the end of a provisioned
// block; those bytes read as zero and writes to them are dropped.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches data from the backing memory.
func (m *MemoryBacking) Read(addr uint64, size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		b, err := m.memory.Read8(uint32(addr + uint64(i)))
		if err != nil {
			continue
		}
		data[i] = b
	}
	return data
}

// Write stores data to the backing memory.
func (m *MemoryBacking) Write(addr uint64, data []byte) {
	for i, b := range data {
		_ = m.memory.Write8(uint32(addr+uint64(i)), b)
	}
}
