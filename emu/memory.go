// Package emu provides functional emulation of a Blackfin-style
// 32-bit load/store core.
package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

// ErrOutOfRange reports a memory access outside provisioned space.
// It is fatal to the running test.
var ErrOutOfRange = errors.New("memory access out of provisioned range")

// region is one contiguous provisioned block of the address space.
type region struct {
	base uint32
	data []byte
}

func (r *region) contains(addr uint32, size uint32) bool {
	return addr >= r.base && addr-r.base+size <= uint32(len(r.data))
}

// Memory is a flat byte-addressable store. Only provisioned regions are
// accessible; an access touching any unprovisioned byte faults. All
// multi-byte accesses are little-endian: the low-order byte of a word
// lives at the lowest address.
type Memory struct {
	regions []region
}

// NewMemory creates an empty memory with no provisioned regions.
func NewMemory() *Memory {
	return &Memory{}
}

// Provision makes [base, base+size) accessible, zero-filled.
// Overlapping an existing region is an error.
func (m *Memory) Provision(base, size uint32) error {
	if size == 0 {
		return fmt.Errorf("cannot provision empty region at 0x%08X", base)
	}
	for i := range m.regions {
		r := &m.regions[i]
		if base < r.base+uint32(len(r.data)) && r.base < base+size {
			return fmt.Errorf("region [0x%08X,0x%08X) overlaps existing region at 0x%08X",
				base, base+size, r.base)
		}
	}
	m.regions = append(m.regions, region{base: base, data: make([]byte, size)})
	sort.Slice(m.regions, func(i, j int) bool {
		return m.regions[i].base < m.regions[j].base
	})
	return nil
}

// find returns the region fully containing [addr, addr+size), or nil.
// An access must not span regions even when they are adjacent.
func (m *Memory) find(addr, size uint32) *region {
	for i := range m.regions {
		if m.regions[i].contains(addr, size) {
			return &m.regions[i]
		}
	}
	return nil
}

func (m *Memory) fault(addr, size uint32) error {
	return fmt.Errorf("%d-byte access at 0x%08X: %w", size, addr, ErrOutOfRange)
}

// Read8 reads one byte.
func (m *Memory) Read8(addr uint32) (uint8, error) {
	r := m.find(addr, 1)
	if r == nil {
		return 0, m.fault(addr, 1)
	}
	return r.data[addr-r.base], nil
}

// Read16 reads a little-endian half-word.
func (m *Memory) Read16(addr uint32) (uint16, error) {
	r := m.find(addr, 2)
	if r == nil {
		return 0, m.fault(addr, 2)
	}
	off := addr - r.base
	return binary.LittleEndian.Uint16(r.data[off : off+2]), nil
}

// Read32 reads a little-endian word.
func (m *Memory) Read32(addr uint32) (uint32, error) {
	r := m.find(addr, 4)
	if r == nil {
		return 0, m.fault(addr, 4)
	}
	off := addr - r.base
	return binary.LittleEndian.Uint32(r.data[off : off+4]), nil
}

// Write8 writes one byte.
func (m *Memory) Write8(addr uint32, value uint8) error {
	r := m.find(addr, 1)
	if r == nil {
		return m.fault(addr, 1)
	}
	r.data[addr-r.base] = value
	return nil
}

// Write16 writes a little-endian half-word.
func (m *Memory) Write16(addr uint32, value uint16) error {
	r := m.find(addr, 2)
	if r == nil {
		return m.fault(addr, 2)
	}
	off := addr - r.base
	binary.LittleEndian.PutUint16(r.data[off:off+2], value)
	return nil
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint32, value uint32) error {
	r := m.find(addr, 4)
	if r == nil {
		return m.fault(addr, 4)
	}
	off := addr - r.base
	binary.LittleEndian.PutUint32(r.data[off:off+4], value)
	return nil
}

// WriteBytes copies data into provisioned memory starting at addr.
func (m *Memory) WriteBytes(addr uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	r := m.find(addr, uint32(len(data)))
	if r == nil {
		return m.fault(addr, uint32(len(data)))
	}
	copy(r.data[addr-r.base:], data)
	return nil
}
