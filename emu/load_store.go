package emu

import (
	"github.com/sarchlab/bfsim/insts"
)

// LoadStoreUnit implements sized loads and stores with the addressing
// side effects of the ISA: displacement, register offset, and
// post-increment writeback.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// effectiveAddress computes the access address from the descriptor.
// For post-increment modes this is the base value before writeback.
func (lsu *LoadStoreUnit) effectiveAddress(a insts.Addressing) uint32 {
	addr := lsu.regFile.Read(a.Base)
	if a.Index != insts.RegInvalid {
		addr += lsu.regFile.Read(a.Index)
	}
	return addr + uint32(a.Disp)
}

// Load performs one load into dest. The memory read and the destination
// write complete before any base writeback; a register that is both
// base and destination therefore ends up holding the incremented base.
// The writeback step is always the access size, never the destination
// width. On a fault no register is mutated.
func (lsu *LoadStoreUnit) Load(dest insts.Reg, a insts.Addressing) (uint32, error) {
	addr := lsu.effectiveAddress(a)

	var value uint32
	switch a.Size {
	case insts.SizeByte:
		raw, err := lsu.memory.Read8(addr)
		if err != nil {
			return addr, err
		}
		value = widen8(raw, a.Extend)
	case insts.SizeHalf:
		raw, err := lsu.memory.Read16(addr)
		if err != nil {
			return addr, err
		}
		value = widen16(raw, a.Extend)
	default:
		raw, err := lsu.memory.Read32(addr)
		if err != nil {
			return addr, err
		}
		value = raw
	}

	lsu.regFile.Write(dest, value)
	if a.PostInc {
		lsu.regFile.Write(a.Base, addr+uint32(a.Size))
	}
	return addr, nil
}

// Store performs one store from src, with the same writeback rules as
// Load. The stored value is the low-order slice of the source register.
func (lsu *LoadStoreUnit) Store(src insts.Reg, a insts.Addressing) (uint32, error) {
	addr := lsu.effectiveAddress(a)
	value := lsu.regFile.Read(src)

	var err error
	switch a.Size {
	case insts.SizeByte:
		err = lsu.memory.Write8(addr, uint8(value))
	case insts.SizeHalf:
		err = lsu.memory.Write16(addr, uint16(value))
	default:
		err = lsu.memory.Write32(addr, value)
	}
	if err != nil {
		return addr, err
	}

	if a.PostInc {
		lsu.regFile.Write(a.Base, addr+uint32(a.Size))
	}
	return addr, nil
}

// widen8 widens a byte to 32 bits. Sign extension replicates bit 7 into
// the added high-order bits: 0x87 widens to 0xFFFFFF87, 0x07 to
// 0x00000007.
func widen8(v uint8, ext insts.Extend) uint32 {
	if ext == insts.ExtendSign {
		return uint32(int32(int8(v)))
	}
	return uint32(v)
}

// widen16 widens a half-word to 32 bits.
func widen16(v uint16, ext insts.Extend) uint32 {
	if ext == insts.ExtendSign {
		return uint32(int32(int16(v)))
	}
	return uint32(v)
}
