package emu

import "github.com/sarchlab/bfsim/insts"

// RegFile holds the architectural register state: eight data registers
// (R0-R7), eight pointer registers (P0-P5, FP, SP), and four index
// registers (I0-I3). Every register is an independent 32-bit cell; in
// particular FP and SP carry their own post-increment state and do not
// alias any numbered pointer register.
type RegFile struct {
	data    [8]uint32
	pointer [8]uint32
	index   [4]uint32
}

// Read returns the current value of a register. Reads of an invalid
// register id return 0.
func (r *RegFile) Read(reg insts.Reg) uint32 {
	switch reg.Class() {
	case insts.ClassData:
		return r.data[reg.IndexInClass()]
	case insts.ClassPointer:
		return r.pointer[reg.IndexInClass()]
	case insts.ClassIndex:
		return r.index[reg.IndexInClass()]
	default:
		return 0
	}
}

// Write sets a register's value. Writes to an invalid register id are
// ignored.
func (r *RegFile) Write(reg insts.Reg, value uint32) {
	switch reg.Class() {
	case insts.ClassData:
		r.data[reg.IndexInClass()] = value
	case insts.ClassPointer:
		r.pointer[reg.IndexInClass()] = value
	case insts.ClassIndex:
		r.index[reg.IndexInClass()] = value
	}
}

// InitClass sets every register in the class to the same literal.
// Tests use this to establish a deterministic starting state so no
// register carries stale values into a run.
func (r *RegFile) InitClass(class insts.RegClass, value uint32) {
	switch class {
	case insts.ClassData:
		for i := range r.data {
			r.data[i] = value
		}
	case insts.ClassPointer:
		for i := range r.pointer {
			r.pointer[i] = value
		}
	case insts.ClassIndex:
		for i := range r.index {
			r.index[i] = value
		}
	}
}

// Snapshot returns a copy of every register keyed by id. The harness
// uses it for determinism checks and verbose dumps.
func (r *RegFile) Snapshot() map[insts.Reg]uint32 {
	snap := make(map[insts.Reg]uint32, int(insts.NumRegs))
	for reg := insts.Reg(0); reg < insts.NumRegs; reg++ {
		snap[reg] = r.Read(reg)
	}
	return snap
}
