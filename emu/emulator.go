package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/bfsim/insts"
)

// ErrInstructionLimit reports that the instruction-count watchdog
// expired. It catches runaway instruction streams.
var ErrInstructionLimit = errors.New("instruction limit reached")

// InvalidOperandError reports an architecturally disallowed register
// combination. It is fatal at execution time.
type InvalidOperandError struct {
	Inst   *insts.Instruction
	Reason string
}

func (e *InvalidOperandError) Error() string {
	return fmt.Sprintf("invalid operand in %q: %s", e.Inst, e.Reason)
}

// TraceEntry records one executed instruction for timing replay.
type TraceEntry struct {
	Inst *insts.Instruction

	// Addr is the effective address for loads and stores.
	Addr    uint32
	HasAddr bool
}

// Emulator applies decoded instructions against a register file and
// memory. It owns both exclusively; execution is single-threaded and
// one instruction commits fully before the next is applied.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	lsu     *LoadStoreUnit

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit

	recordTrace bool
	trace       []TraceEntry
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMaxInstructions sets the instruction-count watchdog. A value of 0
// means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithTrace enables recording of executed instructions for timing
// replay.
func WithTrace() EmulatorOption {
	return func(e *Emulator) {
		e.recordTrace = true
	}
}

// NewEmulator creates an emulator with a fresh register file and an
// empty memory.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	regFile := &RegFile{}
	memory := NewMemory()

	e := &Emulator{
		regFile: regFile,
		memory:  memory,
		lsu:     NewLoadStoreUnit(regFile, memory),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Trace returns the recorded execution trace. Empty unless WithTrace
// was set.
func (e *Emulator) Trace() []TraceEntry {
	return e.trace
}

// Execute applies one decoded instruction. All register and memory
// effects are committed before it returns; on error nothing is
// committed.
func (e *Emulator) Execute(inst *insts.Instruction) error {
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return fmt.Errorf("after %d instructions: %w", e.instructionCount, ErrInstructionLimit)
	}

	if err := e.checkOperands(inst); err != nil {
		return err
	}

	entry := TraceEntry{Inst: inst}

	switch inst.Op {
	case insts.OpLoad:
		addr, err := e.lsu.Load(inst.Dest, inst.Addr)
		if err != nil {
			return fmt.Errorf("%q: %w", inst, err)
		}
		entry.Addr, entry.HasAddr = addr, true
	case insts.OpStore:
		addr, err := e.lsu.Store(inst.Src, inst.Addr)
		if err != nil {
			return fmt.Errorf("%q: %w", inst, err)
		}
		entry.Addr, entry.HasAddr = addr, true
	case insts.OpMove:
		e.regFile.Write(inst.Dest, inst.Imm)
	default:
		return fmt.Errorf("unknown operation in %q", inst)
	}

	e.instructionCount++
	if e.recordTrace {
		e.trace = append(e.trace, entry)
	}
	return nil
}

// checkOperands enforces register-combination rules the decoder cannot
// see: sub-word loads widen into a full-width cell, so their
// destination must be a data register.
func (e *Emulator) checkOperands(inst *insts.Instruction) error {
	if inst.Op == insts.OpLoad && inst.Addr.Size != insts.SizeWord {
		if inst.Dest.Class() != insts.ClassData {
			return &InvalidOperandError{
				Inst: inst,
				Reason: fmt.Sprintf("sub-word load destination %v must be a data register",
					inst.Dest),
			}
		}
	}
	return nil
}
