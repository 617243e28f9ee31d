// Package harness runs loaded test programs and produces pass/fail
// verdicts.
package harness

import (
	"fmt"
	"io"

	"github.com/sarchlab/bfsim/emu"
	"github.com/sarchlab/bfsim/insts"
	"github.com/sarchlab/bfsim/loader"
)

// State is the control-loop state.
type State uint8

// Control-loop states. Passed and Failed are terminal: no statement
// after reaching them is executed.
const (
	StateLoading State = iota
	StateRunning
	StatePassed
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRunning:
		return "running"
	case StatePassed:
		return "passed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Mismatch describes a CHECKREG divergence: which register differed, at
// which checkpoint, and by how much.
type Mismatch struct {
	Reg        insts.Reg
	Want       uint32
	Got        uint32
	Checkpoint int // 1-based ordinal of the CHECKREG in the stream
	Line       int // source line of the CHECKREG
}

func (m *Mismatch) String() string {
	return fmt.Sprintf("checkpoint %d (line %d): %v = 0x%08X, want 0x%08X (diff 0x%08X)",
		m.Checkpoint, m.Line, m.Reg, m.Got, m.Want, m.Got-m.Want)
}

// Verdict is the outcome of one run.
type Verdict struct {
	State State

	// Mismatch is set when the run failed on a CHECKREG divergence.
	Mismatch *Mismatch

	// Err is set when the run failed on a fatal core error: an
	// out-of-range access, an invalid operand, the instruction-count
	// watchdog, or an explicit fail directive.
	Err error
}

// Passed reports whether the run reached the pass directive with no
// prior failure.
func (v Verdict) Passed() bool {
	return v.State == StatePassed
}

// Runner drives a loaded program through the emulator: it walks the
// statement stream, hands instructions to the executor, applies bulk
// register init, and evaluates checkpoints. Each Run materializes a
// fresh register file and memory image, so no state leaks between
// runs and identical inputs give identical final state.
type Runner struct {
	program *loader.Program
	state   State

	maxInstructions uint64
	recordTrace     bool
	out             io.Writer

	emulator *emu.Emulator
}

// Option configures a Runner.
type Option func(*Runner)

// WithMaxInstructions sets the emulator's instruction-count watchdog.
func WithMaxInstructions(max uint64) Option {
	return func(r *Runner) {
		r.maxInstructions = max
	}
}

// WithTrace records the execution trace for timing replay.
func WithTrace() Option {
	return func(r *Runner) {
		r.recordTrace = true
	}
}

// WithOutput directs progress reporting to w. No output is produced
// when unset.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// NewRunner creates a Runner for the program.
func NewRunner(program *loader.Program, opts ...Option) *Runner {
	r := &Runner{
		program: program,
		state:   StateLoading,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the control-loop state.
func (r *Runner) State() State {
	return r.state
}

// Emulator returns the emulator of the most recent run. It exposes the
// read-only register query the assertion interface needs; nil before
// the first Run.
func (r *Runner) Emulator() *emu.Emulator {
	return r.emulator
}

// Trace returns the execution trace of the most recent run. Empty
// unless WithTrace was set.
func (r *Runner) Trace() []emu.TraceEntry {
	if r.emulator == nil {
		return nil
	}
	return r.emulator.Trace()
}

// Run executes the program to a terminal state.
func (r *Runner) Run() Verdict {
	if err := r.install(); err != nil {
		r.state = StateFailed
		return Verdict{State: StateFailed, Err: err}
	}
	r.state = StateRunning

	checkpoint := 0
	for i := range r.program.Statements {
		stmt := &r.program.Statements[i]

		switch stmt.Kind {
		case loader.StmtInstruction:
			if err := r.emulator.Execute(stmt.Inst); err != nil {
				r.state = StateFailed
				return Verdict{State: StateFailed,
					Err: fmt.Errorf("line %d: %w", stmt.Line, err)}
			}

		case loader.StmtInitRegs:
			r.emulator.RegFile().InitClass(stmt.Class, stmt.Value)

		case loader.StmtCheckReg:
			checkpoint++
			got := r.emulator.RegFile().Read(stmt.Reg)
			if got != stmt.Want {
				r.state = StateFailed
				m := &Mismatch{
					Reg:        stmt.Reg,
					Want:       stmt.Want,
					Got:        got,
					Checkpoint: checkpoint,
					Line:       stmt.Line,
				}
				r.report("FAIL %s\n", m)
				return Verdict{State: StateFailed, Mismatch: m}
			}

		case loader.StmtPass:
			r.state = StatePassed
			r.report("PASS after %d instructions, %d checkpoints\n",
				r.emulator.InstructionCount(), checkpoint)
			return Verdict{State: StatePassed}

		case loader.StmtFail:
			r.state = StateFailed
			return Verdict{State: StateFailed,
				Err: fmt.Errorf("line %d: explicit fail directive", stmt.Line)}
		}
	}

	// Falling off the end of the stream without a pass directive is a
	// failure: the termination contract was never satisfied.
	r.state = StateFailed
	return Verdict{State: StateFailed,
		Err: fmt.Errorf("instruction stream ended without a pass directive")}
}

// install materializes fresh machine state from the program image.
func (r *Runner) install() error {
	var opts []emu.EmulatorOption
	if r.maxInstructions > 0 {
		opts = append(opts, emu.WithMaxInstructions(r.maxInstructions))
	}
	if r.recordTrace {
		opts = append(opts, emu.WithTrace())
	}
	r.emulator = emu.NewEmulator(opts...)

	mem := r.emulator.Memory()
	for _, block := range r.program.Blocks {
		if len(block.Data) == 0 {
			continue
		}
		if err := mem.Provision(block.Addr, uint32(len(block.Data))); err != nil {
			return fmt.Errorf("installing block %q: %w", block.Label, err)
		}
		if err := mem.WriteBytes(block.Addr, block.Data); err != nil {
			return fmt.Errorf("installing block %q: %w", block.Label, err)
		}
	}
	return nil
}

func (r *Runner) report(format string, args ...interface{}) {
	if r.out == nil {
		return
	}
	_, _ = fmt.Fprintf(r.out, format, args...)
}
