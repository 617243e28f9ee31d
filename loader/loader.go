// Package loader parses mnemonic-level test sources into programs
// ready for the harness.
//
// A test source has two sections. The text section holds instructions
// and harness directives (CHECKREG, INIT_*_REGS, loadsym, pass, fail).
// The data section holds labeled blocks of 32-bit little-endian words:
//
//	.text
//	INIT_R_REGS 0
//	loadsym P5, DATA1
//	R4 = B [P5++] (X)
//	CHECKREG R4, 0xFFFFFF87
//	pass
//
//	.data
//	DATA1:
//	.dd 0x04030287
//
// There is no external assembler, so the loader itself assigns data
// block addresses sequentially from a configurable base. Malformed
// lines are fatal at load time.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/sarchlab/bfsim/insts"
)

// DefaultDataBase is where the first data block is placed.
const DefaultDataBase = 0x4000

// StatementKind discriminates the entries of an instruction stream.
type StatementKind uint8

// Statement kinds.
const (
	StmtInstruction StatementKind = iota
	StmtCheckReg
	StmtInitRegs
	StmtPass
	StmtFail
)

// Statement is one entry of the loaded instruction stream: either a
// decoded instruction or a harness directive.
type Statement struct {
	Kind StatementKind

	// Inst is set for StmtInstruction.
	Inst *insts.Instruction

	// Reg and Want are set for StmtCheckReg.
	Reg  insts.Reg
	Want uint32

	// Class and Value are set for StmtInitRegs.
	Class insts.RegClass
	Value uint32

	// Line is the 1-based source line, for diagnostics.
	Line int
}

// DataBlock is one labeled run of preloaded memory.
type DataBlock struct {
	Label string
	Addr  uint32
	Data  []byte
}

// Program is an immutable loaded test: the statement stream, the
// memory-image preload, and the symbol table. The harness materializes
// fresh machine state from it on every run.
type Program struct {
	Statements []Statement
	Blocks     []DataBlock
	Symbols    map[string]uint32
}

// Option configures loading.
type Option func(*parser)

// WithDataBase overrides the address of the first data block.
func WithDataBase(base uint32) Option {
	return func(p *parser) {
		p.cursor = base
	}
}

var (
	labelLine    = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*):$`)
	checkRegLine = regexp.MustCompile(`^(?i)CHECKREG\s*\(?\s*([A-Za-z]+[0-9]*)\s*,\s*([^)\s]+)\s*\)?$`)
	initLine     = regexp.MustCompile(`^(?i)INIT_([RPI])_REGS\s*\(?\s*([^)\s]+)\s*\)?$`)
	loadsymLine  = regexp.MustCompile(`^(?i)loadsym\s+([A-Za-z]+[0-9]*)\s*,\s*([A-Za-z_][A-Za-z0-9_]*)$`)
	ddLine       = regexp.MustCompile(`^(?i)\.dd\s+(\S+)$`)
)

var initClasses = map[string]insts.RegClass{
	"R": insts.ClassData,
	"P": insts.ClassPointer,
	"I": insts.ClassIndex,
}

// pendingSym is a loadsym whose label may be defined later in the file.
type pendingSym struct {
	stmt  int
	label string
	line  int
}

type parser struct {
	decoder *insts.Decoder

	prog    *Program
	pending []pendingSym

	inData bool
	cursor uint32
	block  *DataBlock
}

// LoadFile loads a test source from a file.
func LoadFile(path string, opts ...Option) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open test source: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Load(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// Load loads a test source from a reader.
func Load(r io.Reader, opts ...Option) (*Program, error) {
	p := &parser{
		decoder: insts.NewDecoder(),
		prog: &Program{
			Symbols: make(map[string]uint32),
		},
		cursor: DefaultDataBase,
	}
	for _, opt := range opts {
		opt(p)
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := p.parseLine(stripComment(scanner.Text()), lineNo); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read test source: %w", err)
	}

	p.finishBlock()
	if err := p.resolvePending(); err != nil {
		return nil, err
	}
	return p.prog, nil
}

func stripComment(line string) string {
	for _, marker := range []string{"//", "#"} {
		if i := strings.Index(line, marker); i >= 0 {
			line = line[:i]
		}
	}
	return strings.TrimSpace(line)
}

func (p *parser) parseLine(line string, lineNo int) error {
	if line == "" {
		return nil
	}

	switch strings.ToLower(line) {
	case ".data":
		p.inData = true
		return nil
	case ".text":
		p.finishBlock()
		p.inData = false
		return nil
	}

	if m := labelLine.FindStringSubmatch(line); m != nil {
		return p.parseLabel(m[1])
	}

	if p.inData {
		return p.parseData(line)
	}
	return p.parseStatement(line, lineNo)
}

func (p *parser) parseLabel(name string) error {
	if !p.inData {
		// Text labels carry no address at this abstraction level.
		return nil
	}
	if _, dup := p.prog.Symbols[name]; dup {
		return fmt.Errorf("duplicate label %q", name)
	}
	p.finishBlock()
	p.block = &DataBlock{Label: name, Addr: p.cursor}
	p.prog.Symbols[name] = p.cursor
	return nil
}

func (p *parser) parseData(line string) error {
	m := ddLine.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("unrecognized data directive %q", line)
	}
	word, err := parseLiteral(m[1])
	if err != nil {
		return fmt.Errorf("bad data word %q", m[1])
	}
	if p.block == nil {
		p.block = &DataBlock{Addr: p.cursor}
	}
	// Words are stored low byte first.
	p.block.Data = append(p.block.Data,
		byte(word), byte(word>>8), byte(word>>16), byte(word>>24))
	return nil
}

func (p *parser) parseStatement(line string, lineNo int) error {
	switch strings.ToLower(line) {
	case "pass":
		p.append(Statement{Kind: StmtPass, Line: lineNo})
		return nil
	case "fail":
		p.append(Statement{Kind: StmtFail, Line: lineNo})
		return nil
	}

	if m := checkRegLine.FindStringSubmatch(line); m != nil {
		reg, ok := insts.ParseReg(m[1])
		if !ok {
			return fmt.Errorf("CHECKREG: unknown register %q", m[1])
		}
		want, err := parseLiteral(m[2])
		if err != nil {
			return fmt.Errorf("CHECKREG: bad expected value %q", m[2])
		}
		p.append(Statement{Kind: StmtCheckReg, Reg: reg, Want: want, Line: lineNo})
		return nil
	}

	if m := initLine.FindStringSubmatch(line); m != nil {
		value, err := parseLiteral(m[2])
		if err != nil {
			return fmt.Errorf("INIT_%s_REGS: bad literal %q", m[1], m[2])
		}
		p.append(Statement{
			Kind:  StmtInitRegs,
			Class: initClasses[strings.ToUpper(m[1])],
			Value: value,
			Line:  lineNo,
		})
		return nil
	}

	if m := loadsymLine.FindStringSubmatch(line); m != nil {
		reg, ok := insts.ParseReg(m[1])
		if !ok {
			return fmt.Errorf("loadsym: unknown register %q", m[1])
		}
		p.append(Statement{
			Kind: StmtInstruction,
			Inst: &insts.Instruction{
				Op:   insts.OpMove,
				Dest: reg,
				Src:  insts.RegInvalid,
				Text: line,
			},
			Line: lineNo,
		})
		p.pending = append(p.pending, pendingSym{
			stmt:  len(p.prog.Statements) - 1,
			label: m[2],
			line:  lineNo,
		})
		return nil
	}

	inst, err := p.decoder.Decode(line)
	if err != nil {
		return err
	}
	p.append(Statement{Kind: StmtInstruction, Inst: inst, Line: lineNo})
	return nil
}

func (p *parser) append(s Statement) {
	p.prog.Statements = append(p.prog.Statements, s)
}

// finishBlock closes the current data block and advances the cursor to
// the next word-aligned address.
func (p *parser) finishBlock() {
	if p.block == nil {
		return
	}
	if len(p.block.Data) > 0 {
		p.cursor = p.block.Addr + uint32(len(p.block.Data))
		p.cursor = (p.cursor + 3) &^ 3
	}
	p.prog.Blocks = append(p.prog.Blocks, *p.block)
	p.block = nil
}

// resolvePending fills in loadsym immediates once all labels are known.
// Labels may be defined after their use; the data section commonly
// follows the text section.
func (p *parser) resolvePending() error {
	for _, pend := range p.pending {
		addr, ok := p.prog.Symbols[pend.label]
		if !ok {
			return fmt.Errorf("line %d: loadsym: undefined label %q", pend.line, pend.label)
		}
		p.prog.Statements[pend.stmt].Inst.Imm = addr
	}
	return nil
}

// parseLiteral parses a 32-bit literal in decimal or 0x-hex form.
func parseLiteral(s string) (uint32, error) {
	if v, err := strconv.ParseUint(s, 0, 32); err == nil {
		return uint32(v), nil
	}
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
