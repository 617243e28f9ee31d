package insts

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Op represents an opcode kind.
type Op uint8

// Opcode kinds.
const (
	OpUnknown Op = iota
	OpLoad       // Rd = <size> [base...] (<ext>)
	OpStore      // <size> [base...] = Rs
	OpMove       // Rd = imm32
)

// String returns the opcode kind name.
func (op Op) String() string {
	switch op {
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpMove:
		return "move"
	default:
		return "unknown"
	}
}

// MemSize is a memory access width. The numeric value is the access
// size in bytes, which is also the post-increment step.
type MemSize uint8

// Access widths.
const (
	SizeByte MemSize = 1
	SizeHalf MemSize = 2
	SizeWord MemSize = 4
)

// Extend selects how a sub-word value is widened to 32 bits.
type Extend uint8

// Extension modes. ExtendNone applies to full-width accesses where
// widening does not occur.
const (
	ExtendNone Extend = iota
	ExtendZero
	ExtendSign
)

// extendSuffixes maps the mnemonic suffix letter to an extension mode.
// Adding a mode is a table change, not a new code path.
var extendSuffixes = map[string]Extend{
	"X": ExtendSign,
	"Z": ExtendZero,
}

// sizeLetters maps the mnemonic size letter to an access width. The
// empty letter is a full-width word access.
var sizeLetters = map[string]MemSize{
	"":  SizeWord,
	"B": SizeByte,
	"W": SizeHalf,
}

// Addressing describes how an effective address is formed and what is
// transferred. For post-increment modes the effective address is the
// base register's value before writeback.
type Addressing struct {
	// Base is the register holding the address. Pointer or index class.
	Base Reg

	// Disp is a constant byte displacement added to the base.
	// Zero when unused. Never combined with PostInc.
	Disp int32

	// Index is a register-offset added to the base, or RegInvalid.
	// Never combined with PostInc or Disp.
	Index Reg

	// PostInc requests base writeback of base+Size after the access.
	PostInc bool

	// Size is the access width in bytes.
	Size MemSize

	// Extend selects widening for sub-word loads.
	Extend Extend
}

// Instruction is the decoded form of one assembly line. It is
// constructed per fetch and consumed immediately by the executor.
type Instruction struct {
	Op   Op
	Dest Reg        // load/move destination (RegInvalid for stores)
	Src  Reg        // store source (RegInvalid otherwise)
	Imm  uint32     // move immediate
	Addr Addressing // load/store addressing descriptor

	// Text is the source line, kept for diagnostics.
	Text string
}

// String renders the instruction back in assembly form.
func (i *Instruction) String() string {
	if i.Text != "" {
		return i.Text
	}
	return fmt.Sprintf("<%v>", i.Op)
}

// DecodeError reports an unrecognized mnemonic or operand shape.
// It is fatal at program load time, not at execution time.
type DecodeError struct {
	Line   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %q: %s", e.Line, e.Reason)
}

// memOperand matches "[base]", "[base++]", "[base + 8]", "[base - 0x10]"
// and "[base + Preg]", with an optional size letter prefix.
var memOperand = regexp.MustCompile(
	`^(?:([A-Za-z])\s*)?\[\s*([A-Za-z]+[0-9]*)\s*(?:(\+\+)|([+-])\s*([A-Za-z0-9]+))?\s*\]$`)

// extSuffix matches a trailing extension suffix such as "(X)".
var extSuffix = regexp.MustCompile(`\(\s*([A-Za-z])\s*\)$`)

// Decoder decodes assembly source lines into instructions.
type Decoder struct{}

// NewDecoder creates a new instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a single assembly line. The line must contain exactly
// one instruction with no label or comment.
func (d *Decoder) Decode(line string) (*Instruction, error) {
	text := strings.TrimSpace(line)

	lhs, rhs, ok := strings.Cut(text, "=")
	if !ok {
		return nil, &DecodeError{Line: text, Reason: "expected an assignment"}
	}
	lhs = strings.TrimSpace(lhs)
	rhs = strings.TrimSpace(rhs)

	switch {
	case strings.Contains(lhs, "["):
		return d.decodeStore(text, lhs, rhs)
	case strings.Contains(rhs, "["):
		return d.decodeLoad(text, lhs, rhs)
	default:
		return d.decodeMove(text, lhs, rhs)
	}
}

// decodeLoad decodes "Rd = <size> [base...] (<ext>)".
func (d *Decoder) decodeLoad(text, lhs, rhs string) (*Instruction, error) {
	dest, ok := ParseReg(lhs)
	if !ok {
		return nil, &DecodeError{Line: text, Reason: fmt.Sprintf("unknown destination register %q", lhs)}
	}

	ext := ExtendNone
	if m := extSuffix.FindStringSubmatch(rhs); m != nil {
		mode, known := extendSuffixes[strings.ToUpper(m[1])]
		if !known {
			return nil, &DecodeError{Line: text, Reason: fmt.Sprintf("unknown extension suffix (%s)", m[1])}
		}
		ext = mode
		rhs = strings.TrimSpace(rhs[:len(rhs)-len(m[0])])
	}

	addr, err := d.parseMemOperand(text, rhs)
	if err != nil {
		return nil, err
	}
	addr.Extend = ext

	if addr.Size != SizeWord && addr.Extend == ExtendNone {
		return nil, &DecodeError{Line: text, Reason: "sub-word load requires an (X) or (Z) suffix"}
	}
	if addr.Size == SizeWord && addr.Extend != ExtendNone {
		return nil, &DecodeError{Line: text, Reason: "word load does not take an extension suffix"}
	}

	return &Instruction{
		Op:   OpLoad,
		Dest: dest,
		Src:  RegInvalid,
		Addr: addr,
		Text: text,
	}, nil
}

// decodeStore decodes "<size> [base...] = Rs".
func (d *Decoder) decodeStore(text, lhs, rhs string) (*Instruction, error) {
	if extSuffix.MatchString(rhs) {
		return nil, &DecodeError{Line: text, Reason: "store does not take an extension suffix"}
	}

	src, ok := ParseReg(rhs)
	if !ok {
		return nil, &DecodeError{Line: text, Reason: fmt.Sprintf("unknown source register %q", rhs)}
	}

	addr, err := d.parseMemOperand(text, lhs)
	if err != nil {
		return nil, err
	}

	return &Instruction{
		Op:   OpStore,
		Dest: RegInvalid,
		Src:  src,
		Addr: addr,
		Text: text,
	}, nil
}

// decodeMove decodes "Rd = imm32".
func (d *Decoder) decodeMove(text, lhs, rhs string) (*Instruction, error) {
	dest, ok := ParseReg(lhs)
	if !ok {
		return nil, &DecodeError{Line: text, Reason: fmt.Sprintf("unknown destination register %q", lhs)}
	}

	imm, err := parseImm(rhs)
	if err != nil {
		return nil, &DecodeError{Line: text, Reason: fmt.Sprintf("bad immediate %q", rhs)}
	}

	return &Instruction{
		Op:   OpMove,
		Dest: dest,
		Src:  RegInvalid,
		Imm:  imm,
		Text: text,
	}, nil
}

// parseMemOperand parses a bracketed memory operand with its size letter.
func (d *Decoder) parseMemOperand(text, operand string) (Addressing, error) {
	addr := Addressing{Index: RegInvalid}

	m := memOperand.FindStringSubmatch(operand)
	if m == nil {
		return addr, &DecodeError{Line: text, Reason: fmt.Sprintf("malformed memory operand %q", operand)}
	}
	sizeLetter, baseName, postInc, sign, offset := m[1], m[2], m[3], m[4], m[5]

	size, known := sizeLetters[strings.ToUpper(sizeLetter)]
	if !known {
		return addr, &DecodeError{Line: text, Reason: fmt.Sprintf("unknown size letter %q", sizeLetter)}
	}
	addr.Size = size

	base, ok := ParseReg(baseName)
	if !ok {
		return addr, &DecodeError{Line: text, Reason: fmt.Sprintf("unknown base register %q", baseName)}
	}
	if c := base.Class(); c != ClassPointer && c != ClassIndex {
		return addr, &DecodeError{Line: text,
			Reason: fmt.Sprintf("%v is a %v register, base must be pointer or index class", base, c)}
	}
	addr.Base = base

	switch {
	case postInc != "":
		addr.PostInc = true
	case offset != "":
		if index, isReg := ParseReg(offset); isReg {
			if sign == "-" {
				return addr, &DecodeError{Line: text, Reason: "register offset cannot be subtracted"}
			}
			if index.Class() != ClassPointer && index.Class() != ClassIndex {
				return addr, &DecodeError{Line: text,
					Reason: fmt.Sprintf("offset register %v must be pointer or index class", index)}
			}
			addr.Index = index
			break
		}
		disp, err := parseImm(offset)
		if err != nil {
			return addr, &DecodeError{Line: text, Reason: fmt.Sprintf("bad displacement %q", offset)}
		}
		addr.Disp = int32(disp)
		if sign == "-" {
			addr.Disp = -addr.Disp
		}
	}

	return addr, nil
}

// parseImm parses a 32-bit literal in decimal or 0x-hex form.
func parseImm(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseUint(s, 0, 32); err == nil {
		return uint32(v), nil
	}
	// Negative decimal literals wrap to their two's-complement form.
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
