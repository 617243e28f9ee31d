package insts

import "strings"

// Reg identifies an architectural register by a stable flat id.
type Reg uint8

// Architectural registers. The pointer class includes FP and SP as
// ordinary members with independent storage; they are not aliases of
// any numbered pointer register.
const (
	R0 Reg = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	P0
	P1
	P2
	P3
	P4
	P5
	FP
	SP
	I0
	I1
	I2
	I3

	// NumRegs is the total number of architectural registers.
	NumRegs

	// RegInvalid marks an unused register field in an Instruction.
	RegInvalid Reg = 0xFF
)

// RegClass groups registers by their architectural role.
type RegClass uint8

// Register classes.
const (
	ClassInvalid RegClass = iota
	ClassData             // R0-R7, general-purpose 32-bit data
	ClassPointer          // P0-P5, FP, SP
	ClassIndex            // I0-I3
)

var regNames = [NumRegs]string{
	"R0", "R1", "R2", "R3", "R4", "R5", "R6", "R7",
	"P0", "P1", "P2", "P3", "P4", "P5", "FP", "SP",
	"I0", "I1", "I2", "I3",
}

// Class returns the register's class.
func (r Reg) Class() RegClass {
	switch {
	case r <= R7:
		return ClassData
	case r <= SP:
		return ClassPointer
	case r <= I3:
		return ClassIndex
	default:
		return ClassInvalid
	}
}

// IndexInClass returns the register's index within its class
// (e.g. FP is pointer 6, SP is pointer 7).
func (r Reg) IndexInClass() int {
	switch r.Class() {
	case ClassData:
		return int(r - R0)
	case ClassPointer:
		return int(r - P0)
	case ClassIndex:
		return int(r - I0)
	default:
		return -1
	}
}

// String returns the register's assembly name.
func (r Reg) String() string {
	if r < NumRegs {
		return regNames[r]
	}
	return "R?"
}

// String returns a human-readable class name.
func (c RegClass) String() string {
	switch c {
	case ClassData:
		return "data"
	case ClassPointer:
		return "pointer"
	case ClassIndex:
		return "index"
	default:
		return "invalid"
	}
}

// ClassRegs returns all registers in the given class, in id order.
func ClassRegs(c RegClass) []Reg {
	var regs []Reg
	for r := Reg(0); r < NumRegs; r++ {
		if r.Class() == c {
			regs = append(regs, r)
		}
	}
	return regs
}

// ParseReg looks up a register by its assembly name, case-insensitively.
func ParseReg(name string) (Reg, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for r, n := range regNames {
		if n == upper {
			return Reg(r), true
		}
	}
	return RegInvalid, false
}
