// Package insts provides instruction definitions and decoding for a
// Blackfin-style 32-bit load/store architecture.
//
// This package implements decoding of mnemonic-level assembly lines into
// structured instruction representations. It supports:
//   - Indirect loads: byte, half-word, and word, with optional
//     post-increment and sign/zero extension suffixes
//   - Indirect stores: byte, half-word, and word, with optional
//     post-increment
//   - Displacement and register-offset addressing
//   - Immediate register moves
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode("R4 = B [P5++] (X)")
//	fmt.Printf("Op: %v, Dest: %v, Base: %v\n", inst.Op, inst.Dest, inst.Addr.Base)
package insts
