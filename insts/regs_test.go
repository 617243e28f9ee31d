package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bfsim/insts"
)

var _ = Describe("Registers", func() {
	Describe("Class", func() {
		It("should classify data registers", func() {
			Expect(insts.R0.Class()).To(Equal(insts.ClassData))
			Expect(insts.R7.Class()).To(Equal(insts.ClassData))
		})

		It("should classify pointer registers", func() {
			Expect(insts.P0.Class()).To(Equal(insts.ClassPointer))
			Expect(insts.P5.Class()).To(Equal(insts.ClassPointer))
		})

		It("should place FP and SP in the pointer class", func() {
			Expect(insts.FP.Class()).To(Equal(insts.ClassPointer))
			Expect(insts.SP.Class()).To(Equal(insts.ClassPointer))
		})

		It("should classify index registers", func() {
			Expect(insts.I0.Class()).To(Equal(insts.ClassIndex))
			Expect(insts.I3.Class()).To(Equal(insts.ClassIndex))
		})

		It("should reject ids past the register file", func() {
			Expect(insts.RegInvalid.Class()).To(Equal(insts.ClassInvalid))
		})
	})

	Describe("IndexInClass", func() {
		It("should number registers within their class", func() {
			Expect(insts.R4.IndexInClass()).To(Equal(4))
			Expect(insts.P0.IndexInClass()).To(Equal(0))
			Expect(insts.I2.IndexInClass()).To(Equal(2))
		})

		It("should give FP and SP distinct pointer slots", func() {
			Expect(insts.FP.IndexInClass()).To(Equal(6))
			Expect(insts.SP.IndexInClass()).To(Equal(7))
		})
	})

	Describe("ParseReg", func() {
		It("should parse names case-insensitively", func() {
			for _, name := range []string{"R4", "r4"} {
				reg, ok := insts.ParseReg(name)
				Expect(ok).To(BeTrue())
				Expect(reg).To(Equal(insts.R4))
			}
		})

		It("should parse FP and SP", func() {
			reg, ok := insts.ParseReg("fp")
			Expect(ok).To(BeTrue())
			Expect(reg).To(Equal(insts.FP))

			reg, ok = insts.ParseReg("SP")
			Expect(ok).To(BeTrue())
			Expect(reg).To(Equal(insts.SP))
		})

		It("should reject unknown names", func() {
			_, ok := insts.ParseReg("R8")
			Expect(ok).To(BeFalse())

			_, ok = insts.ParseReg("Q0")
			Expect(ok).To(BeFalse())
		})

		It("should round-trip every register name", func() {
			for r := insts.Reg(0); r < insts.NumRegs; r++ {
				parsed, ok := insts.ParseReg(r.String())
				Expect(ok).To(BeTrue())
				Expect(parsed).To(Equal(r))
			}
		})
	})

	Describe("ClassRegs", func() {
		It("should enumerate the pointer class including FP and SP", func() {
			regs := insts.ClassRegs(insts.ClassPointer)
			Expect(regs).To(Equal([]insts.Reg{
				insts.P0, insts.P1, insts.P2, insts.P3, insts.P4, insts.P5,
				insts.FP, insts.SP,
			}))
		})

		It("should enumerate eight data registers", func() {
			Expect(insts.ClassRegs(insts.ClassData)).To(HaveLen(8))
		})
	})
})
