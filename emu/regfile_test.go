package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bfsim/emu"
	"github.com/sarchlab/bfsim/insts"
)

var _ = Describe("RegFile", func() {
	var regFile *emu.RegFile

	BeforeEach(func() {
		regFile = &emu.RegFile{}
	})

	It("should read back written values", func() {
		regFile.Write(insts.R3, 0xCAFEBABE)
		Expect(regFile.Read(insts.R3)).To(Equal(uint32(0xCAFEBABE)))
	})

	It("should keep every register independent", func() {
		regFile.Write(insts.P0, 1)
		regFile.Write(insts.P1, 2)
		regFile.Write(insts.I0, 3)

		Expect(regFile.Read(insts.P0)).To(Equal(uint32(1)))
		Expect(regFile.Read(insts.P1)).To(Equal(uint32(2)))
		Expect(regFile.Read(insts.I0)).To(Equal(uint32(3)))
		Expect(regFile.Read(insts.R0)).To(BeZero())
	})

	It("should keep FP and SP separate from numbered pointers", func() {
		regFile.Write(insts.P5, 0x1000)
		regFile.Write(insts.FP, 0x2000)
		regFile.Write(insts.SP, 0x3000)

		Expect(regFile.Read(insts.P5)).To(Equal(uint32(0x1000)))
		Expect(regFile.Read(insts.FP)).To(Equal(uint32(0x2000)))
		Expect(regFile.Read(insts.SP)).To(Equal(uint32(0x3000)))
	})

	Describe("InitClass", func() {
		It("should set every pointer register including FP and SP", func() {
			regFile.Write(insts.FP, 0xFFFF)

			regFile.InitClass(insts.ClassPointer, 0x11)

			for _, reg := range insts.ClassRegs(insts.ClassPointer) {
				Expect(regFile.Read(reg)).To(Equal(uint32(0x11)), reg.String())
			}
		})

		It("should leave other classes untouched", func() {
			regFile.Write(insts.R0, 0xAA)

			regFile.InitClass(insts.ClassPointer, 0)
			regFile.InitClass(insts.ClassIndex, 0)

			Expect(regFile.Read(insts.R0)).To(Equal(uint32(0xAA)))
		})

		It("should clear data registers", func() {
			regFile.Write(insts.R7, 7)

			regFile.InitClass(insts.ClassData, 0)

			Expect(regFile.Read(insts.R7)).To(BeZero())
		})
	})

	Describe("Snapshot", func() {
		It("should capture every architectural register", func() {
			regFile.Write(insts.R1, 10)
			regFile.Write(insts.SP, 20)

			snap := regFile.Snapshot()

			Expect(snap).To(HaveLen(int(insts.NumRegs)))
			Expect(snap[insts.R1]).To(Equal(uint32(10)))
			Expect(snap[insts.SP]).To(Equal(uint32(20)))
		})
	})
})
