package loader_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bfsim/insts"
	"github.com/sarchlab/bfsim/loader"
)

func load(source string, opts ...loader.Option) *loader.Program {
	prog, err := loader.Load(strings.NewReader(source), opts...)
	Expect(err).NotTo(HaveOccurred())
	return prog
}

var _ = Describe("Loader", func() {
	Describe("Data section", func() {
		It("should place the first block at the default data base", func() {
			prog := load(`
.data
DATA1:
.dd 0x04030287
`)

			Expect(prog.Blocks).To(HaveLen(1))
			Expect(prog.Blocks[0].Label).To(Equal("DATA1"))
			Expect(prog.Blocks[0].Addr).To(Equal(uint32(loader.DefaultDataBase)))
		})

		It("should lay words out little-endian", func() {
			prog := load(`
.data
DATA1:
.dd 0x04030287
.dd 0x07060588
`)

			Expect(prog.Blocks[0].Data).To(Equal([]byte{
				0x87, 0x02, 0x03, 0x04,
				0x88, 0x05, 0x06, 0x07,
			}))
		})

		It("should place successive blocks at successive addresses", func() {
			prog := load(`
.data
DATA1:
.dd 1
DATA2:
.dd 2
`)

			Expect(prog.Blocks[1].Addr).To(Equal(uint32(loader.DefaultDataBase + 4)))
			Expect(prog.Symbols["DATA2"]).To(Equal(uint32(loader.DefaultDataBase + 4)))
		})

		It("should honor a custom data base", func() {
			prog := load(`
.data
DATA1:
.dd 1
`, loader.WithDataBase(0x8000))

			Expect(prog.Blocks[0].Addr).To(Equal(uint32(0x8000)))
		})

		It("should reject duplicate labels", func() {
			_, err := loader.Load(strings.NewReader(`
.data
DATA1:
.dd 1
DATA1:
.dd 2
`))

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("duplicate label"))
		})

		It("should reject stray directives", func() {
			_, err := loader.Load(strings.NewReader(`
.data
DATA1:
.db 0x01
`))

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Text section", func() {
		It("should decode instructions at load time", func() {
			prog := load(`
START:
R0 = 5
R4 = B [P5++] (X)
`)

			Expect(prog.Statements).To(HaveLen(2))
			Expect(prog.Statements[0].Kind).To(Equal(loader.StmtInstruction))
			Expect(prog.Statements[0].Inst.Op).To(Equal(insts.OpMove))
			Expect(prog.Statements[1].Inst.Op).To(Equal(insts.OpLoad))
			Expect(prog.Statements[1].Inst.Addr.PostInc).To(BeTrue())
		})

		It("should make a malformed instruction fatal with its line number", func() {
			_, err := loader.Load(strings.NewReader(`
R0 = 5
R4 = B [P5++] (Q)
`))

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("line 3"))

			var decodeErr *insts.DecodeError
			Expect(errors.As(err, &decodeErr)).To(BeTrue())
		})

		It("should strip comments", func() {
			prog := load(`
// full-line comment
R0 = 5 # trailing comment
`)

			Expect(prog.Statements).To(HaveLen(1))
		})

		It("should parse CHECKREG in bare and parenthesized forms", func() {
			prog := load(`
CHECKREG R4, 0xFFFFFF87
CHECKREG(P5, 0x4001)
`)

			Expect(prog.Statements[0].Kind).To(Equal(loader.StmtCheckReg))
			Expect(prog.Statements[0].Reg).To(Equal(insts.R4))
			Expect(prog.Statements[0].Want).To(Equal(uint32(0xFFFFFF87)))
			Expect(prog.Statements[1].Reg).To(Equal(insts.P5))
			Expect(prog.Statements[1].Want).To(Equal(uint32(0x4001)))
		})

		It("should parse the INIT family", func() {
			prog := load(`
INIT_R_REGS 0
INIT_P_REGS 0x10
INIT_I_REGS(0)
`)

			Expect(prog.Statements[0].Class).To(Equal(insts.ClassData))
			Expect(prog.Statements[1].Class).To(Equal(insts.ClassPointer))
			Expect(prog.Statements[1].Value).To(Equal(uint32(0x10)))
			Expect(prog.Statements[2].Class).To(Equal(insts.ClassIndex))
		})

		It("should parse pass and fail directives", func() {
			prog := load(`
pass
fail
`)

			Expect(prog.Statements[0].Kind).To(Equal(loader.StmtPass))
			Expect(prog.Statements[1].Kind).To(Equal(loader.StmtFail))
		})
	})

	Describe("loadsym", func() {
		It("should resolve a label defined after its use", func() {
			prog := load(`
.text
loadsym P5, DATA1

.data
DATA1:
.dd 0x11111111
`)

			Expect(prog.Statements).To(HaveLen(1))
			inst := prog.Statements[0].Inst
			Expect(inst.Op).To(Equal(insts.OpMove))
			Expect(inst.Dest).To(Equal(insts.P5))
			Expect(inst.Imm).To(Equal(uint32(loader.DefaultDataBase)))
		})

		It("should fail on an undefined label", func() {
			_, err := loader.Load(strings.NewReader(`loadsym P5, NOWHERE`))

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("NOWHERE"))
		})
	})
})
