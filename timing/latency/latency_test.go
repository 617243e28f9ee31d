package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bfsim/insts"
	"github.com/sarchlab/bfsim/timing/latency"
)

func mustDecode(line string) *insts.Instruction {
	inst, err := insts.NewDecoder().Decode(line)
	Expect(err).NotTo(HaveOccurred())
	return inst
}

var _ = Describe("Latency", func() {
	var table *latency.Table

	BeforeEach(func() {
		table = latency.NewTable()
	})

	Describe("Default timing values", func() {
		It("should have single-cycle moves", func() {
			Expect(table.Config().MoveLatency).To(Equal(uint64(1)))
		})

		It("should have a multi-cycle load-to-use path", func() {
			Expect(table.Config().LoadLatency).To(Equal(uint64(3)))
		})

		It("should have single-cycle stores", func() {
			Expect(table.Config().StoreLatency).To(Equal(uint64(1)))
		})
	})

	Describe("GetLatency", func() {
		It("should charge the move latency for immediate moves", func() {
			Expect(table.GetLatency(mustDecode("R0 = 5"))).To(Equal(uint64(1)))
		})

		It("should charge the load latency for loads", func() {
			Expect(table.GetLatency(mustDecode("R4 = B [P5++] (X)"))).To(Equal(uint64(3)))
		})

		It("should charge the store latency for stores", func() {
			Expect(table.GetLatency(mustDecode("[P0++] = R1"))).To(Equal(uint64(1)))
		})

		It("should add the writeback cost for post-increment", func() {
			config := latency.DefaultTimingConfig()
			config.WritebackLatency = 2
			table = latency.NewTableWithConfig(config)

			plain := table.GetLatency(mustDecode("R0 = [P1]"))
			postInc := table.GetLatency(mustDecode("R0 = [P1++]"))

			Expect(postInc).To(Equal(plain + 2))
		})

		It("should default to one cycle for nil", func() {
			Expect(table.GetLatency(nil)).To(Equal(uint64(1)))
		})
	})

	Describe("IsMemoryOp", func() {
		It("should recognize loads and stores", func() {
			Expect(table.IsMemoryOp(mustDecode("R0 = [P1]"))).To(BeTrue())
			Expect(table.IsMemoryOp(mustDecode("[P1] = R0"))).To(BeTrue())
			Expect(table.IsMemoryOp(mustDecode("R0 = 1"))).To(BeFalse())
		})
	})

	Describe("LoadConfig", func() {
		It("should override only the fields present in the file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "timing.json")
			Expect(os.WriteFile(path,
				[]byte(`{"load_latency": 5}`), 0o644)).To(Succeed())

			config, err := latency.LoadConfig(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(config.LoadLatency).To(Equal(uint64(5)))
			Expect(config.MoveLatency).To(Equal(uint64(1)))
		})

		It("should reject a zero load latency", func() {
			path := filepath.Join(GinkgoT().TempDir(), "timing.json")
			Expect(os.WriteFile(path,
				[]byte(`{"load_latency": 0}`), 0o644)).To(Succeed())

			_, err := latency.LoadConfig(path)

			Expect(err).To(HaveOccurred())
		})

		It("should reject memory faster than L1", func() {
			config := latency.DefaultTimingConfig()
			config.MemoryLatency = 0

			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should fail on a missing file", func() {
			_, err := latency.LoadConfig("no/such/file.json")

			Expect(err).To(HaveOccurred())
		})
	})
})
