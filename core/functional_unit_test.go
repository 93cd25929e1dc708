package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/core"
)

var _ = Describe("IntegerALU", func() {
	It("produces a result latency cycles after dispatch", func() {
		alu := core.NewIntegerALU(2, 1)
		Expect(alu.Idle()).To(BeTrue())

		alu.Dispatch(10, 1, core.OpADD, 3, 4)
		Expect(alu.Idle()).To(BeFalse())

		alu.Advance(11)
		Expect(alu.HasResult()).To(BeFalse())

		alu.Advance(12)
		Expect(alu.HasResult()).To(BeTrue())
		r := alu.PopResult()
		Expect(r.Int).To(Equal(int64(7)))
	})

	It("computes a boolean result for BEQ/BNE", func() {
		alu := core.NewIntegerALU(1, 1)
		alu.Dispatch(0, 1, core.OpBEQ, 5, 5)
		alu.Advance(1)
		r := alu.PopResult()
		Expect(r.Kind).To(Equal(core.ROBValueBool))
		Expect(r.Bool).To(BeTrue())
	})

	It("blocks dispatch when the output buffer is full", func() {
		alu := core.NewIntegerALU(1, 1)
		alu.Dispatch(0, 1, core.OpADD, 1, 1)
		alu.Advance(1)
		Expect(alu.Idle()).To(BeFalse())
	})

	It("drops in-flight and buffered work belonging to a squashed branch", func() {
		alu := core.NewIntegerALU(1, 2)
		alu.Dispatch(0, 5, core.OpADD, 1, 1)
		alu.PurgeAfter(3)
		Expect(alu.Quiescent()).To(BeTrue())
	})
})

var _ = Describe("PipelinedFU", func() {
	It("completes in admission order after the fixed latency", func() {
		fp := core.NewPipelinedFU(3, 2, 2)
		fp.Dispatch(0, core.FUResult{ID: 1, Kind: core.ROBValueFloat, Flt: 1.5})
		fp.Dispatch(1, core.FUResult{ID: 2, Kind: core.ROBValueFloat, Flt: 2.5})

		fp.Advance(3)
		Expect(fp.HasResult()).To(BeTrue())
		Expect(fp.PopResult().ID).To(Equal(1))

		fp.Advance(4)
		Expect(fp.HasResult()).To(BeTrue())
		Expect(fp.PopResult().ID).To(Equal(2))
	})

	It("refuses new work once its in-flight depth is reached", func() {
		fp := core.NewPipelinedFU(5, 1, 4)
		Expect(fp.CanDispatch()).To(BeTrue())
		fp.Dispatch(0, core.FUResult{ID: 1})
		Expect(fp.CanDispatch()).To(BeFalse())
	})
})
