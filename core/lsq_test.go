package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/core"
)

var _ = Describe("LoadStoreQueue", func() {
	var q *core.LoadStoreQueue

	BeforeEach(func() {
		q = core.NewLoadStoreQueue(8, 4)
	})

	It("computes addresses once base (and data, for stores) resolve", func() {
		q.Add(core.LSQEntry{ID: 1, Op: core.OpSD, Imm: 4, Base: core.IntOperand(100), Value: core.TagOperand("ROB1", true)})
		computed := q.AdvanceAddressing()
		Expect(computed).To(BeEmpty())

		q.BroadcastFloat("ROB1", 9.0)
		computed = q.AdvanceAddressing()
		Expect(computed).To(Equal([]int{1}))
	})

	It("forwards the youngest matching store's data to a load", func() {
		q.Add(core.LSQEntry{ID: 1, Op: core.OpSD, Imm: 0, Base: core.IntOperand(8), Value: core.FloatOperand(3.25)})
		q.Add(core.LSQEntry{ID: 2, Op: core.OpLD, Imm: 0, Base: core.IntOperand(8)})
		q.AdvanceAddressing()

		forwarded := q.TryForward()
		Expect(forwarded).To(Equal([]int{2}))
		Expect(q.HasResult()).To(BeTrue())
		r := q.PopResult()
		Expect(r.Flt).To(Equal(3.25))

		// the store itself is untouched and still queued for memory dispatch
		Expect(q.Entries()).To(HaveLen(1))
	})

	It("does not forward to a load from a same-base store whose data has not arrived", func() {
		q.Add(core.LSQEntry{ID: 1, Op: core.OpSD, Imm: 0, Base: core.IntOperand(8), Value: core.TagOperand("ROB1", true)})
		q.Add(core.LSQEntry{ID: 2, Op: core.OpLD, Imm: 0, Base: core.IntOperand(8)})
		q.AdvanceAddressing()

		forwarded := q.TryForward()
		Expect(forwarded).To(BeEmpty())
		Expect(q.HasResult()).To(BeFalse())
		Expect(q.Entries()).To(HaveLen(2))
	})

	It("refuses to forward into a full completed-load buffer", func() {
		small := core.NewLoadStoreQueue(8, 1)
		small.Add(core.LSQEntry{ID: 1, Op: core.OpSD, Imm: 0, Base: core.IntOperand(0), Value: core.FloatOperand(1.0)})
		small.Add(core.LSQEntry{ID: 2, Op: core.OpLD, Imm: 0, Base: core.IntOperand(0)})
		small.AdvanceAddressing()
		small.CompleteLoad(99, 7.0) // fills the one-slot output buffer
		Expect(small.OutputFull()).To(BeTrue())

		forwarded := small.TryForward()
		Expect(forwarded).To(BeEmpty())
	})

	It("reports the oldest ready load and guards against double dispatch", func() {
		q.Add(core.LSQEntry{ID: 1, Op: core.OpLD, Imm: 0, Base: core.IntOperand(0)})
		q.AdvanceAddressing()

		e, ok := q.NextLoadToDispatch()
		Expect(ok).To(BeTrue())
		Expect(e.ID).To(Equal(1))

		q.MarkDispatched(1)
		_, ok = q.NextLoadToDispatch()
		Expect(ok).To(BeFalse())
	})
})
