package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/core"
)

var _ = Describe("ReservationStation", func() {
	It("reports an entry ready only once both operands resolve", func() {
		rs := core.NewReservationStation("IntegerAdder", 2)
		rs.Add(core.RSEntry{
			ID: 1, DestTag: "ROB0", Op: core.OpADD,
			Vj: core.TagOperand("ROB_x", false),
			Vk: core.IntOperand(5),
		})

		entry := rs.Entries()[0]
		Expect(entry.Ready()).To(BeFalse())

		rs.BroadcastInt("ROB_x", 10)
		entry = rs.Entries()[0]
		Expect(entry.Ready()).To(BeTrue())
		Expect(entry.Vj.IntVal).To(Equal(int64(10)))
	})

	It("is full at capacity and empties on Remove", func() {
		rs := core.NewReservationStation("IntegerAdder", 1)
		Expect(rs.Full()).To(BeFalse())
		rs.Add(core.RSEntry{ID: 1, Op: core.OpADD, Vj: core.IntOperand(1), Vk: core.IntOperand(1)})
		Expect(rs.Full()).To(BeTrue())

		rs.Remove(1)
		Expect(rs.Full()).To(BeFalse())
		Expect(rs.Entries()).To(BeEmpty())
	})

	It("purges entries younger than a branch ID", func() {
		rs := core.NewReservationStation("IntegerAdder", 4)
		rs.Add(core.RSEntry{ID: 1})
		rs.Add(core.RSEntry{ID: 2})
		rs.Add(core.RSEntry{ID: 3})

		rs.PurgeAfter(2)

		ids := []int{}
		for _, e := range rs.Entries() {
			ids = append(ids, e.ID)
		}
		Expect(ids).To(Equal([]int{1, 2}))
	})

	It("only resolves an operand waiting on the broadcast tag", func() {
		rs := core.NewReservationStation("FPAdder", 2)
		rs.Add(core.RSEntry{
			ID: 1,
			Vj: core.TagOperand("ROB1", true),
			Vk: core.TagOperand("ROB2", true),
		})
		rs.BroadcastFloat("ROB2", 3.5)

		e := rs.Entries()[0]
		Expect(e.Vj.Resolved).To(BeFalse())
		Expect(e.Vk.Resolved).To(BeTrue())
		Expect(e.Vk.FltVal).To(Equal(3.5))
	})
})
