package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/core"
)

func testConfig() core.MachineConfig {
	return core.MachineConfig{
		IntegerAdder:    core.UnitConfig{RSSize: 4, Latency: 1, Count: 2},
		FPAdder:         core.UnitConfig{RSSize: 4, Latency: 2, Count: 4},
		FPMultiplier:    core.UnitConfig{RSSize: 4, Latency: 4, Count: 4},
		LoadStoreUnit:   core.UnitConfig{RSSize: 4, Latency: 2, Count: 4},
		ROBEntries:      16,
		CheckpointSlots: 4,
	}
}

func runToCompletion(sim *core.Simulator) {
	for i := 0; i < 10000 && !sim.Done(); i++ {
		sim.Tick()
	}
	ExpectWithOffset(1, sim.Done()).To(BeTrue(), "simulator did not reach completion")
}

var _ = Describe("Simulator", func() {
	It("resolves a RAW dependency through the ROB before committing", func() {
		// R1 = R2 + R3 ; R4 = R1 + R5, where the second instruction's
		// source is still in flight in the ROB when it issues.
		prog := core.Program{
			{Op: core.OpADD, Dest: "R1", Src1: "R2", Src2: "R3"},
			{Op: core.OpADD, Dest: "R4", Src1: "R1", Src2: "R5"},
		}
		arf := core.NewARF()
		_ = arf.WriteInt("R2", 2)
		_ = arf.WriteInt("R3", 3)
		_ = arf.WriteInt("R5", 10)

		sim := core.NewSimulator(prog, arf, nil, testConfig())
		runToCompletion(sim)

		Expect(sim.ARF().ReadInt("R1")).To(Equal(int64(5)))
		Expect(sim.ARF().ReadInt("R4")).To(Equal(int64(15)))
		Expect(sim.Stats().Retired).To(Equal(uint64(2)))
	})

	It("lets a later write to the same register win (WAW via rename)", func() {
		prog := core.Program{
			{Op: core.OpADDI, Dest: "R1", Src1: "R0", Imm: 1},
			{Op: core.OpADDI, Dest: "R1", Src1: "R0", Imm: 2},
		}
		sim := core.NewSimulator(prog, nil, nil, testConfig())
		runToCompletion(sim)

		Expect(sim.ARF().ReadInt("R1")).To(Equal(int64(2)))
	})

	It("forwards a store's data directly to a dependent load", func() {
		prog := core.Program{
			{Op: core.OpSD, Src1: "F1", Src2: "R2", Imm: 0},
			{Op: core.OpLD, Dest: "F3", Src2: "R2", Imm: 0},
		}
		arf := core.NewARF()
		_ = arf.WriteFloat("F1", 3.25)
		_ = arf.WriteInt("R2", 0)

		sim := core.NewSimulator(prog, arf, nil, testConfig())
		runToCompletion(sim)

		Expect(sim.ARF().ReadFloat("F3")).To(Equal(3.25))
	})

	It("round-trips a store through memory for a non-overlapping load", func() {
		prog := core.Program{
			{Op: core.OpSD, Src1: "F1", Src2: "R1", Imm: 0},
			{Op: core.OpLD, Dest: "F2", Src2: "R1", Imm: 8},
		}
		arf := core.NewARF()
		_ = arf.WriteFloat("F1", 9.5)
		_ = arf.WriteInt("R1", 0)
		mem := core.NewMemory()
		_ = mem.WriteFloat(8, 1.25)

		sim := core.NewSimulator(prog, arf, mem, testConfig())
		runToCompletion(sim)

		Expect(sim.ARF().ReadFloat("F2")).To(Equal(1.25))
	})

	It("stalls commit rather than losing a store's write when a younger load steals the memory port", func() {
		// The store's base register only resolves once the preceding ADD
		// writes it back, so two independent, faster-resolving loads
		// queue up and repeatedly win the single memory port (spec.md
		// §4.4 step 3: a ready load has priority over the ROB-head
		// store) in the very cycles the store is done and fresh enough
		// to commit. Commit must stall the store rather than retiring
		// its ROB entry before it ever reaches Memory.
		prog := core.Program{
			{Op: core.OpADD, Dest: "R2", Src1: "R0", Src2: "R0"},
			{Op: core.OpSD, Src1: "F1", Src2: "R2", Imm: 0},
			{Op: core.OpLD, Dest: "F2", Src2: "R1", Imm: 100},
			{Op: core.OpLD, Dest: "F3", Src2: "R1", Imm: 104},
		}
		arf := core.NewARF()
		_ = arf.WriteFloat("F1", 9.5)

		sim := core.NewSimulator(prog, arf, nil, testConfig())
		runToCompletion(sim)

		Expect(sim.Stats().Retired).To(Equal(uint64(4)))
		v, err := sim.Memory().ReadFloat(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(9.5))
	})

	It("does not roll back when the branch predictor is correct", func() {
		// predictor always predicts taken by default; this branch is
		// always taken, so the speculative path is the architectural one.
		prog := core.Program{
			{Op: core.OpADDI, Dest: "R1", Src1: "R0", Imm: 1},
			{Op: core.OpBEQ, Src1: "R0", Src2: "R0", Disp: 1},
			{Op: core.OpADDI, Dest: "R2", Src1: "R0", Imm: 99}, // skipped
			{Op: core.OpADDI, Dest: "R2", Src1: "R0", Imm: 7},  // taken target
		}
		sim := core.NewSimulator(prog, nil, nil, testConfig())
		runToCompletion(sim)

		Expect(sim.ARF().ReadInt("R1")).To(Equal(int64(1)))
		Expect(sim.ARF().ReadInt("R2")).To(Equal(int64(7)))
		Expect(sim.Stats().Retired).To(Equal(uint64(3)))
	})

	It("squashes the speculative path and recovers on a mispredict", func() {
		// predictor defaults to taken, but this branch is never taken, so
		// the speculatively-fetched copy of the target-path instruction
		// must never commit; the fall-through path then runs index 2 and
		// index 3 in order, so exactly four instructions retire.
		prog := core.Program{
			{Op: core.OpADDI, Dest: "R1", Src1: "R0", Imm: 1},
			{Op: core.OpBNE, Src1: "R0", Src2: "R0", Disp: 1},
			{Op: core.OpADDI, Dest: "R2", Src1: "R0", Imm: 55},  // fall-through
			{Op: core.OpADDI, Dest: "R2", Src1: "R0", Imm: 999}, // target: squashed copy, then refetched in order
		}
		sim := core.NewSimulator(prog, nil, nil, testConfig())
		runToCompletion(sim)

		Expect(sim.ARF().ReadInt("R2")).To(Equal(int64(999)))
		Expect(sim.Stats().Retired).To(Equal(uint64(4)))
	})

	It("drops writes to the zero registers", func() {
		prog := core.Program{
			{Op: core.OpADDI, Dest: "R0", Src1: "R0", Imm: 5},
		}
		sim := core.NewSimulator(prog, nil, nil, testConfig())
		runToCompletion(sim)

		Expect(sim.ARF().ReadInt("R0")).To(Equal(int64(0)))
	})

	It("counts a mispredict in Stats when the speculative path is squashed", func() {
		prog := core.Program{
			{Op: core.OpBNE, Src1: "R0", Src2: "R0", Disp: 1},
			{Op: core.OpADDI, Dest: "R1", Src1: "R0", Imm: 1}, // fall-through
			{Op: core.OpADDI, Dest: "R1", Src1: "R0", Imm: 2}, // target: speculative copy squashed
		}
		sim := core.NewSimulator(prog, nil, nil, testConfig())
		runToCompletion(sim)

		Expect(sim.Stats().Mispredicts).To(Equal(uint64(1)))
	})

	It("tallies a ROB-full stall when admission cannot proceed", func() {
		prog := core.Program{
			{Op: core.OpADDI, Dest: "R1", Src1: "R0", Imm: 1},
			{Op: core.OpADDI, Dest: "R2", Src1: "R0", Imm: 2},
			{Op: core.OpADDI, Dest: "R3", Src1: "R0", Imm: 3},
		}
		cfg := testConfig()
		cfg.ROBEntries = 1
		sim := core.NewSimulator(prog, nil, nil, cfg)
		runToCompletion(sim)

		Expect(sim.Stats().Stalls[core.StallROBFull]).To(BeNumerically(">", 0))
	})

	It("computes a floating-point product through the FP multiplier", func() {
		prog := core.Program{
			{Op: core.OpMULTD, Dest: "F1", Src1: "F2", Src2: "F3"},
		}
		arf := core.NewARF()
		_ = arf.WriteFloat("F2", 2.5)
		_ = arf.WriteFloat("F3", 4.0)

		sim := core.NewSimulator(prog, arf, nil, testConfig())
		runToCompletion(sim)

		Expect(sim.ARF().ReadFloat("F1")).To(Equal(10.0))
	})
})
