package core

// Simulator is the top-level cycle driver: it owns every pool and unit
// and advances them through the six Tomasulo sub-phases each Tick, in
// the fixed order ISSUE, EXECUTE, BRANCH-CHECK, MEMORY, WRITEBACK,
// COMMIT (spec.md §2, §4). Unlike an in-order pipeline there are no
// double-buffered "next" registers: each sub-phase mutates shared state
// directly, and the freshness rule (§4.7) is what keeps an instruction
// from advancing two stages in the same cycle.
//
// Grounded on original_source/Tomasulo.py's runSimulation loop (issue/
// execute/memory/writeback/commit/advanceTime/dump), with the missing
// stage bodies supplied from the other original_source/src/*.py modules
// per spec.md §9's note that the most complete variant is authoritative.
type Simulator struct {
	program Program

	iq  *InstructionQueue
	rat *RAT
	arf *ARF
	mem *Memory
	rob *ROB

	rsInt   *ReservationStation
	rsFPAdd *ReservationStation
	rsFPMul *ReservationStation

	lsq *LoadStoreQueue

	intALU       *IntegerALU
	fpAdder      *PipelinedFU
	fpMultiplier *PipelinedFU
	memPort      *MemoryPort

	predictor   *BranchPredictor
	checkpoints *CheckpointStack

	timestamps map[int]*Stamps
	table      []CompletionRow

	cycle       uint64
	retired     uint64
	mispredicts uint64
	stalls      map[StallCause]uint64
}

// NewSimulator returns a Simulator ready to run program, with arf and
// mem as the initial architectural state (both may be nil to start
// zeroed).
func NewSimulator(program Program, arf *ARF, mem *Memory, cfg MachineConfig) *Simulator {
	if arf == nil {
		arf = NewARF()
	}
	if mem == nil {
		mem = NewMemory()
	}
	return &Simulator{
		program: program,

		iq:  NewInstructionQueue(program),
		rat: NewRAT(),
		arf: arf,
		mem: mem,
		rob: NewROB(cfg.ROBEntries),

		rsInt:   NewReservationStation("IntegerAdder", cfg.IntegerAdder.RSSize),
		rsFPAdd: NewReservationStation("FPAdder", cfg.FPAdder.RSSize),
		rsFPMul: NewReservationStation("FPMultiplier", cfg.FPMultiplier.RSSize),

		lsq: NewLoadStoreQueue(cfg.LoadStoreUnit.RSSize, cfg.LoadStoreUnit.Count),

		intALU:       NewIntegerALU(cfg.IntegerAdder.Latency, cfg.IntegerAdder.Count),
		fpAdder:      NewPipelinedFU(cfg.FPAdder.Latency, cfg.FPAdder.Count, cfg.FPAdder.RSSize),
		fpMultiplier: NewPipelinedFU(cfg.FPMultiplier.Latency, cfg.FPMultiplier.Count, cfg.FPMultiplier.RSSize),
		memPort:      NewMemoryPort(cfg.LoadStoreUnit.Latency),

		predictor:   NewBranchPredictor(),
		checkpoints: NewCheckpointStack(cfg.CheckpointSlots),

		timestamps: make(map[int]*Stamps),
		stalls:     make(map[StallCause]uint64),
	}
}

// StallCause identifies the structural precondition that blocked issue
// in a cycle that admitted nothing (spec.md §4.1). Grounded on the
// teacher's HazardUnit/StallResult pattern in timing/pipeline/hazard.go,
// generalized from in-order stall/flush booleans to Tomasulo's admission
// predicates.
type StallCause uint8

const (
	// StallNone means issue admitted an instruction (or the IQ was empty).
	StallNone StallCause = iota
	// StallROBFull means the reorder buffer had no free slot.
	StallROBFull
	// StallRSFull means the destination class's reservation station was full.
	StallRSFull
	// StallLSQFull means the load/store queue had no free slot, or (for a
	// load) a prior store to the same address had not yet produced data.
	StallLSQFull
	// StallCheckpointFull means a branch could not rename for lack of a
	// free checkpoint slot.
	StallCheckpointFull
)

// Stats summarizes a completed (or in-progress) run.
type Stats struct {
	Cycles  uint64
	Retired uint64

	// Mispredicts counts branch-check rollbacks (spec.md §4.3).
	Mispredicts uint64

	// Stalls counts, per cause, the cycles in which issue admitted
	// nothing for that reason. Purely additive instrumentation: it does
	// not alter §4.1's admission semantics.
	Stalls map[StallCause]uint64
}

// CPI returns the realized cycles-per-instruction, or 0 if nothing has
// retired yet.
func (st Stats) CPI() float64 {
	if st.Retired == 0 {
		return 0
	}
	return float64(st.Cycles) / float64(st.Retired)
}

// Stats returns the simulator's current statistics.
func (s *Simulator) Stats() Stats {
	stalls := make(map[StallCause]uint64, len(s.stalls))
	for k, v := range s.stalls {
		stalls[k] = v
	}
	return Stats{
		Cycles:      s.cycle,
		Retired:     s.retired,
		Mispredicts: s.mispredicts,
		Stalls:      stalls,
	}
}

// recordStall tallies a cycle in which issue admitted nothing for cause.
func (s *Simulator) recordStall(cause StallCause) {
	if cause == StallNone {
		return
	}
	s.stalls[cause]++
}

// CompletionTable returns one row per retired instruction, in commit
// order (spec.md §6's Completion Table).
func (s *Simulator) CompletionTable() []CompletionRow {
	return s.table
}

// ARF returns the committed architectural register file.
func (s *Simulator) ARF() *ARF {
	return s.arf
}

// Memory returns the data memory.
func (s *Simulator) Memory() *Memory {
	return s.mem
}

// Done reports whether the program has run to completion: nothing left
// to fetch and every pool, queue, and unit is empty (spec.md §4.6
// termination condition).
func (s *Simulator) Done() bool {
	return s.iq.Empty() &&
		s.rob.Empty() &&
		len(s.rsInt.Entries()) == 0 &&
		len(s.rsFPAdd.Entries()) == 0 &&
		len(s.rsFPMul.Entries()) == 0 &&
		len(s.lsq.Entries()) == 0 &&
		!s.lsq.HasResult() &&
		s.intALU.Quiescent() &&
		s.fpAdder.Quiescent() &&
		s.fpMultiplier.Quiescent() &&
		s.memPort.Quiescent()
}

// Tick advances the simulator by one cycle, running all six sub-phases
// in order.
func (s *Simulator) Tick() {
	s.cycle++
	s.stageIssue()
	s.stageExecute()
	s.stageBranchCheck()
	s.stageMemory()
	s.stageWriteback()
	s.stageCommit()
}

// Run ticks until the program completes.
func (s *Simulator) Run() {
	for !s.Done() {
		s.Tick()
	}
}

// RunCycles ticks at most n times, stopping early if the program
// completes.
func (s *Simulator) RunCycles(n int) {
	for i := 0; i < n && !s.Done(); i++ {
		s.Tick()
	}
}

// resolveOperand reads a source register through the RAT: a committed
// mapping resolves immediately from the ARF, an in-flight mapping
// becomes a tag the CDB will later fill (spec.md §4.1 step 1). Reads of
// the zero registers always resolve to 0, regardless of what the RAT
// (transiently) says, since a prior instruction may have renamed R0/F0
// as a destination without ever being allowed to write it.
func (s *Simulator) resolveOperand(reg string, isFloat bool) Operand {
	if IsZeroRegister(reg) {
		if isFloat {
			return FloatOperand(0)
		}
		return IntOperand(0)
	}
	tag := s.rat.Get(reg)
	if tag == reg {
		if isFloat {
			return FloatOperand(s.arf.ReadFloat(reg))
		}
		return IntOperand(s.arf.ReadInt(reg))
	}
	return TagOperand(tag, isFloat)
}

// rsForClass returns the reservation station pool an op's class
// dispatches through. Branches share the integer ALU's station
// (spec.md §4.2).
func (s *Simulator) rsForClass(c Class) *ReservationStation {
	switch c {
	case ClassIntALU, ClassBranch:
		return s.rsInt
	case ClassFPAdder:
		return s.rsFPAdd
	case ClassFPMultiplier:
		return s.rsFPMul
	default:
		return nil
	}
}
