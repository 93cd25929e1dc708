package core

// stageExecute advances in-flight functional-unit work and dispatches at
// most one newly-ready entry per class's unit (spec.md §4.2). Advancing
// before dispatch lets a unit that frees up this cycle accept new work
// in the same cycle.
func (s *Simulator) stageExecute() {
	s.intALU.Advance(s.cycle)
	s.fpAdder.Advance(s.cycle)
	s.fpMultiplier.Advance(s.cycle)

	s.dispatchInt()
	s.dispatchFP(s.rsFPAdd, s.fpAdder)
	s.dispatchFP(s.rsFPMul, s.fpMultiplier)
}

// dispatchInt dispatches the oldest ready entry in rsInt to the integer
// ALU, which also executes branch comparisons (spec.md §4.2: "Integer
// ALU operations... BNE/BEQ").
func (s *Simulator) dispatchInt() {
	if !s.intALU.Idle() {
		return
	}
	for _, e := range s.rsInt.Entries() {
		if !e.Ready() || !s.fresh(e.ID) {
			continue
		}
		s.intALU.Dispatch(s.cycle, e.ID, e.Op, e.Vj.IntVal, e.Vk.IntVal)
		s.rsInt.MarkExecuting(e.ID)
		s.stamp(e.ID).EX = int64(s.cycle)
		return
	}
}

// dispatchFP dispatches at most one ready entry from rs into unit,
// computing the result immediately (both operands are already resolved)
// since only its arrival on the CDB is delayed by the pipeline.
func (s *Simulator) dispatchFP(rs *ReservationStation, unit *PipelinedFU) {
	if !unit.CanDispatch() {
		return
	}
	for _, e := range rs.Entries() {
		if !e.Ready() || !s.fresh(e.ID) {
			continue
		}
		unit.Dispatch(s.cycle, computeFPResult(e))
		rs.MarkExecuting(e.ID)
		s.stamp(e.ID).EX = int64(s.cycle)
		return
	}
}

func computeFPResult(e RSEntry) FUResult {
	var v float64
	switch e.Op {
	case OpADDD:
		v = e.Vj.FltVal + e.Vk.FltVal
	case OpSUBD:
		v = e.Vj.FltVal - e.Vk.FltVal
	case OpMULTD:
		v = e.Vj.FltVal * e.Vk.FltVal
	default:
		panic("core: unknown operation in FP unit")
	}
	return FUResult{ID: e.ID, Kind: ROBValueFloat, Flt: v}
}
