package core

// cdbSource identifies which functional unit produced a CDB candidate,
// for the class-priority tiebreak of spec.md §4.5.
type cdbSource int

const (
	sourceInt cdbSource = iota
	sourceFPAdder
	sourceFPMultiplier
	sourceMemory
)

type cdbCandidate struct {
	source cdbSource
	result FUResult
}

// stageWriteback selects at most one completed result to broadcast this
// cycle: the smallest instruction ID among the heads of every unit's
// output buffer, ties broken by class priority integer > FP adder > FP
// multiplier > memory (spec.md §4.5).
func (s *Simulator) stageWriteback() {
	var cands []cdbCandidate

	if s.intALU.HasResult() {
		if r := s.intALU.PeekResult(); r.Kind != ROBValueBool {
			cands = append(cands, cdbCandidate{sourceInt, r})
		}
	}
	if s.fpAdder.HasResult() {
		cands = append(cands, cdbCandidate{sourceFPAdder, s.fpAdder.PeekResult()})
	}
	if s.fpMultiplier.HasResult() {
		cands = append(cands, cdbCandidate{sourceFPMultiplier, s.fpMultiplier.PeekResult()})
	}
	if s.lsq.HasResult() {
		cands = append(cands, cdbCandidate{sourceMemory, s.lsq.PeekResult()})
	}
	if len(cands) == 0 {
		return
	}

	best := cands[0]
	for _, c := range cands[1:] {
		if c.result.ID < best.result.ID || (c.result.ID == best.result.ID && c.source < best.source) {
			best = c
		}
	}

	if !s.fresh(best.result.ID) {
		return
	}

	switch best.source {
	case sourceInt:
		s.intALU.PopResult()
		s.rsInt.Remove(best.result.ID)
	case sourceFPAdder:
		s.fpAdder.PopResult()
		s.rsFPAdd.Remove(best.result.ID)
	case sourceFPMultiplier:
		s.fpMultiplier.PopResult()
		s.rsFPMul.Remove(best.result.ID)
	case sourceMemory:
		s.lsq.PopResult()
	}

	tag, ok := s.rob.TagForID(best.result.ID)
	if !ok {
		return
	}

	switch best.result.Kind {
	case ROBValueInt:
		s.rob.SetInt(tag, best.result.Int)
		s.broadcastInt(tag, best.result.Int)
	case ROBValueFloat:
		s.rob.SetFloat(tag, best.result.Flt)
		s.broadcastFloat(tag, best.result.Flt)
	}

	s.stamp(best.result.ID).WB = int64(s.cycle)
}

func (s *Simulator) broadcastInt(tag string, v int64) {
	s.rsInt.BroadcastInt(tag, v)
	s.rsFPAdd.BroadcastInt(tag, v)
	s.rsFPMul.BroadcastInt(tag, v)
	s.lsq.BroadcastInt(tag, v)
}

func (s *Simulator) broadcastFloat(tag string, v float64) {
	s.rsInt.BroadcastFloat(tag, v)
	s.rsFPAdd.BroadcastFloat(tag, v)
	s.rsFPMul.BroadcastFloat(tag, v)
	s.lsq.BroadcastFloat(tag, v)
}
