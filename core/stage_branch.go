package core

// stageBranchCheck inspects the integer ALU's output buffer for
// branch-typed results at the head and resolves each one in turn
// (spec.md §4.3). It runs between EXECUTE and MEMORY so a mispredict
// squashes speculative memory operations before they can touch state.
func (s *Simulator) stageBranchCheck() {
	for s.intALU.HasResult() {
		r := s.intALU.PeekResult()
		if r.Kind != ROBValueBool {
			return // head is an arithmetic result; leave it for writeback
		}
		s.intALU.PopResult()
		s.resolveBranch(r)
	}
}

func (s *Simulator) resolveBranch(r FUResult) {
	predicted := s.checkpoints.PredictedTaken(r.ID)
	if tag, ok := s.rob.TagForID(r.ID); ok {
		s.rob.SetBool(tag, r.Bool)
	}
	s.rsInt.Remove(r.ID)
	s.stamp(r.ID).WB = int64(s.cycle)

	if r.Bool == predicted {
		s.checkpoints.Resolve(r.ID)
		return
	}

	rat, otherPath, ok := s.checkpoints.Rollback(r.ID)
	if !ok {
		panic("core: mispredict rollback with no checkpoint")
	}
	s.mispredicts++

	s.rat.Restore(rat)
	s.rsInt.PurgeAfter(r.ID)
	s.rsFPAdd.PurgeAfter(r.ID)
	s.rsFPMul.PurgeAfter(r.ID)
	s.intALU.PurgeAfter(r.ID)
	s.fpAdder.PurgeAfter(r.ID)
	s.fpMultiplier.PurgeAfter(r.ID)
	s.rob.PurgeAfter(r.ID)
	s.lsq.PurgeAfter(r.ID)
	s.memPort.PurgeAfter(r.ID)
	s.iq.JumpTo(otherPath)
	s.predictor.Update(r.ID, r.Bool)
	s.purgeStampsAfter(r.ID)
}
