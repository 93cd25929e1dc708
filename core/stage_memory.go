package core

// stageMemory advances address computation and store-to-load forwarding,
// then dispatches to the memory port if it is idle: the oldest ready
// load, or else the store currently at the ROB head (spec.md §4.4).
func (s *Simulator) stageMemory() {
	s.memPort.Advance(s.cycle, s.mem, s.lsq)

	for _, id := range s.lsq.AdvanceAddressing() {
		s.stamp(id).EX = int64(s.cycle)
	}

	// a store becomes committable once its address and data are both
	// known; it has no CDB result, so its ROB entry is marked done here
	// rather than in writeback (spec.md §4.4 step 1, §4.6).
	for _, e := range s.lsq.Entries() {
		if e.Op == OpSD && e.AddrSet && e.Value.Resolved {
			if tag, ok := s.rob.TagForID(e.ID); ok {
				s.rob.MarkDone(tag)
				if st := s.stamp(e.ID); st.WB == unstamped {
					st.WB = int64(s.cycle)
				}
			}
		}
	}

	for _, id := range s.lsq.TryForward() {
		s.stamp(id).Mem = int64(s.cycle)
	}

	if !s.memPort.Idle() {
		return
	}

	if e, ok := s.lsq.NextLoadToDispatch(); ok {
		s.lsq.MarkDispatched(e.ID)
		s.memPort.Dispatch(s.cycle, memoryOp{id: e.ID, isLoad: true, addr: e.Addr})
		s.stamp(e.ID).Mem = int64(s.cycle)
		return
	}

	if s.rob.CanCommit() {
		head := s.rob.Head()
		if head.Op.IsStore() {
			if e, ok := s.lsq.StoreAt(head.ID); ok {
				s.lsq.MarkDispatched(e.ID)
				s.memPort.Dispatch(s.cycle, memoryOp{id: e.ID, isLoad: false, addr: e.Addr, value: e.Value.FltVal})
				s.stamp(e.ID).Mem = int64(s.cycle)
			}
		}
	}
}
