package core

// stageCommit pops the ROB head if it is done and the freshness rule
// allows it, writes results into architectural state, and retires the
// instruction (spec.md §4.6).
//
// A store must reach Memory no later than its own commit (spec.md §4.6,
// §9): if it has not already been dispatched (e.g. opportunistically in
// stageMemory) and the memory port is busy with something else this
// cycle, commit must stall rather than pop the ROB entry — popping it
// without a guaranteed dispatch would silently drop the write and strand
// the LSQ entry, since nothing re-checks a store once it is no longer at
// the ROB head.
func (s *Simulator) stageCommit() {
	if !s.rob.CanCommit() {
		return
	}
	head := s.rob.Head()
	if !s.fresh(head.ID) {
		return
	}

	if head.Op.IsStore() {
		if e, ok := s.lsq.StoreAt(head.ID); ok {
			if !s.memPort.Idle() {
				return
			}
			s.lsq.MarkDispatched(e.ID)
			s.memPort.Dispatch(s.cycle, memoryOp{id: e.ID, isLoad: false, addr: e.Addr, value: e.Value.FltVal})
		}
	}

	tag := s.rob.HeadTag()
	entry := s.rob.Commit()

	switch {
	case entry.Op.IsStore():
		// already dispatched above, or earlier in stageMemory while it
		// sat at the ROB head; nothing further to do here.
	case entry.Op.IsBranch():
		// no architectural write; the branch unit already updated
		// prediction and (if needed) rolled back in stageBranchCheck.
	default:
		if entry.Dest != "" {
			if s.rat.Get(entry.Dest) == tag {
				s.rat.Set(entry.Dest, entry.Dest)
			}
			if !IsZeroRegister(entry.Dest) {
				if entry.Kind == ROBValueFloat {
					_ = s.arf.WriteFloat(entry.Dest, entry.Flt)
				} else {
					_ = s.arf.WriteInt(entry.Dest, entry.Int)
				}
			}
		}
	}

	s.stamp(entry.ID).COM = int64(s.cycle)
	s.retired++
	s.table = append(s.table, s.buildRow(entry.ID))
}
