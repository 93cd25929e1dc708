package core

// stageIssue renames and dispatches at most one instruction per cycle
// (spec.md §4.1). Admission is all-or-nothing: if any structural
// precondition is unmet, the instruction is left at the head of the IQ
// and nothing else happens this cycle. Operands are resolved against a
// peeked instruction before the IQ is actually advanced, since fetch
// (and the instruction's ID) only happens once admission is certain.
func (s *Simulator) stageIssue() {
	if s.iq.Empty() {
		return
	}
	inst := s.iq.Peek()
	class := inst.Op.Class()

	if s.rob.Full() {
		s.recordStall(StallROBFull)
		return
	}
	if class == ClassLoadStore {
		if s.lsq.Full() {
			s.recordStall(StallLSQFull)
			return
		}
	} else if s.rsForClass(class).Full() {
		s.recordStall(StallRSFull)
		return
	}
	if inst.Op.IsBranch() && s.checkpoints.Full() {
		s.recordStall(StallCheckpointFull)
		return
	}

	var vj, vk Operand
	var base, value Operand

	switch inst.Op {
	case OpADD, OpSUB, OpADDD, OpSUBD, OpMULTD:
		vj = s.resolveOperand(inst.Src1, inst.Op.IsFloat())
		vk = s.resolveOperand(inst.Src2, inst.Op.IsFloat())
	case OpADDI:
		vj = s.resolveOperand(inst.Src1, false)
		vk = IntOperand(inst.Imm)
	case OpBEQ, OpBNE:
		vj = s.resolveOperand(inst.Src1, false)
		vk = s.resolveOperand(inst.Src2, false)
	case OpLD:
		base = s.resolveOperand(inst.Src2, false)
	case OpSD:
		base = s.resolveOperand(inst.Src2, false)
		value = s.resolveOperand(inst.Src1, true)
	}

	// spec.md §4.1 step 5: a load whose address can already be computed
	// stalls admission if a prior store to that address hasn't produced
	// its data yet.
	if inst.Op.IsLoad() && base.Resolved {
		addr := base.IntVal + inst.Imm
		if s.lsq.HasPendingStoreTo(addr) {
			s.recordStall(StallLSQFull)
			return
		}
	}

	fetched := s.iq.Fetch()
	id := fetched.ID

	dest := ""
	if inst.Op.HasDest() {
		dest = inst.Dest
	}
	tag := s.rob.Admit(id, inst.Op, dest)

	switch class {
	case ClassLoadStore:
		s.lsq.Add(LSQEntry{ID: id, Op: inst.Op, Imm: inst.Imm, Base: base, Value: value})
	default:
		s.rsForClass(class).Add(RSEntry{ID: id, DestTag: tag, Op: inst.Op, Vj: vj, Vk: vk})
	}

	if inst.Op.HasDest() && !IsZeroRegister(dest) {
		s.rat.Set(dest, tag)
	}

	if inst.Op.IsBranch() {
		snapshot := s.rat.Snapshot()
		taken := s.predictor.Predict(id)
		fallthroughIdx := fetched.PC + 1
		targetIdx := fetched.PC + 1 + int(inst.Disp)

		other := targetIdx
		if taken {
			other = fallthroughIdx
			s.iq.JumpTo(targetIdx)
		}
		s.checkpoints.Save(id, snapshot, other, taken)
	}

	s.stamp(id).IS = int64(s.cycle)
}
