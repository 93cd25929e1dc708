package core

// FUResult is one completed functional-unit output, queued for the CDB.
type FUResult struct {
	ID   int
	Kind ROBValueKind
	Int  int64
	Flt  float64
	Bool bool
}

// IntegerALU is the single, non-pipelined integer functional unit. It
// executes ADD, SUB, ADDI, and the boolean comparison for BEQ/BNE (spec.md
// §4.2: "Integer ALU operations... BNE/BEQ (boolean result)").
//
// Grounded on original_source/src/IntegerALU.py: busy()/execute()/
// advanceTime()/getResult() become Idle()/Dispatch()/Advance()/PopResult().
// The Python busy() conjoins "still executing" with "buffer not full" in a
// way that would let new work dispatch into a full buffer; this
// implementation instead blocks dispatch whenever EITHER condition holds,
// which is what spec.md §4.2's "idle units" gate requires.
type IntegerALU struct {
	latency   uint64
	bufferCap int

	active    bool
	activeID  int
	doneCycle uint64
	pending   FUResult

	buffer []FUResult
}

// NewIntegerALU returns a non-pipelined integer ALU with the given
// per-operation latency and output-buffer capacity.
func NewIntegerALU(latency uint64, bufferCap int) *IntegerALU {
	return &IntegerALU{latency: latency, bufferCap: bufferCap}
}

// Idle reports whether the unit can accept a new dispatch this cycle.
func (u *IntegerALU) Idle() bool {
	return !u.active && len(u.buffer) < u.bufferCap
}

// Quiescent reports whether the unit holds no in-flight or buffered work,
// used for the core's termination check.
func (u *IntegerALU) Quiescent() bool {
	return !u.active && len(u.buffer) == 0
}

// Dispatch begins executing op on operands a, b, completing latency
// cycles after the given cycle.
func (u *IntegerALU) Dispatch(cycle uint64, id int, op Op, a, b int64) {
	u.active = true
	u.activeID = id
	u.doneCycle = cycle + u.latency
	switch op {
	case OpADD, OpADDI:
		u.pending = FUResult{ID: id, Kind: ROBValueInt, Int: a + b}
	case OpSUB:
		u.pending = FUResult{ID: id, Kind: ROBValueInt, Int: a - b}
	case OpBEQ:
		u.pending = FUResult{ID: id, Kind: ROBValueBool, Bool: a == b}
	case OpBNE:
		u.pending = FUResult{ID: id, Kind: ROBValueBool, Bool: a != b}
	default:
		panic("core: unknown operation in integer ALU")
	}
}

// Advance moves a just-completed execution into the output buffer.
func (u *IntegerALU) Advance(cycle uint64) {
	if u.active && cycle == u.doneCycle {
		u.buffer = append(u.buffer, u.pending)
		u.active = false
	}
}

// HasResult reports whether the output buffer holds a completed result.
func (u *IntegerALU) HasResult() bool {
	return len(u.buffer) > 0
}

// PeekResult returns the oldest buffered result without removing it.
func (u *IntegerALU) PeekResult() FUResult {
	return u.buffer[0]
}

// PopResult removes and returns the oldest buffered result.
func (u *IntegerALU) PopResult() FUResult {
	r := u.buffer[0]
	u.buffer = u.buffer[1:]
	return r
}

// PurgeAfter discards the active execution and any buffered result with ID
// strictly greater than branchID (spec.md §4.3 step b).
func (u *IntegerALU) PurgeAfter(branchID int) {
	if u.active && u.activeID > branchID {
		u.active = false
	}
	kept := u.buffer[:0]
	for _, r := range u.buffer {
		if r.ID <= branchID {
			kept = append(kept, r)
		}
	}
	u.buffer = kept
}

// pipelineSlot is one in-flight operation inside a pipelined FP unit.
type pipelineSlot struct {
	doneCycle uint64
	result    FUResult
}

// PipelinedFU models the FP adder and FP multiplier: a single physical
// unit that can have up to `depth` operations in flight at once and
// admits at most one new operation per cycle, each completing `latency`
// cycles after dispatch (spec.md §3, §4.2).
//
// Grounded on original_source/src/FPALU.py's "waitlist" (a [schedule,
// result] pair per in-flight op) — translated from its ad hoc two-field
// list into a proper FIFO of pipelineSlot, since completion order always
// matches admission order for a fixed-latency pipeline.
type PipelinedFU struct {
	latency   uint64
	depth     int
	bufferCap int

	inflight []pipelineSlot
	buffer   []FUResult
}

// NewPipelinedFU returns a pipelined FP unit with the given per-operation
// latency, maximum in-flight depth, and output-buffer capacity.
func NewPipelinedFU(latency uint64, depth, bufferCap int) *PipelinedFU {
	return &PipelinedFU{latency: latency, depth: depth, bufferCap: bufferCap}
}

// CanDispatch reports whether a new operation can be admitted this cycle.
func (u *PipelinedFU) CanDispatch() bool {
	return len(u.inflight) < u.depth && len(u.buffer) < u.bufferCap
}

// Quiescent reports whether the unit holds no in-flight or buffered work.
func (u *PipelinedFU) Quiescent() bool {
	return len(u.inflight) == 0 && len(u.buffer) == 0
}

// Dispatch admits a new operation, completing at cycle+latency. The
// result is computed immediately since both operands are already
// resolved at dispatch time; only its arrival on the CDB is delayed.
func (u *PipelinedFU) Dispatch(cycle uint64, result FUResult) {
	u.inflight = append(u.inflight, pipelineSlot{doneCycle: cycle + u.latency, result: result})
}

// Advance moves any operation completing exactly at cycle into the output
// buffer. Because every in-flight operation shares the same latency,
// completions arrive in admission order.
func (u *PipelinedFU) Advance(cycle uint64) {
	for len(u.inflight) > 0 && u.inflight[0].doneCycle == cycle {
		u.buffer = append(u.buffer, u.inflight[0].result)
		u.inflight = u.inflight[1:]
	}
}

// HasResult reports whether the output buffer holds a completed result.
func (u *PipelinedFU) HasResult() bool {
	return len(u.buffer) > 0
}

// PeekResult returns the oldest buffered result without removing it.
func (u *PipelinedFU) PeekResult() FUResult {
	return u.buffer[0]
}

// PopResult removes and returns the oldest buffered result.
func (u *PipelinedFU) PopResult() FUResult {
	r := u.buffer[0]
	u.buffer = u.buffer[1:]
	return r
}

// PurgeAfter discards in-flight and buffered results with ID strictly
// greater than branchID (spec.md §4.3 step b).
func (u *PipelinedFU) PurgeAfter(branchID int) {
	keptFlight := u.inflight[:0]
	for _, s := range u.inflight {
		if s.result.ID <= branchID {
			keptFlight = append(keptFlight, s)
		}
	}
	u.inflight = keptFlight

	keptBuf := u.buffer[:0]
	for _, r := range u.buffer {
		if r.ID <= branchID {
			keptBuf = append(keptBuf, r)
		}
	}
	u.buffer = keptBuf
}
