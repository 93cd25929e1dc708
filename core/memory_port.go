package core

// memoryOp is one in-flight request to the memory port.
type memoryOp struct {
	id     int
	isLoad bool
	addr   int64
	value  float64 // store data; unused for loads
}

// MemoryPort models the single-ported Memory: at most one outstanding
// load or store at a time, completing latency cycles after dispatch. The
// actual read or write happens at completion, not at dispatch, since
// nothing else can observe or mutate Memory while the port is busy.
type MemoryPort struct {
	latency   uint64
	busy      bool
	doneCycle uint64
	op        memoryOp
}

// NewMemoryPort returns an idle port with the given per-operation latency.
func NewMemoryPort(latency uint64) *MemoryPort {
	return &MemoryPort{latency: latency}
}

// Idle reports whether the port can accept a new dispatch this cycle.
func (p *MemoryPort) Idle() bool {
	return !p.busy
}

// Quiescent reports whether the port has no outstanding operation.
func (p *MemoryPort) Quiescent() bool {
	return !p.busy
}

// Dispatch begins op, completing latency cycles after the given cycle.
func (p *MemoryPort) Dispatch(cycle uint64, op memoryOp) {
	p.busy = true
	p.op = op
	p.doneCycle = cycle + p.latency
}

// Advance performs the actual memory access and hands the result to lsq
// if op completes exactly at cycle (spec.md §4.4 step 4).
func (p *MemoryPort) Advance(cycle uint64, mem *Memory, lsq *LoadStoreQueue) {
	if !p.busy || cycle != p.doneCycle {
		return
	}
	if p.op.isLoad {
		v, err := mem.ReadFloat(p.op.addr)
		if err != nil {
			panic(err)
		}
		lsq.CompleteLoad(p.op.id, v)
	} else {
		if err := mem.WriteFloat(p.op.addr, p.op.value); err != nil {
			panic(err)
		}
		lsq.CompleteStore(p.op.id)
	}
	p.busy = false
}

// PurgeAfter discards the in-flight operation if it belongs to a squashed
// instruction (spec.md §4.3 step d applies to the memory port as well as
// the LSQ entry it was dispatched from).
func (p *MemoryPort) PurgeAfter(branchID int) {
	if p.busy && p.op.id > branchID {
		p.busy = false
	}
}
