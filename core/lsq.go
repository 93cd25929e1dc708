package core

// LSQEntry is one program-ordered memory operation.
type LSQEntry struct {
	ID  int
	Op  Op // OpLD or OpSD
	Imm int64

	Base    Operand // base register operand (always integer)
	Value   Operand // store data operand (SD only; unused for LD)
	Addr    int64
	AddrSet bool

	Dispatched bool // sent to Memory
}

// readyToCompute reports whether the operands needed for address
// computation are known and the address has not yet been computed.
// Spec.md §4.4 step 1 requires both base and data operands resolved
// before a store computes its address; a load only needs its base.
func (e *LSQEntry) readyToCompute() bool {
	if e.AddrSet || !e.Base.Resolved {
		return false
	}
	if e.Op == OpSD {
		return e.Value.Resolved
	}
	return true
}

// readyForMemory reports whether the entry can be sent to the memory
// port: address known, and (for stores) data known.
func (e *LSQEntry) readyForMemory() bool {
	if !e.AddrSet || e.Dispatched {
		return false
	}
	if e.Op == OpSD {
		return e.Value.Resolved
	}
	return true
}

// LoadStoreQueue is the program-ordered memory-operation queue: it
// computes effective addresses, forwards store data to dependent loads,
// and dispatches to the single-ported Memory.
//
// Grounded on original_source/src/LdStQ.py: doForwards/issueReadyLoad/
// issueReadyStore/computeAddress become AdvanceAddressing/TryForward/
// NextLoadToDispatch/StoreAt below; the "walk backward from the load for the youngest
// matching store" rule is carried over exactly (spec.md §4.4 step 2).
type LoadStoreQueue struct {
	size      int
	entries   []LSQEntry
	output    []FUResult // completed loads awaiting the CDB
	outputCap int
}

// NewLoadStoreQueue returns an empty queue with the given entry capacity
// and completed-load output-buffer capacity (the input file's
// LoadStoreUnit line's third token — spec.md §6.2).
func NewLoadStoreQueue(size, outputCap int) *LoadStoreQueue {
	return &LoadStoreQueue{size: size, outputCap: outputCap}
}

// OutputFull reports whether the completed-load buffer has no room for
// another forwarded or memory-returned value.
func (q *LoadStoreQueue) OutputFull() bool {
	return q.outputCap > 0 && len(q.output) >= q.outputCap
}

// Full reports whether the queue has no free slots.
func (q *LoadStoreQueue) Full() bool {
	return len(q.entries) >= q.size
}

// Add appends a new memory operation at the tail.
func (q *LoadStoreQueue) Add(e LSQEntry) {
	q.entries = append(q.entries, e)
}

// Entries exposes the live entries in program order.
func (q *LoadStoreQueue) Entries() []LSQEntry {
	return q.entries
}

// HasPendingStoreTo reports whether any store in the queue has the given
// already-computed address and data that has not yet arrived — used by Issue to stall admission of a new
// load per spec.md §4.1 step 5.
func (q *LoadStoreQueue) HasPendingStoreTo(addr int64) bool {
	for _, e := range q.entries {
		if e.Op == OpSD && e.AddrSet && e.Addr == addr && !e.Value.Resolved {
			return true
		}
	}
	return false
}

// BroadcastInt resolves any Base operand waiting on tag. Base registers
// are always integer (R-registers); LD/SD target F-registers only, so
// the store data operand is resolved exclusively via BroadcastFloat.
func (q *LoadStoreQueue) BroadcastInt(tag string, v int64) {
	for i := range q.entries {
		q.entries[i].Base.resolveInt(tag, v)
	}
}

// BroadcastFloat resolves any store-data operand waiting on tag.
func (q *LoadStoreQueue) BroadcastFloat(tag string, v float64) {
	for i := range q.entries {
		if q.entries[i].Op == OpSD {
			q.entries[i].Value.resolveFloat(tag, v)
		}
	}
}

// AdvanceAddressing computes the effective address of every entry ready
// to do so (spec.md §4.4 step 1) and returns the IDs computed this call,
// so the caller can stamp their execute cycle.
func (q *LoadStoreQueue) AdvanceAddressing() []int {
	var computed []int
	for i := range q.entries {
		e := &q.entries[i]
		if e.readyToCompute() {
			e.Addr = e.Base.IntVal + e.Imm
			e.AddrSet = true
			computed = append(computed, e.ID)
		}
	}
	return computed
}

// TryForward attempts store-to-load forwarding for every load whose
// address is known and which has not yet been dispatched. It walks
// backward from each load toward older entries and forwards from the
// youngest matching store if that store's data has arrived; if a
// matching store exists but its data is still pending, the load stalls
// (spec.md §4.4 step 2). Returns the IDs of loads that were forwarded and
// removed this cycle.
func (q *LoadStoreQueue) TryForward() []int {
	var forwarded []int
	var remaining []LSQEntry
	for i := 0; i < len(q.entries); i++ {
		e := q.entries[i]
		if e.Op == OpLD && e.AddrSet && !e.Dispatched {
			if ok, val, stall := q.matchingStore(i); ok && !q.OutputFull() {
				q.output = append(q.output, FUResult{ID: e.ID, Kind: ROBValueFloat, Flt: val})
				forwarded = append(forwarded, e.ID)
				continue
			} else if stall || ok {
				remaining = append(remaining, e)
				continue
			}
		}
		remaining = append(remaining, e)
	}
	q.entries = remaining
	return forwarded
}

// matchingStore walks backward from position idx looking for the
// youngest prior SD with the same computed address. ok is true if that
// store's data has arrived (val holds it); stall is true if a matching
// store exists but its data has not yet arrived.
func (q *LoadStoreQueue) matchingStore(idx int) (ok bool, val float64, stall bool) {
	load := q.entries[idx]
	for j := idx - 1; j >= 0; j-- {
		s := q.entries[j]
		if s.Op != OpSD || !s.AddrSet || s.Addr != load.Addr {
			continue
		}
		if s.Value.Resolved {
			return true, s.Value.FltVal, false
		}
		return false, 0, true
	}
	return false, 0, false
}

// NextLoadToDispatch returns the oldest not-yet-dispatched, ready load, if
// any (spec.md §4.4 step 3). The caller is responsible for checking the
// memory port is idle before calling, and must call MarkDispatched once
// it accepts the entry.
func (q *LoadStoreQueue) NextLoadToDispatch() (LSQEntry, bool) {
	for _, e := range q.entries {
		if e.Op == OpLD && e.readyForMemory() {
			return e, true
		}
	}
	return LSQEntry{}, false
}

// StoreAt returns the entry for id if it is a not-yet-dispatched store
// with a computed address, used to dispatch the store at the ROB head on
// commit (spec.md §4.6).
func (q *LoadStoreQueue) StoreAt(id int) (LSQEntry, bool) {
	for _, e := range q.entries {
		if e.Op == OpSD && e.ID == id && e.AddrSet && !e.Dispatched {
			return e, true
		}
	}
	return LSQEntry{}, false
}

// MarkDispatched flags the entry with the given ID as sent to Memory.
func (q *LoadStoreQueue) MarkDispatched(id int) {
	for i := range q.entries {
		if q.entries[i].ID == id {
			q.entries[i].Dispatched = true
			return
		}
	}
}

// CompleteLoad records a load's value, ready for writeback, and removes
// it from the queue. LD always targets an F-register (spec.md §6.5), so
// the loaded value is always floating point.
func (q *LoadStoreQueue) CompleteLoad(id int, value float64) {
	q.output = append(q.output, FUResult{ID: id, Kind: ROBValueFloat, Flt: value})
	q.Remove(id)
}

// CompleteStore removes a store from the queue silently (stores never
// broadcast on the CDB).
func (q *LoadStoreQueue) CompleteStore(id int) {
	q.Remove(id)
}

// Remove deletes the entry with the given ID, if present.
func (q *LoadStoreQueue) Remove(id int) {
	for i := range q.entries {
		if q.entries[i].ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

// HasResult reports whether a completed load is waiting for the CDB.
func (q *LoadStoreQueue) HasResult() bool {
	return len(q.output) > 0
}

// PeekResult returns the oldest completed load without removing it.
func (q *LoadStoreQueue) PeekResult() FUResult {
	return q.output[0]
}

// PopResult removes and returns the oldest completed load.
func (q *LoadStoreQueue) PopResult() FUResult {
	r := q.output[0]
	q.output = q.output[1:]
	return r
}

// PurgeAfter discards every entry and buffered result with ID strictly
// greater than branchID (spec.md §4.3 step d).
func (q *LoadStoreQueue) PurgeAfter(branchID int) {
	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.ID <= branchID {
			kept = append(kept, e)
		}
	}
	q.entries = kept

	keptOut := q.output[:0]
	for _, r := range q.output {
		if r.ID <= branchID {
			keptOut = append(keptOut, r)
		}
	}
	q.output = keptOut
}
