package core

// Operand is a reservation-station source operand: exactly one of Tag
// (a ROB slot name, value still in flight) or the concrete Value is
// populated at any time (spec.md §3's RS invariant).
type Operand struct {
	Tag      string // ROB tag, or "" if resolved
	IntVal   int64
	FltVal   float64
	IsFloat  bool
	Resolved bool
}

// IntOperand returns a resolved integer operand.
func IntOperand(v int64) Operand { return Operand{IntVal: v, Resolved: true} }

// FloatOperand returns a resolved floating-point operand.
func FloatOperand(v float64) Operand { return Operand{FltVal: v, IsFloat: true, Resolved: true} }

// TagOperand returns an unresolved operand waiting on a ROB tag.
func TagOperand(tag string, isFloat bool) Operand {
	return Operand{Tag: tag, IsFloat: isFloat}
}

// resolve fills in the operand's value if it is waiting on the given tag.
func (o *Operand) resolveInt(tag string, v int64) {
	if !o.Resolved && o.Tag == tag {
		o.IntVal, o.Resolved, o.Tag = v, true, ""
	}
}

func (o *Operand) resolveFloat(tag string, v float64) {
	if !o.Resolved && o.Tag == tag {
		o.FltVal, o.Resolved, o.Tag = v, true, ""
	}
}

// RSEntry is one reservation-station slot: a renamed, waiting operation.
type RSEntry struct {
	ID        int
	DestTag   string // this instruction's own ROB tag
	Op        Op
	Vj, Vk    Operand
	Executing bool
}

// Ready reports whether both operands are resolved and the entry has not
// already been dispatched to a functional unit.
func (e *RSEntry) Ready() bool {
	return e.Vj.Resolved && e.Vk.Resolved && !e.Executing
}

// ReservationStation is a bounded, FIFO-by-insertion-order pool of
// waiting operations for one functional-unit class.
//
// Grounded on original_source/src/ReservationStation.py: the flat
// 8-field list entry becomes RSEntry, and update()'s tag-for-value
// substitution becomes Broadcast below.
type ReservationStation struct {
	Name    string
	entries []RSEntry
	size    int
}

// NewReservationStation returns an empty station with the given capacity.
func NewReservationStation(name string, size int) *ReservationStation {
	return &ReservationStation{Name: name, size: size}
}

// Full reports whether the station has no free slots.
func (rs *ReservationStation) Full() bool {
	return len(rs.entries) >= rs.size
}

// Add appends a new entry, in program order relative to other Adds.
func (rs *ReservationStation) Add(e RSEntry) {
	rs.entries = append(rs.entries, e)
}

// Entries exposes the live entries in insertion (program) order. Callers
// must not retain the slice across a mutating call.
func (rs *ReservationStation) Entries() []RSEntry {
	return rs.entries
}

// MarkExecuting flags the entry with the given ID as dispatched.
func (rs *ReservationStation) MarkExecuting(id int) {
	for i := range rs.entries {
		if rs.entries[i].ID == id {
			rs.entries[i].Executing = true
			return
		}
	}
}

// Remove deletes the entry with the given ID, if present.
func (rs *ReservationStation) Remove(id int) {
	for i := range rs.entries {
		if rs.entries[i].ID == id {
			rs.entries = append(rs.entries[:i], rs.entries[i+1:]...)
			return
		}
	}
}

// PurgeAfter removes every entry with ID strictly greater than branchID
// (spec.md §4.3 step b).
func (rs *ReservationStation) PurgeAfter(branchID int) {
	kept := rs.entries[:0]
	for _, e := range rs.entries {
		if e.ID <= branchID {
			kept = append(kept, e)
		}
	}
	rs.entries = kept
}

// BroadcastInt resolves any Vj/Vk operand waiting on tag with an integer
// value (spec.md §4.5 step 2).
func (rs *ReservationStation) BroadcastInt(tag string, v int64) {
	for i := range rs.entries {
		rs.entries[i].Vj.resolveInt(tag, v)
		rs.entries[i].Vk.resolveInt(tag, v)
	}
}

// BroadcastFloat resolves any Vj/Vk operand waiting on tag with a float
// value (spec.md §4.5 step 2).
func (rs *ReservationStation) BroadcastFloat(tag string, v float64) {
	for i := range rs.entries {
		rs.entries[i].Vj.resolveFloat(tag, v)
		rs.entries[i].Vk.resolveFloat(tag, v)
	}
}
