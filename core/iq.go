package core

// InstructionQueue holds the static program and the fetch cursor. IDs are
// assigned monotonically at fetch time, not in program order: after a
// branch rollback, the next fetched instruction receives an ID higher
// than any instruction fetched (and possibly squashed) before it.
//
// Grounded on original_source/src/InstructionQueue.py: fetch()/empty()
// with an offset parameter become PC plus a "fetch offset". The branch
// unit redirects fetch through JumpTo, which sets PC directly; nothing
// sets the offset to a non-zero value, so it is always zero.
type InstructionQueue struct {
	program Program

	pc     int // index of the next instruction to fetch
	offset int // offset applied to pc for the *next* fetch only

	nextID int
}

// NewInstructionQueue returns a queue positioned at the start of program.
func NewInstructionQueue(program Program) *InstructionQueue {
	return &InstructionQueue{program: program}
}

// FetchedInstruction is a fetched instruction paired with its assigned ID
// and the program index it was fetched from (needed to resolve a
// branch's displacement relative to its own position).
type FetchedInstruction struct {
	ID   int
	PC   int
	Inst StaticInstruction
}

// Empty reports whether the queue has no more instructions to fetch.
func (q *InstructionQueue) Empty() bool {
	return q.pc+q.offset >= len(q.program)
}

// Peek returns the next instruction to be fetched without consuming it
// or assigning it an ID. The caller must check Empty first.
func (q *InstructionQueue) Peek() StaticInstruction {
	return q.program[q.pc+q.offset]
}

// Fetch returns the next instruction and advances the cursor to the
// sequential fall-through (PC+1). The caller must check Empty first. A
// predicted-taken branch overrides the fall-through with JumpTo before
// the next Fetch.
func (q *InstructionQueue) Fetch() FetchedInstruction {
	idx := q.pc + q.offset
	id := q.nextID
	q.nextID++
	q.pc = idx + 1
	q.offset = 0
	return FetchedInstruction{ID: id, PC: idx, Inst: q.program[idx]}
}

// JumpTo redirects the next Fetch to an absolute instruction index,
// clearing any pending offset. Used both for a predicted-taken branch
// (spec.md §4.1 step 4) and for a mispredict rollback (spec.md §4.3 step e).
func (q *InstructionQueue) JumpTo(index int) {
	q.pc = index
	q.offset = 0
}

// NextFetchIndex returns the instruction index the next Fetch will read,
// without consuming it. Used to record the "other path" target when a
// branch is predicted taken (spec.md §4.1 step 4).
func (q *InstructionQueue) NextFetchIndex() int {
	return q.pc + q.offset
}
