package core

// predictorSize is the number of entries in the branch predictor table
// (spec.md §4.1 step 4: 8 entries).
const predictorSize = 8

// BranchPredictor is a single-bit, 8-entry direct-mapped predictor indexed
// by the low 3 bits of 4×branchID (spec.md's "byte address" aliasing of
// the branch's own instruction ID). Every entry starts predicting taken.
//
// Grounded on original_source/src/BranchUnit.py: its dict-keyed-by-3-bit-
// string BTB, always initialized True, becomes a plain [8]bool here;
// int2BinStr(I) becomes predictorIndex below.
type BranchPredictor struct {
	taken [predictorSize]bool
}

// NewBranchPredictor returns a predictor with every entry predicting taken.
func NewBranchPredictor() *BranchPredictor {
	p := &BranchPredictor{}
	for i := range p.taken {
		p.taken[i] = true
	}
	return p
}

// predictorIndex maps a branch's instruction ID to a table entry via the
// low 3 bits of its 4×ID byte address.
func predictorIndex(branchID int) int {
	return (4 * branchID) & (predictorSize - 1)
}

// Predict returns the current taken/not-taken prediction for branchID.
func (p *BranchPredictor) Predict(branchID int) bool {
	return p.taken[predictorIndex(branchID)]
}

// Update records the actual outcome of branchID, overwriting the table
// entry (spec.md §4.3 step f: a single bit of history, no saturation).
func (p *BranchPredictor) Update(branchID int, taken bool) {
	p.taken[predictorIndex(branchID)] = taken
}

// checkpoint is one saved speculative state, taken when a branch issues.
type checkpoint struct {
	branchID       int
	rat            map[string]string
	otherPath      int // the fetch index not taken if the prediction holds
	predictedTaken bool
}

// CheckpointStack holds one RAT snapshot per in-flight (unresolved)
// branch, in strictly increasing branch-ID order. A mispredict on any
// branch discards it and every younger checkpoint, since those branches
// are on the squashed speculative path.
//
// Grounded on original_source/src/BranchUnit.py's saveRAT/rollBack,
// which push onto and truncate a bounded Python list; maxCopies becomes
// the capacity check in Save.
type CheckpointStack struct {
	entries []checkpoint
	cap     int
}

// NewCheckpointStack returns an empty stack that holds at most capacity
// in-flight branch checkpoints.
func NewCheckpointStack(capacity int) *CheckpointStack {
	return &CheckpointStack{cap: capacity}
}

// Full reports whether the stack has no room for another checkpoint.
func (s *CheckpointStack) Full() bool {
	return len(s.entries) >= s.cap
}

// Save records a RAT snapshot for branchID along with the fetch index of
// the not-predicted path, to restore to on mispredict, and the prediction
// in effect at rename time. Callers must check Full first.
func (s *CheckpointStack) Save(branchID int, rat map[string]string, otherPath int, predictedTaken bool) {
	s.entries = append(s.entries, checkpoint{branchID: branchID, rat: rat, otherPath: otherPath, predictedTaken: predictedTaken})
}

func (s *CheckpointStack) find(branchID int) int {
	for i, c := range s.entries {
		if c.branchID == branchID {
			return i
		}
	}
	return -1
}

// PredictedTaken returns the prediction recorded when branchID was
// renamed. Returns false if no checkpoint exists for branchID.
func (s *CheckpointStack) PredictedTaken(branchID int) bool {
	if i := s.find(branchID); i >= 0 {
		return s.entries[i].predictedTaken
	}
	return false
}

// Rollback discards the checkpoint for branchID and every younger one
// (they belong to instructions on the squashed path), and returns the
// RAT snapshot and alternate fetch target to restore (spec.md §4.3 step a).
// ok is false if no checkpoint for branchID exists.
func (s *CheckpointStack) Rollback(branchID int) (rat map[string]string, otherPath int, ok bool) {
	i := s.find(branchID)
	if i < 0 {
		return nil, 0, false
	}
	c := s.entries[i]
	s.entries = s.entries[:i]
	return c.rat, c.otherPath, true
}

// Resolve discards only the checkpoint for branchID, keeping younger ones,
// used when a branch resolves correctly (spec.md §4.3: no rollback needed).
func (s *CheckpointStack) Resolve(branchID int) {
	if i := s.find(branchID); i >= 0 {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
	}
}
