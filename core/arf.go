package core

import "fmt"

// ARF is the committed architectural register file: 32 integer registers
// (R0-R31) and 32 floating-point registers (F0-F31). R0 and F0 are
// read-only zero registers.
//
// Grounded on original_source/src/ARF.py: writes to R0/F0 are rejected
// rather than silently coerced, so that a caller can choose to drop them
// (stage_commit.go does, per spec.md §4.1/§9).
type ARF struct {
	Int   [32]int64
	Float [32]float64
}

// NewARF returns an ARF with every register zeroed.
func NewARF() *ARF {
	return &ARF{}
}

// ReadInt returns the value of integer register r ("R0".."R31").
func (a *ARF) ReadInt(name string) int64 {
	idx := mustRegIndex(name, 'R')
	return a.Int[idx]
}

// ReadFloat returns the value of floating register f ("F0".."F31").
func (a *ARF) ReadFloat(name string) float64 {
	idx := mustRegIndex(name, 'F')
	return a.Float[idx]
}

// WriteInt writes an integer register. Writes to R0 are rejected.
func (a *ARF) WriteInt(name string, value int64) error {
	idx := mustRegIndex(name, 'R')
	if idx == 0 {
		return fmt.Errorf("core: R0 is read-only")
	}
	a.Int[idx] = value
	return nil
}

// WriteFloat writes a floating register. Writes to F0 are rejected.
func (a *ARF) WriteFloat(name string, value float64) error {
	idx := mustRegIndex(name, 'F')
	if idx == 0 {
		return fmt.Errorf("core: F0 is read-only")
	}
	a.Float[idx] = value
	return nil
}

// IsZeroRegister reports whether name is R0 or F0.
func IsZeroRegister(name string) bool {
	if len(name) < 2 {
		return false
	}
	kind := name[0]
	if kind != 'R' && kind != 'F' {
		return false
	}
	return mustRegIndex(name, kind) == 0
}

// mustRegIndex parses the numeric suffix of a register name of the given
// kind ('R' or 'F'). Register names are produced by the config layer and
// validated there; an invalid name here indicates a programmer error, not
// a user input error, so this panics rather than returning an error.
func mustRegIndex(name string, kind byte) int {
	if len(name) < 2 || name[0] != kind {
		panic(fmt.Sprintf("core: malformed register name %q", name))
	}
	n := 0
	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			panic(fmt.Sprintf("core: malformed register name %q", name))
		}
		n = n*10 + int(c-'0')
	}
	if n < 0 || n > 31 {
		panic(fmt.Sprintf("core: register index out of range %q", name))
	}
	return n
}
