package qgate

import (
	"fmt"
	"strings"
)

// Gate is a named transformation applied to a single entity's state.
type Gate uint8

const (
	X Gate = iota + 1
	Z
	H
)

func (g Gate) String() string {
	switch g {
	case X:
		return "X"
	case Z:
		return "Z"
	case H:
		return "H"
	}

	return fmt.Sprintf("Gate(%d)", uint8(g))
}

// ParseGate maps "x", "z" and "h" (any case) onto their gates.
func ParseGate(raw string) (Gate, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "X":
		return X, nil
	case "Z":
		return Z, nil
	case "H":
		return H, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownGate, raw)
}

/*
Transition returns the state reached by applying gate to state, and
whether the gate had any effect.

	Zero --X--> One      One   --X--> Zero
	Plus --Z--> Minus    Minus --Z--> Plus
	Zero --H--> Plus     Plus  --H--> Zero
	One  --H--> Minus    Minus --H--> One

X only acts on basis states and Z only on superposition states. H is a
permutation of all four and is its own inverse. Null never changes.
*/
func Transition(state QuantumState, gate Gate) (QuantumState, bool) {
	switch gate {
	case X:
		switch state {
		case Zero:
			return One, true
		case One:
			return Zero, true
		}
	case Z:
		switch state {
		case Plus:
			return Minus, true
		case Minus:
			return Plus, true
		}
	case H:
		switch state {
		case Zero:
			return Plus, true
		case One:
			return Minus, true
		case Plus:
			return Zero, true
		case Minus:
			return One, true
		}
	}

	return state, false
}
