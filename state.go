package qgate

import "fmt"

/*
QuantumState is the discrete state an entity or grid occupant is in.
Zero and One are the basis states, Plus and Minus the superposition
states. Null is reserved for hazards, which carry geometry but no state.
*/
type QuantumState uint8

const (
	Null QuantumState = iota
	Zero
	One
	Plus
	Minus
)

var stateNames = map[QuantumState]string{
	Null:  "|∅>",
	Zero:  "|0>",
	One:   "|1>",
	Plus:  "|+>",
	Minus: "|->",
}

// BasisStates and SuperpositionStates are the two partitions of the
// non-null state space, in the order random draws index into them.
var (
	BasisStates         = []QuantumState{Zero, One}
	SuperpositionStates = []QuantumState{Plus, Minus}
	AllStates           = []QuantumState{Zero, One, Plus, Minus}
)

func (s QuantumState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}

	return fmt.Sprintf("QuantumState(%d)", uint8(s))
}

// IsSuperposition reports whether s is Plus or Minus.
func (s QuantumState) IsSuperposition() bool {
	return s == Plus || s == Minus
}

// IsBasis reports whether s is Zero or One.
func (s QuantumState) IsBasis() bool {
	return s == Zero || s == One
}

/*
Paired returns the superposition value a twin holds opposite s.
For anything that is not a superposition state it returns s unchanged.
*/
func (s QuantumState) Paired() QuantumState {
	switch s {
	case Plus:
		return Minus
	case Minus:
		return Plus
	default:
		return s
	}
}

// ParseState accepts the ket notation used on screen ("|0>") or the bare
// symbol ("0", "1", "+", "-").
func ParseState(raw string) (QuantumState, error) {
	switch raw {
	case "|0>", "0":
		return Zero, nil
	case "|1>", "1":
		return One, nil
	case "|+>", "+":
		return Plus, nil
	case "|->", "-":
		return Minus, nil
	}

	return Null, fmt.Errorf("%w: %q", ErrUnknownState, raw)
}
