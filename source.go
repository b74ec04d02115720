package qgate

import (
	"math/rand/v2"
	"time"
)

/*
Source is the only way randomness enters the core. Measurement outcomes,
oscillation jitter, ambient gate rolls and loader draws all come from it,
so a fixed seed reproduces a whole run.
*/
type Source interface {
	IntN(n int) int
}

// NewSource returns a PCG generator seeded with seed.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewTimeSource seeds from the wall clock, for hosts that do not care
// about reproducibility.
func NewTimeSource() Source {
	return NewSource(uint64(time.Now().UnixNano()))
}

func pick(src Source, states []QuantumState) QuantumState {
	return states[src.IntN(len(states))]
}
