// placer.go
package qgate

import "math"

/*
Placer decides where a new twin appears and where an entity lands when
it returns to a basis state. The core never interprets positions beyond
asking a Placer.
*/
type Placer interface {
	TwinPosition(primary Vec, twinState QuantumState) Vec
	BasisPosition(current Vec, state QuantumState) Vec
}

/*
SplitFieldPlacer lays out a playfield split horizontally at Height/2:
the top half belongs to |0> and the bottom half to |1>. A twin keeps its
primary's offset within its own half, mirrored into the other half. An
entity returning to a basis state snaps to Margin below the top of its
half.
*/
type SplitFieldPlacer struct {
	Height float64 `yaml:"height"`
	Margin float64 `yaml:"margin"`
}

func (p SplitFieldPlacer) half() float64 {
	return p.Height / 2
}

func (p SplitFieldPlacer) TwinPosition(primary Vec, twinState QuantumState) Vec {
	half := p.half()
	if half <= 0 {
		return primary
	}

	offset := math.Mod(primary.Y, half)
	if offset < 0 {
		offset += half
	}

	switch twinState {
	case Minus:
		return Vec{X: primary.X, Y: half + offset}
	case Plus:
		return Vec{X: primary.X, Y: offset}
	}

	return primary
}

func (p SplitFieldPlacer) BasisPosition(current Vec, state QuantumState) Vec {
	switch state {
	case Zero:
		return Vec{X: current.X, Y: p.Margin}
	case One:
		return Vec{X: current.X, Y: p.half() + p.Margin}
	}

	return current
}

// Half reports which basis half of the field y lies in.
func (p SplitFieldPlacer) Half(y float64) QuantumState {
	if y < p.half() {
		return Zero
	}

	return One
}
