package qgate

/*
AmbientGates is the unprompted gate source: every tick it rolls once and
a handful of fixed rolls fire a gate. With the default span of 300 the
rolls are 50 and 250 for Z, 100 and 200 for X and 150 for H, so each tick
has a 5 in 301 chance of some gate firing.

It only decides which gate fires; the simulation applies it through the
same path as player input.
*/
type AmbientGates struct {
	src   Source
	span  int
	rolls map[int]Gate
}

const DefaultAmbientSpan = 300

func NewAmbientGates(src Source, span int) *AmbientGates {
	if src == nil {
		src = NewTimeSource()
	}

	if span < 6 {
		span = DefaultAmbientSpan
	}

	step := span / 6

	return &AmbientGates{
		src:  src,
		span: span,
		rolls: map[int]Gate{
			step:     Z,
			2 * step: X,
			3 * step: H,
			4 * step: X,
			5 * step: Z,
		},
	}
}

// Next rolls for this tick and reports the gate to apply, if any.
func (a *AmbientGates) Next() (Gate, bool) {
	gate, ok := a.rolls[a.src.IntN(a.span+1)]
	return gate, ok
}
