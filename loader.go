package qgate

/*
Loader is the shooter's magazine: it holds the state of the next bubble
to fire. Gates change the loaded state before it leaves, using the same
transition table as entities but without twins.
*/
type Loader struct {
	src   Source
	state QuantumState
}

func NewLoader(src Source) *Loader {
	if src == nil {
		src = NewTimeSource()
	}

	l := &Loader{src: src}
	l.Reload()

	return l
}

// State is the currently loaded bubble state.
func (l *Loader) State() QuantumState {
	return l.state
}

func (l *Loader) ApplyGate(gate Gate) bool {
	next, ok := Transition(l.state, gate)
	l.state = next

	return ok
}

// Fire hands out the loaded state and loads a fresh one.
func (l *Loader) Fire() QuantumState {
	fired := l.state
	l.Reload()

	return fired
}

// Reload draws a new state uniformly from all four.
func (l *Loader) Reload() {
	l.state = pick(l.src, AllStates)
}
