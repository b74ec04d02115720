// metrics.go
package qgate

/*
Metrics counts what happened over the life of a simulation. The core is
driven by a single writer, so the counters are plain fields; hosts that
read them from another goroutine must take a Snapshot under their own
lock.
*/
type Metrics struct {
	GatesApplied int64
	NoopGates    int64
	AmbientGates int64

	TwinsCreated int64
	TwinsRetired int64

	Collapses     int64
	CollapsedZero int64
	CollapsedOne  int64
	Destroyed     int64

	Rescued  int64
	CrewHits int64

	Placements      int64
	RejectedPlaces  int64
	Matches         int64
	Popped          int64
	OscillationFlip int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Snapshot returns a copy safe to hand to a HUD.
func (m *Metrics) Snapshot() Metrics {
	if m == nil {
		return Metrics{}
	}

	return *m
}

// ZeroRatio is the fraction of collapses that landed on |0>.
func (m *Metrics) ZeroRatio() float64 {
	if m == nil || m.Collapses == 0 {
		return 0
	}

	return float64(m.CollapsedZero) / float64(m.Collapses)
}

func (m *Metrics) recordCollapse(outcome QuantumState) {
	if m == nil {
		return
	}

	m.Collapses++
	if outcome == Zero {
		m.CollapsedZero++
	} else {
		m.CollapsedOne++
	}
}
