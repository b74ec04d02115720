// machine.go
package qgate

import (
	"github.com/theapemachine/errnie"
)

// CollisionFunc reports whether two positions overlap. Geometry belongs to
// the host, so the host supplies it.
type CollisionFunc func(a, b Vec) bool

/*
TwinPolicy decides what happens to an existing twin when Z flips its
primary's phase.
*/
type TwinPolicy uint8

const (
	// TwinFlipInPlace flips the twin's value so it stays paired, keeping
	// the same twin entity and position.
	TwinFlipInPlace TwinPolicy = iota
	// TwinRecreate retires the twin and spawns a new one, with a new ID,
	// placed for the primary's new state.
	TwinRecreate
)

func (p TwinPolicy) String() string {
	if p == TwinRecreate {
		return "recreate"
	}

	return "flip-in-place"
}

/*
CollapseOutcome is the result of a measurement. NewState is always a
basis state after a real collapse; Destroyed is set when the collapsed
entity landed on a hazard.
*/
type CollapseOutcome struct {
	NewState  QuantumState
	Destroyed bool
}

/*
Machine applies gates and measurements to entities. It holds no entity
state of its own: everything it changes lives on the Entity it is handed,
so one Machine can drive any number of entities.
*/
type Machine struct {
	src      Source
	placer   Placer
	collides CollisionFunc
	policy   TwinPolicy
	metrics  *Metrics
	journal  *Journal
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

func WithPlacer(placer Placer) MachineOption {
	return func(m *Machine) {
		m.placer = placer
	}
}

func WithCollision(collides CollisionFunc) MachineOption {
	return func(m *Machine) {
		m.collides = collides
	}
}

func WithTwinPolicy(policy TwinPolicy) MachineOption {
	return func(m *Machine) {
		m.policy = policy
	}
}

func WithMetrics(metrics *Metrics) MachineOption {
	return func(m *Machine) {
		if metrics != nil {
			m.metrics = metrics
		}
	}
}

func WithJournal(journal *Journal) MachineOption {
	return func(m *Machine) {
		m.journal = journal
	}
}

// NewMachine returns a Machine drawing from src. A nil src is replaced
// with a clock-seeded one.
func NewMachine(src Source, opts ...MachineOption) *Machine {
	if src == nil {
		src = NewTimeSource()
	}

	m := &Machine{src: src, metrics: NewMetrics()}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

/*
Spawn creates an entity in state. Starting in superposition is the same as
having arrived there through H: the paired twin is created and placed with
it, so twin presence always tracks the state.
*/
func (m *Machine) Spawn(position Vec, state QuantumState) *Entity {
	e := NewEntity(position, state)
	if state.IsSuperposition() {
		m.spawnTwin(e)
	}

	return e
}

/*
ApplyGate transitions e under gate and reports whether anything changed.
Invalid combinations (X in superposition, Z on a basis state) are no-ops,
as is any gate on a twin, a hazard or a destroyed entity. Only e and its
own twin are touched.
*/
func (m *Machine) ApplyGate(e *Entity, gate Gate) bool {
	if e == nil || e.destroyed || e.isTwin || e.IsHazard() {
		return false
	}

	from := e.State
	to, ok := Transition(from, gate)
	if !ok {
		m.metrics.NoopGates++
		return false
	}

	e.State = to
	m.metrics.GatesApplied++
	m.journal.Record(Event{Kind: EventGate, SubjectID: e.ID, Gate: gate, From: from, To: to})

	switch gate {
	case H:
		if to.IsSuperposition() {
			m.spawnTwin(e)
		} else {
			m.retireTwin(e)
			m.settle(e)
		}
	case Z:
		if e.twin != nil {
			m.resyncTwin(e)
		}
	case X:
		m.settle(e)
	}

	return true
}

/*
Measure collapses a superposed entity to Zero or One with equal odds,
retires its twin, then checks the collapsed position against hazards.
Measuring a twin measures its primary. Anything not in superposition is
left alone and reported as surviving.
*/
func (m *Machine) Measure(e *Entity, hazards []*Entity) CollapseOutcome {
	if e == nil {
		return CollapseOutcome{}
	}

	e = e.Primary()
	if e.destroyed || !e.IsSuperposition() {
		return CollapseOutcome{NewState: e.State}
	}

	from := e.State
	outcome := pick(m.src, BasisStates)

	e.State = outcome
	m.metrics.recordCollapse(outcome)
	m.journal.Record(Event{Kind: EventCollapse, SubjectID: e.ID, From: from, To: outcome})

	m.retireTwin(e)
	m.settle(e)

	destroyed := m.hit(e, hazards)
	if destroyed {
		m.Destroy(e)
	}

	errnie.Info("measured %s: %s -> %s, destroyed %v", e.ID, from, outcome, destroyed)

	return CollapseOutcome{NewState: outcome, Destroyed: destroyed}
}

// Collides reports whether e, or its twin, overlaps any live hazard.
func (m *Machine) Collides(e *Entity, hazards []*Entity) bool {
	if e == nil {
		return false
	}

	if m.hit(e, hazards) {
		return true
	}

	return e.twin != nil && m.hit(e.twin, hazards)
}

// Contact returns whichever of e or its twin overlaps other, preferring
// e, or nil when neither does.
func (m *Machine) Contact(e, other *Entity) *Entity {
	if m.collides == nil || e == nil || other == nil || other.destroyed {
		return nil
	}

	if m.collides(e.Position, other.Position) {
		return e
	}

	if e.twin != nil && m.collides(e.twin.Position, other.Position) {
		return e.twin
	}

	return nil
}

// Damage takes amount off e's health and destroys it at zero. It reports
// whether e was destroyed.
func (m *Machine) Damage(e *Entity, amount int) bool {
	if e == nil {
		return false
	}

	e = e.Primary()
	if e.destroyed {
		return false
	}

	e.Health -= amount
	if e.Health > 0 {
		return false
	}

	m.Destroy(e)

	return true
}

// Destroy eliminates e and, through ownership, its twin.
func (m *Machine) Destroy(e *Entity) {
	if e == nil {
		return
	}

	e = e.Primary()
	if e.destroyed {
		return
	}

	m.retireTwin(e)
	e.destroyed = true
	m.metrics.Destroyed++
	m.journal.Record(Event{Kind: EventDestroyed, SubjectID: e.ID, From: e.State, To: e.State})
}

func (m *Machine) hit(e *Entity, hazards []*Entity) bool {
	if m.collides == nil {
		return false
	}

	for _, hazard := range hazards {
		if hazard == nil || hazard.destroyed || hazard == e {
			continue
		}

		if m.collides(e.Position, hazard.Position) {
			return true
		}
	}

	return false
}

func (m *Machine) spawnTwin(e *Entity) {
	position := e.Position
	if m.placer != nil {
		position = m.placer.TwinPosition(e.Position, e.State.Paired())
	}

	twin := e.spawnTwin(position)
	m.metrics.TwinsCreated++
	m.journal.Record(Event{Kind: EventTwinCreated, SubjectID: twin.ID, To: twin.State})
}

func (m *Machine) retireTwin(e *Entity) {
	twin := e.retireTwin()
	if twin == nil {
		return
	}

	m.metrics.TwinsRetired++
	m.journal.Record(Event{Kind: EventTwinRetired, SubjectID: twin.ID, From: twin.State})
}

func (m *Machine) resyncTwin(e *Entity) {
	switch m.policy {
	case TwinRecreate:
		m.retireTwin(e)
		m.spawnTwin(e)
	default:
		e.twin.State = e.State.Paired()
	}
}

// settle moves an entity that has just reached a basis state to where
// the placer says that state lives.
func (m *Machine) settle(e *Entity) {
	if m.placer != nil && e.State.IsBasis() {
		e.Position = m.placer.BasisPosition(e.Position, e.State)
	}
}
