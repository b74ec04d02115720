// entity.go
package qgate

import "github.com/google/uuid"

// Vec is an opaque 2D position. The core only reads it to place twins,
// reset collapsed entities and hand it to the collision predicate.
type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

/*
Entity is anything with an identity, a position and a quantum state: the
player's ship, a crew member, a hazard. Hazards carry the Null state.

An entity that entered superposition through H owns a twin holding the
paired value. The link is symmetric: the twin points back at its primary,
and no third entity ever holds either of them as a twin. Only the primary
accepts gates; destroying or collapsing the primary retires the twin.
*/
type Entity struct {
	ID       string
	State    QuantumState
	Position Vec
	Health   int

	twin      *Entity
	isTwin    bool
	destroyed bool
}

const DefaultHealth = 100

/*
NewEntity returns a free-standing entity with a fresh ID and no twin. It
does not create a twin even for a superposition state; use Machine.Spawn
for anything that takes gates.
*/
func NewEntity(position Vec, state QuantumState) *Entity {
	return &Entity{
		ID:       uuid.NewString(),
		State:    state,
		Position: position,
		Health:   DefaultHealth,
	}
}

// NewHazard returns a stateless entity used only for collision checks.
func NewHazard(position Vec) *Entity {
	return NewEntity(position, Null)
}

// Twin returns the paired entity, or nil when there is none.
func (e *Entity) Twin() *Entity {
	return e.twin
}

func (e *Entity) HasTwin() bool {
	return e.twin != nil
}

// IsTwin reports whether e was created as another entity's twin.
func (e *Entity) IsTwin() bool {
	return e.isTwin
}

// Primary returns the owner of a twin, or e itself.
func (e *Entity) Primary() *Entity {
	if e.isTwin && e.twin != nil {
		return e.twin
	}

	return e
}

func (e *Entity) IsHazard() bool {
	return e.State == Null
}

func (e *Entity) Destroyed() bool {
	return e.destroyed
}

func (e *Entity) IsSuperposition() bool {
	return e.State.IsSuperposition()
}

// spawnTwin links a new twin holding the paired value of e's state.
func (e *Entity) spawnTwin(position Vec) *Entity {
	e.retireTwin()

	twin := &Entity{
		ID:       uuid.NewString(),
		State:    e.State.Paired(),
		Position: position,
		twin:     e,
		isTwin:   true,
	}
	e.twin = twin

	return twin
}

// retireTwin destroys and unlinks the twin, returning it for bookkeeping.
func (e *Entity) retireTwin() *Entity {
	twin := e.twin
	if twin == nil || e.isTwin {
		return nil
	}

	twin.destroyed = true
	twin.twin = nil
	e.twin = nil

	return twin
}
