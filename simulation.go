// simulation.go
package qgate

import (
	"fmt"
	"math"
	"slices"

	"github.com/theapemachine/errnie"
)

// GateCommand is one gate the input layer issued for one entity this tick.
type GateCommand struct {
	EntityID string
	Gate     Gate
}

// PlaceRequest is a shot that reached the grid at (X, Y).
type PlaceRequest struct {
	X     float64
	Y     float64
	State QuantumState
}

// TickInput is everything the host hands the core for one frame.
type TickInput struct {
	Gates []GateCommand
	Shots []PlaceRequest
	// Elapsed is how many ticks this frame stands for; zero means one.
	Elapsed int
}

// TickReport is everything the host needs to update score and HUD.
type TickReport struct {
	Tick        uint64
	Ambient     Gate
	ScoreDelta  int
	Placed      []*Occupant
	Rejected    int
	Resolutions []Resolution
	Collapses   map[string]CollapseOutcome
	Destroyed   []string
	Unknown     []string
	// Rescued and CrewHits name the crew members picked up or run into.
	Rescued  []string
	CrewHits []string
}

/*
Simulation is the explicit context one game runs in: the machine and grid,
every live entity and hazard, the score and the tick counter. The host
constructs one per game and drives it with Step once per frame. Nothing in
the core lives at package scope.
*/
type Simulation struct {
	cfg     *Config
	src     Source
	machine *Machine
	grid    *MatchGrid
	loader  *Loader
	ambient *AmbientGates

	entities map[string]*Entity
	order    []*Entity
	hazards  []*Entity
	crew     []*Entity

	score   int
	tick    uint64
	metrics *Metrics
	journal *Journal
}

type SimulationOption func(*simulationOptions)

type simulationOptions struct {
	src      Source
	collides CollisionFunc
	placer   Placer
}

// WithSource fixes the random source, overriding the configured seed.
func WithSource(src Source) SimulationOption {
	return func(o *simulationOptions) {
		o.src = src
	}
}

// WithCollisionFunc replaces the radius check built from the config.
func WithCollisionFunc(collides CollisionFunc) SimulationOption {
	return func(o *simulationOptions) {
		o.collides = collides
	}
}

// WithFieldPlacer replaces the split-field placer built from the config.
func WithFieldPlacer(placer Placer) SimulationOption {
	return func(o *simulationOptions) {
		o.placer = placer
	}
}

// Within is a collision predicate treating two positions as overlapping
// when they are no more than radius apart.
func Within(radius float64) CollisionFunc {
	return func(a, b Vec) bool {
		return math.Hypot(a.X-b.X, a.Y-b.Y) <= radius
	}
}

func NewSimulation(cfg *Config, opts ...SimulationOption) (*Simulation, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new simulation: %w", err)
	}

	options := simulationOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if options.src == nil {
		if cfg.Seed != nil {
			options.src = NewSource(*cfg.Seed)
		} else {
			options.src = NewTimeSource()
		}
	}

	if options.collides == nil && cfg.CollisionRadius > 0 {
		options.collides = Within(cfg.CollisionRadius)
	}

	if options.placer == nil && cfg.Field != nil {
		options.placer = *cfg.Field
	}

	metrics := NewMetrics()
	journal := NewJournal(cfg.JournalCapacity)

	grid, err := NewMatchGrid(cfg.Grid, options.src, WithGridMetrics(metrics), WithGridJournal(journal))
	if err != nil {
		return nil, fmt.Errorf("new simulation: %w", err)
	}

	if err := grid.Populate(cfg.Grid.InitialRows); err != nil {
		return nil, fmt.Errorf("new simulation: %w", err)
	}

	machineOpts := []MachineOption{
		WithTwinPolicy(cfg.TwinPolicy),
		WithMetrics(metrics),
		WithJournal(journal),
	}

	if options.collides != nil {
		machineOpts = append(machineOpts, WithCollision(options.collides))
	}

	if options.placer != nil {
		machineOpts = append(machineOpts, WithPlacer(options.placer))
	}

	sim := &Simulation{
		cfg:      cfg,
		src:      options.src,
		machine:  NewMachine(options.src, machineOpts...),
		grid:     grid,
		loader:   NewLoader(options.src),
		entities: make(map[string]*Entity),
		metrics:  metrics,
		journal:  journal,
	}

	if cfg.Ambient.Enabled {
		sim.ambient = NewAmbientGates(options.src, cfg.Ambient.Span)
	}

	errnie.Info(
		"NewSimulation - grid %dx%d, twin policy %s, ambient %v",
		cfg.Grid.Rows, cfg.Grid.Cols, cfg.TwinPolicy, cfg.Ambient.Enabled,
	)

	return sim, nil
}

func (s *Simulation) Machine() *Machine { return s.machine }
func (s *Simulation) Grid() *MatchGrid  { return s.grid }
func (s *Simulation) Loader() *Loader   { return s.loader }
func (s *Simulation) Metrics() *Metrics { return s.metrics }
func (s *Simulation) Journal() *Journal { return s.journal }
func (s *Simulation) Score() int        { return s.score }
func (s *Simulation) Tick() uint64      { return s.tick }

// Entities, Hazards and Crew return copies; the registry compacts its own
// slices on Remove.
func (s *Simulation) Entities() []*Entity { return slices.Clone(s.order) }
func (s *Simulation) Hazards() []*Entity  { return slices.Clone(s.hazards) }
func (s *Simulation) Crew() []*Entity     { return slices.Clone(s.crew) }

// Spawn adds a controllable entity: one that receives gates and is
// checked against hazards every tick. A superposed spawn comes with its
// twin already placed.
func (s *Simulation) Spawn(position Vec, state QuantumState) *Entity {
	e := s.machine.Spawn(position, state)
	s.entities[e.ID] = e
	s.order = append(s.order, e)

	return e
}

func (s *Simulation) AddHazard(position Vec) *Entity {
	hazard := NewHazard(position)
	s.hazards = append(s.hazards, hazard)

	return hazard
}

// AddCrew drops a stranded crew member in a fixed state. Crew take no
// gates; a ship touching one rescues it if their states match.
func (s *Simulation) AddCrew(position Vec, state QuantumState) *Entity {
	member := NewEntity(position, state)
	s.crew = append(s.crew, member)

	return member
}

// Entity looks up a live controllable entity.
func (s *Simulation) Entity(id string) (*Entity, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}

	return e, nil
}

// Remove drops an entity, hazard or crew member, for things that scroll
// off the field.
func (s *Simulation) Remove(id string) error {
	if e, ok := s.entities[id]; ok {
		delete(s.entities, id)
		s.order = removeEntity(s.order, e)
		return nil
	}

	for _, hazard := range s.hazards {
		if hazard.ID == id {
			s.hazards = removeEntity(s.hazards, hazard)
			return nil
		}
	}

	for _, member := range s.crew {
		if member.ID == id {
			s.crew = removeEntity(s.crew, member)
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnknownEntity, id)
}

func removeEntity(list []*Entity, target *Entity) []*Entity {
	out := list[:0]
	for _, e := range list {
		if e != target {
			out = append(out, e)
		}
	}

	clear(list[len(out):])

	return out
}

// Shoot fires the loaded bubble at (x, y) and resolves any match it makes.
func (s *Simulation) Shoot(x, y float64) (*Occupant, Resolution) {
	occupant, resolution := s.place(PlaceRequest{X: x, Y: y, State: s.loader.Fire()})
	s.score += resolution.ScoreDelta

	return occupant, resolution
}

func (s *Simulation) place(req PlaceRequest) (*Occupant, Resolution) {
	occupant := s.grid.Place(req.X, req.Y, req.State)
	if occupant == nil {
		return nil, Resolution{Popped: []Cell{}}
	}

	resolution, err := s.grid.Resolve(occupant.Cell)
	if err != nil {
		errnie.Info("resolve after place at %s: %v", occupant.Cell, err)
		return occupant, Resolution{Popped: []Cell{}}
	}

	return occupant, resolution
}

/*
Step advances the game by one frame: player gates, then the ambient gate,
then shots, then crew pickups, then hazard collisions, then free
oscillation. Collision is
where measurement happens: a superposed entity (or its twin) touching a
hazard is measured and survives only if its collapsed position is clear;
a basis-state entity touching a hazard is destroyed outright.
*/
func (s *Simulation) Step(in TickInput) TickReport {
	s.journal.SetTick(s.tick)

	report := TickReport{
		Tick:      s.tick,
		Collapses: map[string]CollapseOutcome{},
	}

	for _, cmd := range in.Gates {
		e, ok := s.entities[cmd.EntityID]
		if !ok {
			report.Unknown = append(report.Unknown, cmd.EntityID)
			continue
		}

		s.machine.ApplyGate(e, cmd.Gate)
	}

	if s.ambient != nil {
		if gate, ok := s.ambient.Next(); ok {
			report.Ambient = gate
			s.metrics.AmbientGates++

			for _, e := range s.order {
				s.machine.ApplyGate(e, gate)
			}
		}
	}

	for _, shot := range in.Shots {
		occupant, resolution := s.place(shot)
		if occupant == nil {
			report.Rejected++
			continue
		}

		report.Placed = append(report.Placed, occupant)
		if resolution.ScoreDelta > 0 {
			report.ScoreDelta += resolution.ScoreDelta
			report.Resolutions = append(report.Resolutions, resolution)
		}
	}

	s.rescue(&report)

	for _, e := range s.order {
		if e.destroyed || !s.machine.Collides(e, s.hazards) {
			continue
		}

		if e.IsSuperposition() {
			outcome := s.machine.Measure(e, s.hazards)
			report.Collapses[e.ID] = outcome

			if outcome.Destroyed {
				report.Destroyed = append(report.Destroyed, e.ID)
			}

			continue
		}

		s.machine.Destroy(e)
		report.Destroyed = append(report.Destroyed, e.ID)
	}

	for _, id := range report.Destroyed {
		_ = s.Remove(id)
	}

	elapsed := in.Elapsed
	if elapsed <= 0 {
		elapsed = 1
	}
	s.grid.TickOscillation(elapsed)

	s.score += report.ScoreDelta
	s.tick++

	return report
}

/*
rescue settles every crew member a ship or its twin is touching. The
touching body's state decides it: a match takes the crew aboard and
scores, a mismatch still removes the crew but damages the ship. Each
crew member is settled by the first ship that reaches it.
*/
func (s *Simulation) rescue(report *TickReport) {
	if len(s.crew) == 0 {
		return
	}

	kept := s.crew[:0]

	for _, member := range s.crew {
		var ship, body *Entity

		for _, e := range s.order {
			if e.destroyed {
				continue
			}

			if body = s.machine.Contact(e, member); body != nil {
				ship = e
				break
			}
		}

		if ship == nil {
			kept = append(kept, member)
			continue
		}

		if body.State == member.State {
			s.metrics.Rescued++
			s.journal.Record(Event{Kind: EventRescued, SubjectID: member.ID, From: member.State, To: body.State})
			report.Rescued = append(report.Rescued, member.ID)
			report.ScoreDelta += s.cfg.Rescue.Score
			errnie.Info("rescue - crew %s picked up by %s in %s", member.ID, ship.ID, body.State)
			continue
		}

		s.metrics.CrewHits++
		s.journal.Record(Event{Kind: EventCrewHit, SubjectID: ship.ID, From: body.State, To: member.State})
		report.CrewHits = append(report.CrewHits, member.ID)

		if s.machine.Damage(ship, s.cfg.Rescue.Damage) {
			report.Destroyed = append(report.Destroyed, ship.ID)
		}
	}

	clear(s.crew[len(kept):])
	s.crew = kept
}

// Snapshot captures the frame for the renderer.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:     s.tick,
		Score:    s.score,
		Loaded:   s.loader.State(),
		Entities: make([]EntityView, 0, len(s.order)),
		Hazards:  make([]Vec, 0, len(s.hazards)),
		Crew:     make([]EntityView, 0, len(s.crew)),
		Grid:     s.grid.Snapshot(),
	}

	for _, e := range s.order {
		snap.Entities = append(snap.Entities, viewOf(e))
	}

	for _, hazard := range s.hazards {
		snap.Hazards = append(snap.Hazards, hazard.Position)
	}

	for _, member := range s.crew {
		snap.Crew = append(snap.Crew, viewOf(member))
	}

	return snap
}
