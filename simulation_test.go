package qgate

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func quietConfig() *Config {
	cfg := NewConfig()
	cfg.Ambient.Enabled = false
	cfg.Grid.InitialRows = 0

	return cfg
}

func TestNewSimulation(t *testing.T) {
	Convey("Given an invalid grid", t, func() {
		cfg := NewConfig()
		cfg.Grid.Cols = 0

		Convey("Then construction fails fast", func() {
			sim, err := NewSimulation(cfg)
			So(sim, ShouldBeNil)
			So(errors.Is(err, ErrInvalidDimensions), ShouldBeTrue)
		})
	})

	Convey("Given the default configuration", t, func() {
		sim, err := NewSimulation(nil, WithSource(NewSource(5)))

		Convey("Then the opening board is populated with basis states", func() {
			So(err, ShouldBeNil)
			So(sim.Grid().Len(), ShouldEqual, 50)
			So(sim.Score(), ShouldEqual, 0)
			So(sim.Tick(), ShouldEqual, uint64(0))
		})
	})
}

func TestSimulationStep(t *testing.T) {
	Convey("Given a quiet simulation with a ship on the |0> half", t, func() {
		sim, err := NewSimulation(quietConfig(), WithSource(&fixedSource{values: []int{0}}))
		So(err, ShouldBeNil)

		ship := sim.Spawn(Vec{X: 100, Y: 160}, Zero)

		Convey("When the player issues H", func() {
			report := sim.Step(TickInput{Gates: []GateCommand{{EntityID: ship.ID, Gate: H}}})

			Convey("Then the ship splits across both halves", func() {
				So(report.Tick, ShouldEqual, uint64(0))
				So(ship.State, ShouldEqual, Plus)
				So(ship.Twin().Position, ShouldResemble, Vec{X: 100, Y: 480})
				So(sim.Tick(), ShouldEqual, uint64(1))

				snap := sim.Snapshot()
				So(snap.Entities, ShouldHaveLength, 1)
				So(snap.Entities[0].HasTwin, ShouldBeTrue)
				So(snap.Entities[0].TwinState, ShouldEqual, Minus)
			})

			Convey("When a hazard touches the twin", func() {
				sim.AddHazard(Vec{X: 100, Y: 480})
				report := sim.Step(TickInput{})

				Convey("Then the ship is measured and survives on the clear half", func() {
					outcome, ok := report.Collapses[ship.ID]
					So(ok, ShouldBeTrue)
					So(outcome, ShouldResemble, CollapseOutcome{NewState: Zero})
					So(report.Destroyed, ShouldBeEmpty)
					So(ship.Position, ShouldResemble, Vec{X: 100, Y: 10})
					So(ship.HasTwin(), ShouldBeFalse)
				})
			})

			Convey("When a hazard waits where the collapse lands", func() {
				sim.AddHazard(Vec{X: 100, Y: 480})
				sim.AddHazard(Vec{X: 100, Y: 10})
				report := sim.Step(TickInput{})

				Convey("Then the ship is destroyed and dropped", func() {
					So(report.Collapses[ship.ID].Destroyed, ShouldBeTrue)
					So(report.Destroyed, ShouldResemble, []string{ship.ID})

					_, err := sim.Entity(ship.ID)
					So(errors.Is(err, ErrUnknownEntity), ShouldBeTrue)
					So(sim.Metrics().Destroyed, ShouldEqual, int64(1))
				})
			})
		})

		Convey("When a hazard touches the ship in a basis state", func() {
			sim.AddHazard(Vec{X: 110, Y: 160})
			report := sim.Step(TickInput{})

			Convey("Then it is destroyed without a measurement", func() {
				So(report.Collapses, ShouldBeEmpty)
				So(report.Destroyed, ShouldResemble, []string{ship.ID})
				So(ship.Destroyed(), ShouldBeTrue)
			})
		})

		Convey("When a command names an unknown entity", func() {
			report := sim.Step(TickInput{Gates: []GateCommand{{EntityID: "ghost", Gate: X}}})

			Convey("Then it is reported and ignored", func() {
				So(report.Unknown, ShouldResemble, []string{"ghost"})
				So(ship.State, ShouldEqual, Zero)
			})
		})

		Convey("When a hazard scrolls off", func() {
			hazard := sim.AddHazard(Vec{X: 900, Y: 900})

			Convey("Then it can be removed by ID", func() {
				So(sim.Remove(hazard.ID), ShouldBeNil)
				So(sim.Hazards(), ShouldBeEmpty)
				So(errors.Is(sim.Remove(hazard.ID), ErrUnknownEntity), ShouldBeTrue)
			})
		})
	})
}

func TestSimulationShots(t *testing.T) {
	Convey("Given a quiet simulation with two |0> bubbles in the top row", t, func() {
		sim, err := NewSimulation(quietConfig(), WithSource(NewSource(11)))
		So(err, ShouldBeNil)

		fill(sim.Grid(), Zero, Cell{0, 0}, Cell{0, 1})
		third := sim.Grid().Center(Cell{0, 2})

		Convey("When a |0> shot lands next to them", func() {
			report := sim.Step(TickInput{Shots: []PlaceRequest{{X: third.X, Y: third.Y, State: Zero}}})

			Convey("Then all three pop and score", func() {
				So(report.Placed, ShouldHaveLength, 1)
				So(report.ScoreDelta, ShouldEqual, 3)
				So(report.Resolutions, ShouldHaveLength, 1)
				So(sim.Score(), ShouldEqual, 3)
				So(sim.Grid().Len(), ShouldEqual, 0)
			})
		})

		Convey("When a |1> shot lands next to them", func() {
			report := sim.Step(TickInput{Shots: []PlaceRequest{{X: third.X, Y: third.Y, State: One}}})

			Convey("Then it sticks without scoring", func() {
				So(report.ScoreDelta, ShouldEqual, 0)
				So(report.Resolutions, ShouldBeEmpty)
				So(sim.Grid().Len(), ShouldEqual, 3)
			})
		})

		Convey("When a shot misses the board", func() {
			report := sim.Step(TickInput{Shots: []PlaceRequest{{X: -100, Y: -100, State: One}}})

			Convey("Then it is counted as rejected", func() {
				So(report.Rejected, ShouldEqual, 1)
				So(sim.Metrics().RejectedPlaces, ShouldEqual, int64(1))
			})
		})

		Convey("When the loaded bubble is fired", func() {
			loaded := sim.Loader().State()
			occupant, _ := sim.Shoot(third.X, third.Y)

			Convey("Then the loaded state is what lands", func() {
				So(occupant, ShouldNotBeNil)
				So(occupant.State, ShouldEqual, loaded)
			})
		})
	})
}

func TestSimulationAmbient(t *testing.T) {
	Convey("Given a simulation whose ambient roll always lands on H", t, func() {
		cfg := quietConfig()
		cfg.Ambient.Enabled = true
		sim, err := NewSimulation(cfg, WithSource(&fixedSource{values: []int{150}}))
		So(err, ShouldBeNil)

		ship := sim.Spawn(Vec{X: 100, Y: 160}, Zero)
		escort := sim.Spawn(Vec{X: 300, Y: 400}, One)

		Convey("When one tick passes", func() {
			report := sim.Step(TickInput{})

			Convey("Then H reaches every controllable entity", func() {
				So(report.Ambient, ShouldEqual, H)
				So(ship.State, ShouldEqual, Plus)
				So(escort.State, ShouldEqual, Minus)
				So(sim.Metrics().AmbientGates, ShouldEqual, int64(1))
				So(sim.Metrics().GatesApplied, ShouldEqual, int64(2))
			})
		})
	})
}

func TestSimulationDeterminism(t *testing.T) {
	Convey("Given two simulations built from the same seed", t, func() {
		cfg := NewConfig().WithSeed(2024)

		a, err := NewSimulation(cfg)
		So(err, ShouldBeNil)
		b, err := NewSimulation(cfg)
		So(err, ShouldBeNil)

		Convey("When driven with identical input", func() {
			shipA := a.Spawn(Vec{X: 100, Y: 160}, Zero)
			shipB := b.Spawn(Vec{X: 100, Y: 160}, Zero)

			for i := 0; i < 600; i++ {
				a.Step(TickInput{Gates: []GateCommand{{EntityID: shipA.ID, Gate: X}}})
				b.Step(TickInput{Gates: []GateCommand{{EntityID: shipB.ID, Gate: X}}})
			}

			Convey("Then they end in the same place", func() {
				So(a.Grid().Fingerprint(), ShouldEqual, b.Grid().Fingerprint())
				So(shipA.State, ShouldEqual, shipB.State)
				So(shipA.HasTwin(), ShouldEqual, shipB.HasTwin())
				So(a.Metrics().Snapshot(), ShouldResemble, b.Metrics().Snapshot())
			})
		})
	})
}

func TestSimulationSeedZero(t *testing.T) {
	Convey("Given two simulations pinned to seed 0", t, func() {
		a, err := NewSimulation(NewConfig().WithSeed(0))
		So(err, ShouldBeNil)
		b, err := NewSimulation(NewConfig().WithSeed(0))
		So(err, ShouldBeNil)

		Convey("Then they open on the same board", func() {
			So(a.Grid().Len(), ShouldEqual, 50)
			So(a.Grid().Fingerprint(), ShouldEqual, b.Grid().Fingerprint())
			So(a.Loader().State(), ShouldEqual, b.Loader().State())
		})
	})
}

func TestSimulationRegistryCopies(t *testing.T) {
	Convey("Given a simulation with two ships and a hazard", t, func() {
		sim, err := NewSimulation(quietConfig(), WithSource(NewSource(3)))
		So(err, ShouldBeNil)

		first := sim.Spawn(Vec{X: 100, Y: 160}, Zero)
		second := sim.Spawn(Vec{X: 300, Y: 160}, One)
		hazard := sim.AddHazard(Vec{X: 900, Y: 900})

		entities := sim.Entities()
		hazards := sim.Hazards()

		Convey("When the first ship and the hazard are removed", func() {
			So(sim.Remove(first.ID), ShouldBeNil)
			So(sim.Remove(hazard.ID), ShouldBeNil)

			Convey("Then slices taken earlier are unchanged", func() {
				So(entities, ShouldResemble, []*Entity{first, second})
				So(hazards, ShouldResemble, []*Entity{hazard})
				So(sim.Entities(), ShouldResemble, []*Entity{second})
				So(sim.Hazards(), ShouldBeEmpty)
			})
		})
	})
}

func TestSimulationRescue(t *testing.T) {
	Convey("Given a quiet simulation with a ship at |0>", t, func() {
		sim, err := NewSimulation(quietConfig(), WithSource(&fixedSource{values: []int{0}}))
		So(err, ShouldBeNil)

		ship := sim.Spawn(Vec{X: 100, Y: 160}, Zero)

		Convey("When it touches a |0> crew member", func() {
			member := sim.AddCrew(Vec{X: 100, Y: 170}, Zero)
			report := sim.Step(TickInput{})

			Convey("Then the crew is rescued and scores", func() {
				So(report.Rescued, ShouldResemble, []string{member.ID})
				So(report.CrewHits, ShouldBeEmpty)
				So(report.ScoreDelta, ShouldEqual, 1)
				So(sim.Score(), ShouldEqual, 1)
				So(sim.Crew(), ShouldBeEmpty)
				So(ship.Health, ShouldEqual, DefaultHealth)
				So(sim.Metrics().Rescued, ShouldEqual, int64(1))

				history := sim.Journal().History(0)
				So(history[len(history)-1].Kind, ShouldEqual, EventRescued)
				So(history[len(history)-1].String(), ShouldEqual, "Crew rescued!")
			})
		})

		Convey("When it touches a |1> crew member", func() {
			member := sim.AddCrew(Vec{X: 100, Y: 170}, One)
			report := sim.Step(TickInput{})

			Convey("Then the crew is lost and the ship is damaged", func() {
				So(report.Rescued, ShouldBeEmpty)
				So(report.CrewHits, ShouldResemble, []string{member.ID})
				So(report.ScoreDelta, ShouldEqual, 0)
				So(sim.Crew(), ShouldBeEmpty)
				So(ship.Health, ShouldEqual, DefaultHealth-20)
				So(ship.Destroyed(), ShouldBeFalse)
				So(sim.Metrics().CrewHits, ShouldEqual, int64(1))

				history := sim.Journal().History(0)
				So(history[len(history)-1].String(), ShouldEqual, "Hit by crew hazard!")
			})
		})

		Convey("When a crew member is out of reach", func() {
			member := sim.AddCrew(Vec{X: 400, Y: 600}, Zero)
			report := sim.Step(TickInput{})

			Convey("Then it stays on the field", func() {
				So(report.Rescued, ShouldBeEmpty)
				So(sim.Crew(), ShouldResemble, []*Entity{member})
				So(sim.Snapshot().Crew, ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given a ship at |+> whose |-> twin sits in the bottom half", t, func() {
		sim, err := NewSimulation(quietConfig(), WithSource(&fixedSource{values: []int{0}}))
		So(err, ShouldBeNil)

		ship := sim.Spawn(Vec{X: 100, Y: 160}, Plus)

		Convey("When a |-> crew member drifts onto the twin", func() {
			So(ship.Twin().Position, ShouldResemble, Vec{X: 100, Y: 480})
			member := sim.AddCrew(Vec{X: 100, Y: 490}, Minus)
			report := sim.Step(TickInput{})

			Convey("Then the twin's state decides and the crew is rescued", func() {
				So(report.Rescued, ShouldResemble, []string{member.ID})
				So(sim.Score(), ShouldEqual, 1)
				So(ship.HasTwin(), ShouldBeTrue)
			})
		})
	})

	Convey("Given crew damage that exceeds the ship's health", t, func() {
		cfg := quietConfig()
		cfg.Rescue.Damage = DefaultHealth
		sim, err := NewSimulation(cfg, WithSource(&fixedSource{values: []int{0}}))
		So(err, ShouldBeNil)

		ship := sim.Spawn(Vec{X: 100, Y: 160}, Zero)
		sim.AddCrew(Vec{X: 100, Y: 170}, One)

		Convey("When the ship hits mismatched crew", func() {
			report := sim.Step(TickInput{})

			Convey("Then it is destroyed and leaves the registry", func() {
				So(report.Destroyed, ShouldResemble, []string{ship.ID})
				So(ship.Destroyed(), ShouldBeTrue)
				So(sim.Entities(), ShouldBeEmpty)

				_, err := sim.Entity(ship.ID)
				So(errors.Is(err, ErrUnknownEntity), ShouldBeTrue)
			})
		})
	})
}
