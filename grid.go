// grid.go
package qgate

import (
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"
	"github.com/theapemachine/errnie"
)

// Cell addresses one grid slot.
type Cell struct {
	Row int
	Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Occupant is a bubble sitting in the grid.
type Occupant struct {
	ID    string
	State QuantumState
	Cell  Cell

	timer  int
	period int
}

// Resolution is what Resolve removed and what it was worth.
type Resolution struct {
	Popped     []Cell
	ScoreDelta int
}

/*
MatchGrid is a fixed Rows x Cols board of optional occupants. Shots snap
into the nearest free slot, same-state groups that reach the match
threshold pop, and superposition occupants flip on their own timer.

The grid only compares states for equality; it knows nothing about gates
or twins.
*/
type MatchGrid struct {
	cfg   GridConfig
	src   Source
	cells []*Occupant
	count int

	metrics *Metrics
	journal *Journal
}

type GridOption func(*MatchGrid)

func WithGridMetrics(metrics *Metrics) GridOption {
	return func(g *MatchGrid) {
		if metrics != nil {
			g.metrics = metrics
		}
	}
}

func WithGridJournal(journal *Journal) GridOption {
	return func(g *MatchGrid) {
		g.journal = journal
	}
}

// NewMatchGrid builds an empty grid. Non-positive dimensions are a caller
// bug and fail with ErrInvalidDimensions.
func NewMatchGrid(cfg GridConfig, src Source, opts ...GridOption) (*MatchGrid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if src == nil {
		src = NewTimeSource()
	}

	g := &MatchGrid{
		cfg:   cfg,
		src:   src,
		cells: make([]*Occupant, cfg.Rows*cfg.Cols),

		metrics: NewMetrics(),
	}

	for _, opt := range opts {
		opt(g)
	}

	errnie.Info("NewMatchGrid - %dx%d, pitch %v, threshold %d", cfg.Rows, cfg.Cols, cfg.Pitch, cfg.MatchThreshold)

	return g, nil
}

func (g *MatchGrid) Rows() int { return g.cfg.Rows }
func (g *MatchGrid) Cols() int { return g.cfg.Cols }

// Len is the number of occupied cells.
func (g *MatchGrid) Len() int { return g.count }

func (g *MatchGrid) InBounds(cell Cell) bool {
	return cell.Row >= 0 && cell.Row < g.cfg.Rows && cell.Col >= 0 && cell.Col < g.cfg.Cols
}

func (g *MatchGrid) index(cell Cell) (int, error) {
	if !g.InBounds(cell) {
		return 0, fmt.Errorf("%w: %s on %dx%d grid", ErrOutOfRange, cell, g.cfg.Rows, g.cfg.Cols)
	}

	return cell.Row*g.cfg.Cols + cell.Col, nil
}

// CellAt converts a point to the cell under it. ok is false when the point
// lies outside the grid.
func (g *MatchGrid) CellAt(x, y float64) (cell Cell, ok bool) {
	cell = Cell{
		Row: int(math.Floor((y - g.cfg.OriginY) / g.cfg.Pitch)),
		Col: int(math.Floor((x - g.cfg.OriginX) / g.cfg.Pitch)),
	}

	return cell, g.InBounds(cell)
}

// Center is the point at the middle of cell.
func (g *MatchGrid) Center(cell Cell) Vec {
	return Vec{
		X: g.cfg.OriginX + float64(cell.Col)*g.cfg.Pitch + g.cfg.Pitch/2,
		Y: g.cfg.OriginY + float64(cell.Row)*g.cfg.Pitch + g.cfg.Pitch/2,
	}
}

// At returns the occupant of cell, or nil when it is empty.
func (g *MatchGrid) At(cell Cell) (*Occupant, error) {
	idx, err := g.index(cell)
	if err != nil {
		return nil, err
	}

	return g.cells[idx], nil
}

// Set puts a new occupant in cell, replacing whatever was there.
func (g *MatchGrid) Set(cell Cell, state QuantumState) (*Occupant, error) {
	idx, err := g.index(cell)
	if err != nil {
		return nil, err
	}

	if g.cells[idx] == nil {
		g.count++
	}

	occupant := &Occupant{
		ID:     uuid.NewString(),
		State:  state,
		Cell:   cell,
		period: g.nextPeriod(),
	}
	g.cells[idx] = occupant

	return occupant, nil
}

// Clear empties cell, for occupants leaving the board other than by a
// match.
func (g *MatchGrid) Clear(cell Cell) error {
	idx, err := g.index(cell)
	if err != nil {
		return err
	}

	if g.cells[idx] != nil {
		g.cells[idx] = nil
		g.count--
	}

	return nil
}

// Reset empties the whole board.
func (g *MatchGrid) Reset() {
	clear(g.cells)
	g.count = 0
}

/*
Place snaps a shot arriving at (x, y) into the grid. If the cell under
the point is taken, the eight neighbours are tried in row-major order
and the first free one wins, so the same board and point always give the
same cell. A point off the board, or a fully packed neighbourhood, is a
rejected shot and returns nil.
*/
func (g *MatchGrid) Place(x, y float64, state QuantumState) *Occupant {
	target, ok := g.CellAt(x, y)
	if !ok {
		g.reject(target)
		return nil
	}

	cell, ok := g.freeNear(target)
	if !ok {
		g.reject(target)
		return nil
	}

	occupant, _ := g.Set(cell, state)
	g.metrics.Placements++
	g.journal.Record(Event{Kind: EventPlaced, SubjectID: occupant.ID, To: state, Cell: cell})

	return occupant
}

func (g *MatchGrid) freeNear(target Cell) (Cell, bool) {
	if g.free(target) {
		return target, true
	}

	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			candidate := Cell{Row: target.Row + dr, Col: target.Col + dc}
			if g.free(candidate) {
				return candidate, true
			}
		}
	}

	return Cell{}, false
}

func (g *MatchGrid) free(cell Cell) bool {
	return g.InBounds(cell) && g.cells[cell.Row*g.cfg.Cols+cell.Col] == nil
}

func (g *MatchGrid) reject(target Cell) {
	g.metrics.RejectedPlaces++
	g.journal.Record(Event{Kind: EventRejected, Cell: target})
}

var neighbours = [4]Cell{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

/*
FindComponent returns every cell reachable from cell through up, down,
left and right steps over occupants sharing its state, in row-major
order. An empty seed has an empty component.
*/
func (g *MatchGrid) FindComponent(cell Cell) ([]Cell, error) {
	seed, err := g.At(cell)
	if err != nil {
		return nil, err
	}

	if seed == nil {
		return []Cell{}, nil
	}

	visited := make([]bool, len(g.cells))
	visited[cell.Row*g.cfg.Cols+cell.Col] = true

	stack := []Cell{cell}
	component := make([]Cell, 0, 8)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		component = append(component, current)

		for _, step := range neighbours {
			next := Cell{Row: current.Row + step.Row, Col: current.Col + step.Col}
			if !g.InBounds(next) {
				continue
			}

			idx := next.Row*g.cfg.Cols + next.Col
			if visited[idx] {
				continue
			}

			if occupant := g.cells[idx]; occupant != nil && occupant.State == seed.State {
				visited[idx] = true
				stack = append(stack, next)
			}
		}
	}

	slices.SortFunc(component, func(a, b Cell) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}

		return a.Col - b.Col
	})

	return component, nil
}

// Resolve pops the component at cell if it is at least MatchThreshold
// strong. A smaller group is left untouched and scores nothing.
func (g *MatchGrid) Resolve(cell Cell) (Resolution, error) {
	component, err := g.FindComponent(cell)
	if err != nil {
		return Resolution{}, err
	}

	if len(component) < g.cfg.MatchThreshold {
		return Resolution{Popped: []Cell{}}, nil
	}

	state := g.cells[cell.Row*g.cfg.Cols+cell.Col].State
	for _, popped := range component {
		g.cells[popped.Row*g.cfg.Cols+popped.Col] = nil
	}
	g.count -= len(component)

	g.metrics.Matches++
	g.metrics.Popped += int64(len(component))
	g.journal.Record(Event{Kind: EventPopped, From: state, Cell: cell, Count: len(component)})

	errnie.Info("popped %d %s bubbles at %s", len(component), state, cell)

	return Resolution{Popped: component, ScoreDelta: len(component)}, nil
}

/*
TickOscillation advances every superposition occupant's timer by elapsed
ticks. Once a timer runs past its period the occupant flips between Plus
and Minus and starts a new period. Flipping never triggers a match.
*/
func (g *MatchGrid) TickOscillation(elapsed int) {
	if elapsed <= 0 {
		return
	}

	for _, occupant := range g.cells {
		if occupant == nil || !occupant.State.IsSuperposition() {
			continue
		}

		occupant.timer += elapsed
		if occupant.timer <= occupant.period {
			continue
		}

		from := occupant.State
		occupant.State = from.Paired()
		occupant.timer = 0
		occupant.period = g.nextPeriod()

		g.metrics.OscillationFlip++
		g.journal.Record(Event{Kind: EventOscillated, SubjectID: occupant.ID, From: from, To: occupant.State, Cell: occupant.Cell})
	}
}

func (g *MatchGrid) nextPeriod() int {
	if g.cfg.OscillationJitter <= 0 {
		return g.cfg.OscillationPeriod
	}

	return g.cfg.OscillationPeriod + g.src.IntN(g.cfg.OscillationJitter+1)
}

// Populate fills the top rows with random basis-state bubbles, leaving
// superpositions to arrive by shot.
func (g *MatchGrid) Populate(rows int) error {
	if rows < 0 || rows > g.cfg.Rows {
		return fmt.Errorf("%w: populate %d of %d rows", ErrOutOfRange, rows, g.cfg.Rows)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < g.cfg.Cols; c++ {
			if _, err := g.Set(Cell{Row: r, Col: c}, pick(g.src, BasisStates)); err != nil {
				return err
			}
		}
	}

	return nil
}
