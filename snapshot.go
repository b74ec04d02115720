// snapshot.go
package qgate

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/davecgh/go-spew/spew"
)

// EntityView is the read-only face of an entity handed to a renderer.
type EntityView struct {
	ID           string
	State        QuantumState
	Position     Vec
	Health       int
	HasTwin      bool
	TwinID       string
	TwinState    QuantumState
	TwinPosition Vec
}

func viewOf(e *Entity) EntityView {
	view := EntityView{
		ID:       e.ID,
		State:    e.State,
		Position: e.Position,
		Health:   e.Health,
	}

	if twin := e.Twin(); twin != nil {
		view.HasTwin = true
		view.TwinID = twin.ID
		view.TwinState = twin.State
		view.TwinPosition = twin.Position
	}

	return view
}

type CellView struct {
	Cell     Cell
	Occupied bool
	ID       string
	State    QuantumState
	Center   Vec
}

// GridSnapshot lists every cell in row-major order.
type GridSnapshot struct {
	Rows  int
	Cols  int
	Cells []CellView
}

func (g *MatchGrid) Snapshot() GridSnapshot {
	snap := GridSnapshot{
		Rows:  g.cfg.Rows,
		Cols:  g.cfg.Cols,
		Cells: make([]CellView, len(g.cells)),
	}

	for idx, occupant := range g.cells {
		cell := Cell{Row: idx / g.cfg.Cols, Col: idx % g.cfg.Cols}
		view := CellView{Cell: cell, Center: g.Center(cell)}

		if occupant != nil {
			view.Occupied = true
			view.ID = occupant.ID
			view.State = occupant.State
		}

		snap.Cells[idx] = view
	}

	return snap
}

/*
Fingerprint hashes the board's shape and every cell's state. Two boards
with the same layout of states hash the same regardless of occupant IDs,
which lets a renderer skip frames where nothing visible changed.
*/
func (g *MatchGrid) Fingerprint() uint64 {
	digest := xxhash.New()

	var header [16]byte
	binary.LittleEndian.PutUint64(header[:8], uint64(g.cfg.Rows))
	binary.LittleEndian.PutUint64(header[8:], uint64(g.cfg.Cols))
	_, _ = digest.Write(header[:])

	states := make([]byte, len(g.cells))
	for idx, occupant := range g.cells {
		if occupant != nil {
			states[idx] = byte(occupant.State)
		}
	}
	_, _ = digest.Write(states)

	return digest.Sum64()
}

// Snapshot is everything a renderer or HUD needs for one frame.
type Snapshot struct {
	Tick     uint64
	Score    int
	Loaded   QuantumState
	Entities []EntityView
	Hazards  []Vec
	Crew     []EntityView
	Grid     GridSnapshot
}

// Dump renders the snapshot for debugging.
func (s Snapshot) Dump() string {
	return spew.Sdump(s)
}
