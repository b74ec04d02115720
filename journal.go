// journal.go
package qgate

import "fmt"

// EventKind names what a journal entry records.
type EventKind uint8

const (
	EventGate EventKind = iota + 1
	EventTwinCreated
	EventTwinRetired
	EventCollapse
	EventDestroyed
	EventPlaced
	EventRejected
	EventPopped
	EventOscillated
	EventRescued
	EventCrewHit
)

var eventNames = map[EventKind]string{
	EventGate:        "gate",
	EventTwinCreated: "twin-created",
	EventTwinRetired: "twin-retired",
	EventCollapse:    "collapse",
	EventDestroyed:   "destroyed",
	EventPlaced:      "placed",
	EventRejected:    "rejected",
	EventPopped:      "popped",
	EventOscillated:  "oscillated",
	EventRescued:     "rescued",
	EventCrewHit:     "crew-hit",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}

	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

/*
Event is an immutable record of one state change. Sequence numbers are
monotonically increasing for the life of the journal, even after old
entries have been dropped.
*/
type Event struct {
	Sequence  uint64
	Tick      uint64
	Kind      EventKind
	SubjectID string
	Gate      Gate
	From      QuantumState
	To        QuantumState
	Cell      Cell
	Count     int
}

func (ev Event) String() string {
	switch ev.Kind {
	case EventGate:
		return fmt.Sprintf("%s gate applied: %s -> %s", ev.Gate, ev.From, ev.To)
	case EventCollapse:
		return fmt.Sprintf("Measurement: collapsed to %s", ev.To)
	case EventDestroyed:
		return "Ship destroyed!"
	case EventPopped:
		return fmt.Sprintf("Popped %d bubbles", ev.Count)
	case EventRescued:
		return "Crew rescued!"
	case EventCrewHit:
		return "Hit by crew hazard!"
	}

	return fmt.Sprintf("%s %s", ev.Kind, ev.SubjectID)
}

/*
Journal keeps an ordered ledger of state changes so a HUD that polls
once per frame, or starts late, can catch up on everything it missed.
Only the most recent Capacity entries are retained, in a ring.
*/
type Journal struct {
	Capacity int
	OnEvent  func(Event)

	events []Event
	start  int
	size   int
	next   uint64
	tick   uint64
}

const DefaultJournalCapacity = 1024

func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultJournalCapacity
	}

	return &Journal{
		Capacity: capacity,
		events:   make([]Event, capacity),
	}
}

// SetTick stamps subsequent events with tick.
func (j *Journal) SetTick(tick uint64) {
	if j != nil {
		j.tick = tick
	}
}

// Record assigns ev its sequence number and tick, then appends it,
// overwriting the oldest entry once the ring is full.
func (j *Journal) Record(ev Event) {
	if j == nil {
		return
	}

	ev.Sequence = j.next
	ev.Tick = j.tick
	j.next++

	if j.size < len(j.events) {
		j.events[(j.start+j.size)%len(j.events)] = ev
		j.size++
	} else {
		j.events[j.start] = ev
		j.start = (j.start + 1) % len(j.events)
	}

	if j.OnEvent != nil {
		j.OnEvent(ev)
	}
}

/*
History returns every retained event with a sequence number at or after
since. Asking for a sequence that has already been dropped returns all
retained events; asking past the end returns an empty slice.
*/
func (j *Journal) History(since uint64) []Event {
	if j == nil || j.size == 0 {
		return []Event{}
	}

	first := j.next - uint64(j.size)
	if since < first {
		since = first
	}

	if since >= j.next {
		return []Event{}
	}

	offset := int(since - first)
	out := make([]Event, 0, j.size-offset)
	for i := offset; i < j.size; i++ {
		out = append(out, j.events[(j.start+i)%len(j.events)])
	}

	return out
}

// Next is the sequence number the next recorded event will receive.
func (j *Journal) Next() uint64 {
	if j == nil {
		return 0
	}

	return j.next
}

func (j *Journal) Len() int {
	if j == nil {
		return 0
	}

	return j.size
}
