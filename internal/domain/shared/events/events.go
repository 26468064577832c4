package events

import "time"

// DomainEvent is raised by aggregates and routed through the outbox.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Recorder collects events pending publication. Aggregates embed it.
type Recorder struct {
	pending []DomainEvent
}

func (r *Recorder) Record(event DomainEvent) {
	if event == nil {
		return
	}
	r.pending = append(r.pending, event)
}

// Pending returns a copy of the recorded events.
func (r *Recorder) Pending() []DomainEvent {
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

func (r *Recorder) Clear() {
	r.pending = nil
}

// Base carries the common event fields.
type Base struct {
	Name      string
	Aggregate string
	Time      time.Time
}

func (e Base) EventName() string   { return e.Name }
func (e Base) AggregateID() string { return e.Aggregate }
func (e Base) OccurredAt() time.Time {
	return e.Time
}
