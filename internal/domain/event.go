package domain

import "time"

// Event is a single logged smoking event. Rows are immutable once written;
// the only mutation the store supports is deletion.
type Event struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"` // stored and compared in UTC
}

// TriggerTag is a free-text label attached to an event at creation time.
// The UI suggests a fixed vocabulary but storage accepts any string.
type TriggerTag struct {
	ID      int64  `json:"id"`
	EventID int64  `json:"event_id"`
	Label   string `json:"trigger"`
}

// EventWithTriggers is the joined view of an event and its tags.
// Triggers is empty (never nil) for events logged without tags.
type EventWithTriggers struct {
	Event
	Triggers []string `json:"triggers"`
}
