package model

import "time"

// EventKind names the progress channel event types.
type EventKind string

const (
	EventConnected      EventKind = "connected"
	EventProgress       EventKind = "progress"
	EventSheetStarted   EventKind = "sheet-started"
	EventSheetCompleted EventKind = "sheet-completed"
	EventPing           EventKind = "ping"
	EventError          EventKind = "error"
	EventDone           EventKind = "done"
)

// ProgressEvent is one notification pushed to progress observers.
type ProgressEvent struct {
	Kind      EventKind      `json:"kind"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewProgressEvent stamps an event with the current time.
func NewProgressEvent(kind EventKind, payload map[string]any) ProgressEvent {
	return ProgressEvent{Kind: kind, Payload: payload, Timestamp: time.Now().UTC()}
}
