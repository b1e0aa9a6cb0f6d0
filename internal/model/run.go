package model

import "time"

// RunStatus represents the lifecycle state of a migration run.
type RunStatus string

const (
	RunStatusIdle      RunStatus = "idle"
	RunStatusRunning   RunStatus = "running"
	RunStatusPaused    RunStatus = "paused"
	RunStatusAborted   RunStatus = "aborted"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Terminal reports whether the status is an end state. A run in a terminal
// state is removed from the active-run registry and never transitions again.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusAborted, RunStatusCompleted, RunStatusFailed:
		return true
	default:
		return false
	}
}

// EntityCounters tracks per-entity progress within a run.
type EntityCounters struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Skipped   int `json:"skipped"`
	Errored   int `json:"errored"`
}

// RunSummary is the final accounting of a run, emitted with the done event
// and returned by status queries after completion.
type RunSummary struct {
	Counters map[EntityType]*EntityCounters `json:"counters"`
	Errors   []string                       `json:"errors,omitempty"`
}

// NewRunSummary returns a summary with a zeroed counter per entity type.
func NewRunSummary() *RunSummary {
	s := &RunSummary{Counters: make(map[EntityType]*EntityCounters, len(EntityTypes))}
	for _, et := range EntityTypes {
		s.Counters[et] = &EntityCounters{}
	}
	return s
}

// Totals sums the per-entity counters.
func (s *RunSummary) Totals() EntityCounters {
	var t EntityCounters
	for _, c := range s.Counters {
		t.Processed += c.Processed
		t.Created += c.Created
		t.Skipped += c.Skipped
		t.Errored += c.Errored
	}
	return t
}

// MigrationRun is one execution attempt of the migration pipeline. Run
// state lives only in memory; nothing about it is persisted.
type MigrationRun struct {
	ID        string      `json:"id"`
	File      string      `json:"file"`
	Status    RunStatus   `json:"status"`
	Summary   *RunSummary `json:"summary"`
	StartedAt time.Time   `json:"started_at"`
	EndedAt   *time.Time  `json:"ended_at,omitempty"`
}
