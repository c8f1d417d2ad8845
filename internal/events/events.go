// Package events provides a small in-process event bus used to stream
// analysis-run lifecycle events to dashboard clients.
package events

import "time"

// EventType identifies the kind of event
type EventType string

// Run lifecycle events published by the analyzer.
const (
	RunStarted     EventType = "run_started"
	StageCompleted EventType = "stage_completed"
	RunCompleted   EventType = "run_completed"
	RunFailed      EventType = "run_failed"
)

// Event is a single run-lifecycle notification.
type Event struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
