// internal/events/types.go
package events

import (
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// Ledger events
	TransactionProcessed EventType = "transaction.processed"

	// Launchpad program events
	CandyStoreCreated EventType = "candy_store.created"

	// Launch task events
	LaunchStarted   EventType = "launch.started"
	LaunchCompleted EventType = "launch.completed"
	LaunchFailed    EventType = "launch.failed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// NewBase stamps an event of the given type with the current time.
func NewBase(eventType EventType) BaseEvent {
	return BaseEvent{EventType: eventType, EventTime: time.Now()}
}

// TransactionProcessedEvent is emitted by the ledger after every executed transaction.
type TransactionProcessedEvent struct {
	BaseEvent
	Signature    string
	Slot         uint64
	Logs         []string
	ComputeUnits uint64
	Err          error // nil on success
}

// CandyStoreCreatedEvent mirrors the program's CreateCandyStoreEvent.
type CandyStoreCreatedEvent struct {
	BaseEvent
	Signature     string
	Slot          uint64
	CandyStore    string
	Owner         string
	Collection    string
	Name          string
	URL           string
	ManifestID    string
	NumberOfItems uint64
}

// LaunchStartedEvent is emitted when a launch task begins.
type LaunchStartedEvent struct {
	BaseEvent
	TaskID     int
	TaskName   string
	WalletName string
}

// LaunchCompletedEvent is emitted when a launch task completes successfully.
type LaunchCompletedEvent struct {
	BaseEvent
	TaskID     int
	TaskName   string
	WalletName string
	Collection string
	CandyStore string
	FeePaid    uint64
	Signatures []string
}

// LaunchFailedEvent is emitted when a launch task fails.
type LaunchFailedEvent struct {
	BaseEvent
	TaskID     int
	TaskName   string
	WalletName string
	Error      error
}
