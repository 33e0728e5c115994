package metrics

import (
	"time"

	"github.com/kilianp07/ambulance-dispatch/core/model"
)

// DispatchEvent represents one vehicle committed to one call.
type DispatchEvent struct {
	RunID         string
	Tick          int
	VehicleID     model.VehicleID
	CallID        int
	Patient       model.NodeID
	Hospital      model.NodeID
	CostToPatient float64
	// Wait is the number of ticks between the call's arrival and its
	// dispatch.
	Wait int
	Time time.Time
}

// MetricsSink records dispatch events for observability purposes.
type MetricsSink interface {
	RecordDispatch(events []DispatchEvent) error
}

// TickSnapshot summarises the engine state at the end of a tick.
type TickSnapshot struct {
	RunID       string
	Tick        int
	Available   int
	Unavailable int
	Backlog     int
	Ingested    int
	Dispatched  int
	Time        time.Time
}

// TickRecorder is implemented by sinks able to record tick snapshots.
type TickRecorder interface {
	RecordTick(s TickSnapshot) error
}

// RejectedCallEvent records a call refused at ingestion.
type RejectedCallEvent struct {
	RunID  string
	CallID int
	Reason string
	Time   time.Time
}

// RejectionRecorder is implemented by sinks able to record rejected calls.
type RejectionRecorder interface {
	RecordRejectedCall(ev RejectedCallEvent) error
}

// QueuedCallEvent records a call entering or re-entering the backlog.
type QueuedCallEvent struct {
	RunID   string
	Tick    int
	CallID  int
	Requeue bool
	Reason  string
	Time    time.Time
}

// QueueRecorder is implemented by sinks able to record backlog activity.
type QueueRecorder interface {
	RecordQueued(ev QueuedCallEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordDispatch([]DispatchEvent) error { return nil }

// Ensure NopSink implements TickRecorder.
func (NopSink) RecordTick(TickSnapshot) error { return nil }

// Ensure NopSink implements RejectionRecorder.
func (NopSink) RecordRejectedCall(RejectedCallEvent) error { return nil }

func (NopSink) RecordQueued(QueuedCallEvent) error { return nil }
