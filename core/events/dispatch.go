package events

import "github.com/kilianp07/ambulance-dispatch/core/model"

// DispatchEvent is published when a vehicle is committed to a call.
type DispatchEvent struct {
	Record model.DispatchRecord
	// Call is the served call, its status set to CallDispatched.
	Call model.EmergencyCall
	// FromBacklog is true when the call waited in the backlog.
	FromBacklog bool
}

// QueuedEvent is published when a call cannot be served immediately.
// Reason is the error that prevented the dispatch.
type QueuedEvent struct {
	Tick    int
	Call    model.EmergencyCall
	Reason  error
	Requeue bool
}

// RejectedEvent is published when a call is refused at ingestion.
type RejectedEvent struct {
	Call   model.EmergencyCall
	Reason error
}
