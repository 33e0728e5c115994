package model

import "fmt"

// CallStatus tracks the lifecycle of an emergency call.
//
// A call goes Pending -> Dispatched, or Pending -> Queued -> Dispatched when
// no vehicle could serve it on arrival. Dispatched is terminal. Rejected is
// used for calls refused at ingestion because their data is malformed.
type CallStatus int

const (
	CallPending CallStatus = iota
	CallQueued
	CallDispatched
	CallRejected
)

// String returns a human-readable representation of the call status.
func (s CallStatus) String() string {
	switch s {
	case CallPending:
		return "pending"
	case CallQueued:
		return "queued"
	case CallDispatched:
		return "dispatched"
	case CallRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// EmergencyCall is a request for an ambulance at Patient, to be delivered to
// Hospital. ID is unique and stable; it breaks ties between calls arriving on
// the same tick.
type EmergencyCall struct {
	ID          int        `json:"id"`
	Patient     NodeID     `json:"patient_node"`
	Hospital    NodeID     `json:"hospital_node"`
	ArrivalTick int        `json:"arrival_tick"`
	Status      CallStatus `json:"status"`
}

// Validate checks the structural soundness of the call. Node existence is
// checked against the road network by the dispatch engine.
func (c EmergencyCall) Validate() error {
	if c.ArrivalTick < 0 {
		return fmt.Errorf("call %d: negative arrival tick %d", c.ID, c.ArrivalTick)
	}
	if c.Patient == "" {
		return fmt.Errorf("call %d: missing patient node", c.ID)
	}
	if c.Hospital == "" {
		return fmt.Errorf("call %d: missing hospital node", c.ID)
	}
	return nil
}

// Before reports whether c is ordered before o in the backlog: earlier arrival
// first, then lower call identifier.
func (c EmergencyCall) Before(o EmergencyCall) bool {
	if c.ArrivalTick != o.ArrivalTick {
		return c.ArrivalTick < o.ArrivalTick
	}
	return c.ID < o.ID
}

// DispatchRecord is one entry of the dispatch log. It only carries logical
// simulation data so that identical inputs produce identical logs.
type DispatchRecord struct {
	Tick          int       `json:"tick"`
	VehicleID     VehicleID `json:"vehicle_id"`
	CallID        int       `json:"call_id"`
	Patient       NodeID    `json:"patient_node"`
	Hospital      NodeID    `json:"hospital_node"`
	CostToPatient float64   `json:"cost_to_patient"`
	AvailableAt   float64   `json:"available_at"`
	Station       NodeID    `json:"station"`
}
