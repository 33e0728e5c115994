package dispatch

import (
	"errors"
	"fmt"

	"github.com/kilianp07/ambulance-dispatch/core/fleet"
)

var (
	// ErrNoAmbulanceAvailable is returned when the fleet has no Available
	// vehicle. The call is queued.
	ErrNoAmbulanceAvailable = errors.New("no ambulance available")
	// ErrNotFound is returned when no Available vehicle can reach the
	// patient, or the patient cannot reach the hospital. The call is queued.
	ErrNotFound = errors.New("no reachable ambulance")
	// ErrMalformedCall marks calls rejected at ingestion.
	ErrMalformedCall = errors.New("malformed call")
	// ErrUnknownHospitalStation is fatal: a call references a hospital
	// without a station assignment.
	ErrUnknownHospitalStation = fleet.ErrUnknownHospitalStation
	// ErrInvalidFleet is returned for an empty fleet or vehicles placed on
	// nodes unknown to the road network.
	ErrInvalidFleet = errors.New("invalid fleet")
	// ErrInvalidStations is returned for a station table that is malformed
	// or references unknown nodes.
	ErrInvalidStations = errors.New("invalid station assignment")
	// ErrTickLimit is returned by Run when the configured tick bound is
	// reached before the backlog drained.
	ErrTickLimit = errors.New("tick limit reached")
)

// CallError reports a problem with a single call.
type CallError struct {
	CallID int
	Err    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("call %d: %v", e.CallID, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// malformed wraps reason so that both ErrMalformedCall and reason match
// errors.Is.
func malformed(id int, reason error) *CallError {
	return &CallError{CallID: id, Err: fmt.Errorf("%w: %w", ErrMalformedCall, reason)}
}
