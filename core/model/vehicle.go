package model

import (
	"fmt"
	"math"
)

// NodeID identifies a node of the road network (patient location, hospital or
// station).
type NodeID string

// VehicleID identifies an ambulance of the fleet. Any integer is valid;
// the lowest identifier wins selection ties.
type VehicleID int

// VehicleStatus is the dispatch state of a vehicle.
type VehicleStatus int

const (
	// Available vehicles wait at Location and can be dispatched.
	Available VehicleStatus = iota
	// Unavailable vehicles are serving a call and return to Station at
	// AvailableAt.
	Unavailable
)

// String returns a human-readable representation of the status.
func (s VehicleStatus) String() string {
	switch s {
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// ParseVehicleStatus converts the output of String back to a status.
func ParseVehicleStatus(s string) (VehicleStatus, bool) {
	switch s {
	case "available":
		return Available, true
	case "unavailable":
		return Unavailable, true
	default:
		return 0, false
	}
}

// Vehicle represents an ambulance of the simulated fleet.
type Vehicle struct {
	ID       VehicleID     `json:"id"`
	Status   VehicleStatus `json:"status"`
	Location NodeID        `json:"location"` // current node, meaningful while Available
	Station  NodeID        `json:"station"`  // node the vehicle returns to once free

	// AvailableAt is the logical tick at which an Unavailable vehicle becomes
	// Available again. It is only meaningful while Unavailable.
	AvailableAt float64 `json:"available_at"`
}

// Validate checks that the vehicle definition is sound.
func (v Vehicle) Validate() error {
	if v.Location == "" {
		return fmt.Errorf("vehicle %d has no location", v.ID)
	}
	if v.Status == Unavailable && (math.IsNaN(v.AvailableAt) || math.IsInf(v.AvailableAt, 0)) {
		return fmt.Errorf("vehicle %d has invalid availability tick", v.ID)
	}
	return nil
}

// IsAvailable reports whether the vehicle can be dispatched.
func (v Vehicle) IsAvailable() bool {
	return v.Status == Available
}

// DueAt reports whether an Unavailable vehicle is free again at tick.
func (v Vehicle) DueAt(tick int) bool {
	return v.Status == Unavailable && v.AvailableAt <= float64(tick)
}
