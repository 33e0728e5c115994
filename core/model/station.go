package model

import (
	"fmt"
	"math"
	"sort"
)

// StationAssignmentEntry gives the station a vehicle returns to after a
// drop-off at a hospital, and the travel time of that return leg.
type StationAssignmentEntry struct {
	Station    NodeID  `json:"station"`
	TravelTime float64 `json:"travel_time"`
}

// StationAssignment maps each hospital node to its return station.
type StationAssignment map[NodeID]StationAssignmentEntry

// Lookup returns the entry for hospital.
func (a StationAssignment) Lookup(hospital NodeID) (StationAssignmentEntry, bool) {
	e, ok := a[hospital]
	return e, ok
}

// Validate checks that every entry names a station and has a finite,
// non-negative travel time.
func (a StationAssignment) Validate() error {
	for _, h := range a.Hospitals() {
		e := a[h]
		if e.Station == "" {
			return fmt.Errorf("hospital %s: missing station", h)
		}
		if e.TravelTime < 0 || math.IsNaN(e.TravelTime) || math.IsInf(e.TravelTime, 0) {
			return fmt.Errorf("hospital %s: invalid travel time %v", h, e.TravelTime)
		}
	}
	return nil
}

// Hospitals returns the hospital nodes in ascending order.
func (a StationAssignment) Hospitals() []NodeID {
	out := make([]NodeID, 0, len(a))
	for h := range a {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
