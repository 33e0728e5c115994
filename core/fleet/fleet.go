// Package fleet tracks the availability of a fixed set of ambulances.
//
// Every vehicle is either Available, waiting at a node, or Unavailable until a
// logical tick at which it reappears at its return station. The State is owned
// by a single dispatch engine and is not safe for concurrent use.
package fleet

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kilianp07/ambulance-dispatch/core/model"
)

var (
	// ErrUnknownVehicle is returned for identifiers outside the fleet.
	ErrUnknownVehicle = errors.New("unknown vehicle")
	// ErrVehicleUnavailable is returned when dispatching a busy vehicle.
	ErrVehicleUnavailable = errors.New("vehicle unavailable")
	// ErrUnknownHospitalStation is returned when a hospital has no station
	// assignment, so the return leg cannot be computed.
	ErrUnknownHospitalStation = errors.New("unknown hospital station")
	// ErrEmptyFleet is returned when creating a State without vehicles.
	ErrEmptyFleet = errors.New("empty fleet")
)

// State holds the status of every vehicle.
type State struct {
	vehicles map[model.VehicleID]*model.Vehicle
	order    []model.VehicleID
	stations model.StationAssignment
}

// New creates a State with every vehicle Available at its initial station.
func New(initial map[model.VehicleID]model.NodeID, stations model.StationAssignment) (*State, error) {
	if len(initial) == 0 {
		return nil, ErrEmptyFleet
	}
	s := &State{
		vehicles: make(map[model.VehicleID]*model.Vehicle, len(initial)),
		order:    make([]model.VehicleID, 0, len(initial)),
		stations: stations,
	}
	for id, node := range initial {
		v := &model.Vehicle{ID: id, Status: model.Available, Location: node, Station: node}
		if err := v.Validate(); err != nil {
			return nil, err
		}
		s.vehicles[id] = v
		s.order = append(s.order, id)
	}
	sort.Slice(s.order, func(i, j int) bool { return s.order[i] < s.order[j] })
	return s, nil
}

// Size returns the number of vehicles in the fleet.
func (s *State) Size() int { return len(s.order) }

// Get returns a copy of the vehicle.
func (s *State) Get(id model.VehicleID) (model.Vehicle, bool) {
	v, ok := s.vehicles[id]
	if !ok {
		return model.Vehicle{}, false
	}
	return *v, true
}

// Available returns the Available vehicles ordered by identifier.
func (s *State) Available() []model.Vehicle {
	return s.filter(model.Available)
}

// Unavailable returns the Unavailable vehicles ordered by identifier.
func (s *State) Unavailable() []model.Vehicle {
	return s.filter(model.Unavailable)
}

// AvailableCount returns the number of Available vehicles.
func (s *State) AvailableCount() int {
	n := 0
	for _, v := range s.vehicles {
		if v.Status == model.Available {
			n++
		}
	}
	return n
}

// Snapshot returns every vehicle ordered by identifier.
func (s *State) Snapshot() []model.Vehicle {
	out := make([]model.Vehicle, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.vehicles[id])
	}
	return out
}

func (s *State) filter(status model.VehicleStatus) []model.Vehicle {
	var out []model.Vehicle
	for _, id := range s.order {
		if v := s.vehicles[id]; v.Status == status {
			out = append(out, *v)
		}
	}
	return out
}

// MarkUnavailable commits vehicle id to a call delivered to hospital.
//
// The vehicle is busy until tick + costToPatient + the return travel time of
// the hospital's station, and then reappears at that station. The leg from
// patient to hospital is not part of the occupancy.
func (s *State) MarkUnavailable(id model.VehicleID, hospital model.NodeID, costToPatient float64, tick int) (model.Vehicle, error) {
	v, ok := s.vehicles[id]
	if !ok {
		return model.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, ErrUnknownVehicle)
	}
	if v.Status != model.Available {
		return model.Vehicle{}, fmt.Errorf("vehicle %d: %w", id, ErrVehicleUnavailable)
	}
	entry, ok := s.stations.Lookup(hospital)
	if !ok {
		return model.Vehicle{}, fmt.Errorf("hospital %s: %w", hospital, ErrUnknownHospitalStation)
	}
	if costToPatient < 0 {
		return model.Vehicle{}, fmt.Errorf("vehicle %d: negative cost to patient %v", id, costToPatient)
	}
	v.Status = model.Unavailable
	v.Station = entry.Station
	v.AvailableAt = float64(tick) + costToPatient + entry.TravelTime
	return *v, nil
}

// PromoteDue makes every Unavailable vehicle whose availability tick has
// elapsed Available again at its recorded station. It returns the promoted
// vehicles ordered by identifier. Calling it twice at the same tick promotes
// nothing the second time.
func (s *State) PromoteDue(tick int) []model.Vehicle {
	var promoted []model.Vehicle
	for _, id := range s.order {
		v := s.vehicles[id]
		if !v.DueAt(tick) {
			continue
		}
		v.Status = model.Available
		v.Location = v.Station
		promoted = append(promoted, *v)
	}
	return promoted
}
