package vehiclestatus

import (
	"sort"
	"sync"

	"github.com/kilianp07/ambulance-dispatch/core/model"
)

// LastDispatch mirrors the summary of the last dispatch of a vehicle.
type LastDispatch struct {
	CallID        int          `json:"call_id"`
	Tick          int          `json:"tick"`
	Patient       model.NodeID `json:"patient_node"`
	Hospital      model.NodeID `json:"hospital_node"`
	CostToPatient float64      `json:"cost_to_patient"`
}

// Status captures the current known state of a vehicle.
type Status struct {
	VehicleID            model.VehicleID `json:"vehicle_id"`
	CurrentStatus        string          `json:"current_status"`
	Location             model.NodeID    `json:"location"`
	Station              model.NodeID    `json:"station"`
	AvailableAt          float64         `json:"available_at,omitempty"`
	Dispatches           int             `json:"dispatches"`
	LastDispatchDecision *LastDispatch   `json:"last_dispatch_decision,omitempty"`
}

// Filter restricts List results. Empty fields match everything.
type Filter struct {
	Status  string
	Station model.NodeID
}

// Store keeps the latest status of every vehicle.
type Store interface {
	// Update replaces the vehicle part of the status, keeping dispatch
	// history.
	Update(v model.Vehicle)
	RecordDispatch(id model.VehicleID, dec LastDispatch)
	List(Filter) []Status
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[model.VehicleID]Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[model.VehicleID]Status{}}
}

func (s *MemoryStore) Update(v model.Vehicle) {
	s.mu.Lock()
	st := s.data[v.ID]
	st.VehicleID = v.ID
	st.CurrentStatus = v.Status.String()
	st.Location = v.Location
	st.Station = v.Station
	st.AvailableAt = 0
	if v.Status == model.Unavailable {
		st.AvailableAt = v.AvailableAt
	}
	s.data[v.ID] = st
	s.mu.Unlock()
}

func (s *MemoryStore) RecordDispatch(id model.VehicleID, dec LastDispatch) {
	s.mu.Lock()
	st := s.data[id]
	st.VehicleID = id
	st.Dispatches++
	st.LastDispatchDecision = &dec
	s.data[id] = st
	s.mu.Unlock()
}

func (s *MemoryStore) List(f Filter) []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Status, 0, len(s.data))
	for _, st := range s.data {
		if f.Status != "" && st.CurrentStatus != f.Status {
			continue
		}
		if f.Station != "" && st.Station != f.Station {
			continue
		}
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].VehicleID < res[j].VehicleID })
	return res
}
