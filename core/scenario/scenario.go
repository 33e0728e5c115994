package scenario

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/kilianp07/ambulance-dispatch/core/dispatch"
	"github.com/kilianp07/ambulance-dispatch/core/model"
	"github.com/kilianp07/ambulance-dispatch/core/roadnet"
)

// Edge is an undirected road between two nodes.
type Edge struct {
	From   model.NodeID `json:"from" yaml:"from"`
	To     model.NodeID `json:"to" yaml:"to"`
	Weight float64      `json:"weight" yaml:"weight"`
}

// Assignment is an explicit return station for a hospital.
type Assignment struct {
	Hospital   model.NodeID `json:"hospital" yaml:"hospital"`
	Station    model.NodeID `json:"station" yaml:"station"`
	TravelTime float64      `json:"travel_time" yaml:"travel_time"`
}

// VehicleDef places a vehicle at its starting station.
type VehicleDef struct {
	ID       model.VehicleID `json:"id" yaml:"id"`
	Location model.NodeID    `json:"location" yaml:"location"`
}

// CallDef is one emergency call. An empty Hospital is resolved to the
// nearest listed hospital. A zero ID means the file gives none; ids are
// then assigned in file order starting at 1.
type CallDef struct {
	ID          int          `json:"id" yaml:"id"`
	Patient     model.NodeID `json:"patient" yaml:"patient"`
	Hospital    model.NodeID `json:"hospital" yaml:"hospital"`
	ArrivalTick int          `json:"arrival_tick" yaml:"arrival_tick"`
}

// ToModel converts the definition into a pending call.
func (c CallDef) ToModel() model.EmergencyCall {
	return model.EmergencyCall{
		ID:          c.ID,
		Patient:     c.Patient,
		Hospital:    c.Hospital,
		ArrivalTick: c.ArrivalTick,
		Status:      model.CallPending,
	}
}

// Definition describes a complete simulation input.
type Definition struct {
	Name  string         `json:"name" yaml:"name"`
	Nodes []model.NodeID `json:"nodes" yaml:"nodes"`
	Edges []Edge         `json:"edges" yaml:"edges"`
	// Hospitals is used to resolve calls without a hospital and, together
	// with Stations, to derive the station assignment.
	Hospitals   []model.NodeID `json:"hospitals" yaml:"hospitals"`
	Stations    []model.NodeID `json:"stations" yaml:"stations"`
	Assignments []Assignment   `json:"assignments" yaml:"assignments"`
	Fleet       []VehicleDef   `json:"fleet" yaml:"fleet"`
	Calls       []CallDef      `json:"calls" yaml:"calls"`
}

// GraphBuilder receives the nodes and roads of a scenario.
type GraphBuilder interface {
	AddNode(id model.NodeID)
	AddEdge(a, b model.NodeID, weight float64) error
}

// Validate checks the structure of the definition. Graph membership of the
// referenced nodes is checked by the engine at startup.
func (d Definition) Validate() error {
	var errs []error
	if len(d.Edges) == 0 && len(d.Nodes) == 0 {
		errs = append(errs, errors.New("road network is empty"))
	}
	for i, e := range d.Edges {
		if e.Weight < 0 || math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			errs = append(errs, fmt.Errorf("edge %d (%s-%s): invalid weight %v", i, e.From, e.To, e.Weight))
		}
	}
	if len(d.Fleet) == 0 {
		errs = append(errs, errors.New("fleet is empty"))
	}
	seen := make(map[model.VehicleID]bool, len(d.Fleet))
	for _, v := range d.Fleet {
		if seen[v.ID] {
			errs = append(errs, fmt.Errorf("vehicle %d: duplicate id", v.ID))
		}
		seen[v.ID] = true
	}
	if len(d.Assignments) == 0 && (len(d.Hospitals) == 0 || len(d.Stations) == 0) {
		errs = append(errs, errors.New("either assignments or hospitals and stations are required"))
	}
	if n := d.missingCallIDs(); n > 0 && n < len(d.Calls) {
		errs = append(errs, fmt.Errorf("calls: %d of %d have no id; give an id to every call or to none", n, len(d.Calls)))
	}
	hosp := make(map[model.NodeID]bool, len(d.Assignments))
	for _, a := range d.Assignments {
		if hosp[a.Hospital] {
			errs = append(errs, fmt.Errorf("hospital %s: assigned twice", a.Hospital))
		}
		hosp[a.Hospital] = true
	}
	return errors.Join(errs...)
}

func (d Definition) missingCallIDs() int {
	n := 0
	for _, c := range d.Calls {
		if c.ID == 0 {
			n++
		}
	}
	return n
}

// CallModels converts the calls into pending engine calls, numbering them
// 1..n in file order when the file carries no ids.
func (d Definition) CallModels() []model.EmergencyCall {
	number := len(d.Calls) > 0 && d.missingCallIDs() == len(d.Calls)
	calls := make([]model.EmergencyCall, 0, len(d.Calls))
	for i, c := range d.Calls {
		if number {
			c.ID = i + 1
		}
		calls = append(calls, c.ToModel())
	}
	return calls
}

// Populate adds every node and road of the scenario to g.
func (d Definition) Populate(g GraphBuilder) error {
	for _, n := range d.Nodes {
		g.AddNode(n)
	}
	for _, e := range d.Edges {
		if err := g.AddEdge(e.From, e.To, e.Weight); err != nil {
			return err
		}
	}
	return nil
}

// StationAssignment returns the explicit assignment table when present and
// otherwise maps each hospital to its nearest reachable station.
func (d Definition) StationAssignment(network roadnet.Network) model.StationAssignment {
	if len(d.Assignments) == 0 {
		return dispatch.AssignStations(network, d.Hospitals, d.Stations)
	}
	out := make(model.StationAssignment, len(d.Assignments))
	for _, a := range d.Assignments {
		out[a.Hospital] = model.StationAssignmentEntry{Station: a.Station, TravelTime: a.TravelTime}
	}
	return out
}

// hospitals lists the hospitals calls may be routed to.
func (d Definition) hospitals() []model.NodeID {
	if len(d.Hospitals) > 0 {
		return d.Hospitals
	}
	out := make([]model.NodeID, 0, len(d.Assignments))
	for _, a := range d.Assignments {
		out = append(out, a.Hospital)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Inputs builds the engine inputs over network. Calls whose hospital cannot
// be resolved keep an empty hospital and are rejected by the engine.
func (d Definition) Inputs(network roadnet.Network) dispatch.Inputs {
	fleet := make(map[model.VehicleID]model.NodeID, len(d.Fleet))
	for _, v := range d.Fleet {
		fleet[v.ID] = v.Location
	}
	hospitals := d.hospitals()
	calls := d.CallModels()
	for i, call := range calls {
		if call.Hospital == "" && call.Patient != "" && network.HasNode(call.Patient) {
			if h, _, err := dispatch.NearestHospital(network, call.Patient, hospitals); err == nil {
				calls[i].Hospital = h
			}
		}
	}
	return dispatch.Inputs{
		Network:  network,
		Stations: d.StationAssignment(network),
		Fleet:    fleet,
		Calls:    calls,
	}
}
