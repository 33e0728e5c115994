package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/ambulance-dispatch/core/dispatch"
	"github.com/kilianp07/ambulance-dispatch/core/model"
	"github.com/kilianp07/ambulance-dispatch/core/scenario"
)

// LogEntry is an expected dispatch log line. Node fields are only compared
// when set.
type LogEntry struct {
	Tick          int             `yaml:"tick"`
	VehicleID     model.VehicleID `yaml:"vehicle_id"`
	CallID        int             `yaml:"call_id"`
	CostToPatient float64         `yaml:"cost_to_patient"`
	AvailableAt   float64         `yaml:"available_at"`
	Hospital      model.NodeID    `yaml:"hospital,omitempty"`
}

type Expected struct {
	// Error names the startup or run error, see errorsByName.
	Error      string     `yaml:"error,omitempty"`
	Dispatched int        `yaml:"dispatched"`
	Backlog    []int      `yaml:"backlog,omitempty"`
	Rejected   []int      `yaml:"rejected,omitempty"`
	Requeues   *int       `yaml:"requeues,omitempty"`
	Orders     *int       `yaml:"orders,omitempty"`
	Log        []LogEntry `yaml:"log,omitempty"`
}

type Scenario struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description,omitempty"`
	City        scenario.Definition `yaml:"city"`
	MaxTicks    int                 `yaml:"max_ticks,omitempty"`
	// FailVehicles makes order publication fail for these vehicles.
	FailVehicles []model.VehicleID `yaml:"fail_vehicles,omitempty"`
	Expected     Expected          `yaml:"expected"`
}

var errorsByName = map[string]error{
	"unknown_hospital_station": dispatch.ErrUnknownHospitalStation,
	"invalid_fleet":            dispatch.ErrInvalidFleet,
	"invalid_stations":         dispatch.ErrInvalidStations,
	"tick_limit":               dispatch.ErrTickLimit,
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Expected.Error != "" {
		if _, ok := errorsByName[sc.Expected.Error]; !ok {
			return nil, fmt.Errorf("%s: unknown expected error %q", path, sc.Expected.Error)
		}
	}
	return &sc, nil
}
