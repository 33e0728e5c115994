package config

import (
	"errors"

	"github.com/google/uuid"

	"github.com/kilianp07/ambulance-dispatch/core/dispatch"
)

// SimulationConfig selects the scenario and bounds the run.
type SimulationConfig struct {
	// Scenario is the path of the YAML or JSON scenario definition.
	Scenario string `json:"scenario"`
	// MaxTicks stops the run early; zero runs until the backlog drains.
	MaxTicks int `json:"max_ticks"`
	// RunID tags the run; a random identifier is generated when empty.
	RunID string `json:"run_id"`
}

// SetDefaults applies sane defaults.
func (c *SimulationConfig) SetDefaults() {
	if c.RunID == "" {
		c.RunID = uuid.NewString()
	}
}

// Validate checks mandatory fields.
func (c SimulationConfig) Validate() error {
	if c.MaxTicks < 0 {
		return errors.New("max_ticks must not be negative")
	}
	return nil
}

// Engine returns the engine settings.
func (c SimulationConfig) Engine() dispatch.Config {
	return dispatch.Config{MaxTicks: c.MaxTicks, RunID: c.RunID}
}

// APIConfig configures the HTTP server of the serve command.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token protects the dispatch log endpoint when set.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
