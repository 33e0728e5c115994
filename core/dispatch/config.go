package dispatch

// Config defines engine settings that are not part of the simulation inputs.
type Config struct {
	// MaxTicks bounds Run. Zero means unbounded.
	MaxTicks int `json:"max_ticks"`
	// RunID tags log records, metrics and orders of this run.
	RunID string `json:"run_id"`
}
