package dispatch

import "github.com/kilianp07/ambulance-dispatch/core/model"

// Report is the end-of-run accounting. A non-empty Backlog means the fleet
// could not serve every call within the run and must not be read as success.
type Report struct {
	RunID      string                 `json:"run_id"`
	Ticks      int                    `json:"ticks"`
	Ingested   int                    `json:"ingested"`
	Dispatched int                    `json:"dispatched"`
	Backlog    []model.EmergencyCall  `json:"backlog"`
	Rejected   []RejectedCall         `json:"rejected"`
	Fleet      []model.Vehicle        `json:"fleet"`
	Log        []model.DispatchRecord `json:"log"`
}

// Complete reports whether every ingested call was dispatched.
func (r Report) Complete() bool { return len(r.Backlog) == 0 }

// Report builds the accounting of the run so far.
func (e *Engine) Report() Report {
	return Report{
		RunID:      e.cfg.RunID,
		Ticks:      e.tick,
		Ingested:   e.ingested,
		Dispatched: e.dispatched,
		Backlog:    e.Backlog(),
		Rejected:   e.Rejected(),
		Fleet:      e.Fleet(),
		Log:        e.Log(),
	}
}
