package logging

import (
	"context"
	"time"

	"github.com/kilianp07/ambulance-dispatch/core/model"
)

// LogRecord captures one successful dispatch of a run.
type LogRecord struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	model.DispatchRecord
}

// LogQuery defines filters for retrieving records. Zero values match
// everything; a ToTick of zero or less leaves the tick range unbounded.
type LogQuery struct {
	RunID     string
	VehicleID model.VehicleID
	CallID    int
	FromTick  int
	ToTick    int
}

// Match reports whether r satisfies the query filters.
func (q LogQuery) Match(r LogRecord) bool {
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.VehicleID != 0 && r.VehicleID != q.VehicleID {
		return false
	}
	if q.CallID != 0 && r.CallID != q.CallID {
		return false
	}
	if r.Tick < q.FromTick {
		return false
	}
	if q.ToTick > 0 && r.Tick > q.ToTick {
		return false
	}
	return true
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}
