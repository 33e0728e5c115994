package vehicles

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/kilianp07/ambulance-dispatch/core/dispatch/logging"
	"github.com/kilianp07/ambulance-dispatch/core/model"
)

// Summary aggregates the dispatches of one vehicle.
type Summary struct {
	VehicleID          model.VehicleID `json:"vehicle_id"`
	Dispatches         int             `json:"dispatches"`
	TotalCostToPatient float64         `json:"total_cost_to_patient"`
	MeanCostToPatient  float64         `json:"mean_cost_to_patient"`
	LastTick           int             `json:"last_tick"`
	Hospitals          map[string]int  `json:"hospitals"`
}

// NewKPIHandler exposes per-vehicle dispatch figures via
// GET /api/vehicles/{id}/kpis, optionally restricted with run_id.
func NewKPIHandler(store logging.LogStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		path := strings.TrimPrefix(r.URL.Path, "/api/vehicles/")
		parts := strings.Split(path, "/")
		if len(parts) < 2 || parts[1] != "kpis" {
			http.NotFound(w, r)
			return
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil || id <= 0 {
			http.Error(w, "invalid vehicle id", http.StatusBadRequest)
			return
		}
		recs, err := store.Query(r.Context(), logging.LogQuery{
			RunID:     r.URL.Query().Get("run_id"),
			VehicleID: model.VehicleID(id),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := Summary{VehicleID: model.VehicleID(id), LastTick: -1, Hospitals: map[string]int{}}
		for _, rec := range recs {
			out.Dispatches++
			out.TotalCostToPatient += rec.CostToPatient
			out.Hospitals[string(rec.Hospital)]++
			if rec.Tick > out.LastTick {
				out.LastTick = rec.Tick
			}
		}
		if out.Dispatches > 0 {
			out.MeanCostToPatient = out.TotalCostToPatient / float64(out.Dispatches)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})
}
