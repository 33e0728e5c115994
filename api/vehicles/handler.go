package vehicles

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/ambulance-dispatch/core/model"
	vehiclestatus "github.com/kilianp07/ambulance-dispatch/core/vehiclestatus"
)

// NewStatusHandler returns an HTTP handler exposing vehicle status data via
// GET /api/vehicles/status. The status and station query parameters filter
// the result.
func NewStatusHandler(store vehiclestatus.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		status := r.URL.Query().Get("status")
		if status != "" {
			if _, ok := model.ParseVehicleStatus(status); !ok {
				http.Error(w, "invalid status: "+status, http.StatusBadRequest)
				return
			}
		}
		f := vehiclestatus.Filter{
			Status:  status,
			Station: model.NodeID(r.URL.Query().Get("station")),
		}
		entries := store.List(f)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
