package dispatch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kilianp07/ambulance-dispatch/core/dispatch/logging"
	"github.com/kilianp07/ambulance-dispatch/core/model"
)

// NewLogHandler returns an HTTP handler exposing dispatch logs via GET /api/dispatch/logs.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
//
// Supported filters: run_id, vehicle_id, call_id, from_tick, to_tick.
func NewLogHandler(store logging.LogStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []logging.LogRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func parseQuery(r *http.Request) (logging.LogQuery, error) {
	v := r.URL.Query()
	q := logging.LogQuery{RunID: v.Get("run_id")}
	ints := []struct {
		name string
		dst  *int
	}{
		{"call_id", &q.CallID},
		{"from_tick", &q.FromTick},
		{"to_tick", &q.ToTick},
	}
	for _, p := range ints {
		s := v.Get(p.name)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("invalid %s: %q", p.name, s)
		}
		*p.dst = n
	}
	if s := v.Get("vehicle_id"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("invalid vehicle_id: %q", s)
		}
		q.VehicleID = model.VehicleID(n)
	}
	return q, nil
}
