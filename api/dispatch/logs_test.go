package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kilianp07/ambulance-dispatch/core/dispatch/logging"
	"github.com/kilianp07/ambulance-dispatch/core/model"
)

type failingStore struct{ logging.MemoryStore }

func (*failingStore) Query(context.Context, logging.LogQuery) ([]logging.LogRecord, error) {
	return nil, errors.New("boom")
}

func seeded(t *testing.T) logging.LogStore {
	t.Helper()
	store := logging.NewMemoryStore()
	recs := []logging.LogRecord{
		{RunID: "r1", DispatchRecord: model.DispatchRecord{Tick: 0, VehicleID: 1, CallID: 1}},
		{RunID: "r1", DispatchRecord: model.DispatchRecord{Tick: 3, VehicleID: 2, CallID: 2}},
		{RunID: "r2", DispatchRecord: model.DispatchRecord{Tick: 5, VehicleID: 1, CallID: 3}},
	}
	for _, r := range recs {
		if err := store.Append(context.Background(), r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return store
}

func get(h http.Handler, url, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestLogHandler_AuthAndFilters(t *testing.T) {
	h := NewLogHandler(seeded(t), "tok")

	rr := get(h, "/api/dispatch/logs?vehicle_id=1", "tok")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []logging.LogRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}

	rr = get(h, "/api/dispatch/logs?run_id=r1&from_tick=1&to_tick=4", "tok")
	out = nil
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	if len(out) != 1 || out[0].CallID != 2 {
		t.Fatalf("unexpected records %#v", out)
	}

	// unauthorized
	rr = get(h, "/api/dispatch/logs", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestLogHandler_BadRequest(t *testing.T) {
	h := NewLogHandler(seeded(t), "")
	for _, url := range []string{
		"/api/dispatch/logs?vehicle_id=abc",
		"/api/dispatch/logs?call_id=x",
		"/api/dispatch/logs?from_tick=1.5",
	} {
		if rr := get(h, url, ""); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400 got %d", url, rr.Code)
		}
	}
	req := httptest.NewRequest(http.MethodPost, "/api/dispatch/logs", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}
}

func TestLogHandler_EmptyAndStoreError(t *testing.T) {
	rr := get(NewLogHandler(logging.NewMemoryStore(), ""), "/api/dispatch/logs", "")
	if rr.Body.String() != "[]\n" {
		t.Fatalf("expected empty array got %s", rr.Body.String())
	}
	rr = get(NewLogHandler(&failingStore{}, ""), "/api/dispatch/logs", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rr.Code)
	}
}
