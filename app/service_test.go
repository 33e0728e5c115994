package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ambulance-dispatch/config"
	"github.com/kilianp07/ambulance-dispatch/core/dispatch"
	dispatchlog "github.com/kilianp07/ambulance-dispatch/core/dispatch/logging"
	"github.com/kilianp07/ambulance-dispatch/core/factory"
	coremetrics "github.com/kilianp07/ambulance-dispatch/core/metrics"
	"github.com/kilianp07/ambulance-dispatch/core/scenario"
	"github.com/kilianp07/ambulance-dispatch/core/vehiclestatus"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Simulation.RunID = "test-run"
	cfg.Logging.Backend = config.BackendJSONL
	cfg.Logging.Path = filepath.Join(t.TempDir(), "dispatch.jsonl")
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	cfg.API.Token = "tok"
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func twoCalls() scenario.Definition {
	return scenario.Definition{
		Name: "two calls",
		Edges: []scenario.Edge{
			{From: "S", To: "P", Weight: 3},
			{From: "P", To: "H", Weight: 4},
			{From: "S", To: "Q", Weight: 1},
		},
		Assignments: []scenario.Assignment{{Hospital: "H", Station: "S", TravelTime: 2}},
		Fleet:       []scenario.VehicleDef{{ID: 1, Location: "S"}},
		Calls: []scenario.CallDef{
			{ID: 1, Patient: "P", Hospital: "H"},
			{ID: 2, Patient: "Q", Hospital: "H"},
		},
	}
}

func TestServiceRun(t *testing.T) {
	svc, err := NewFromDefinition(testConfig(t), twoCalls())
	require.NoError(t, err)
	defer svc.Close()

	rep, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.Complete())
	assert.Equal(t, "test-run", rep.RunID)
	assert.Equal(t, 2, rep.Dispatched)
	require.Len(t, rep.Log, 2)
	assert.Equal(t, 5, rep.Log[1].Tick, "second call waits for the vehicle to return")

	recs, err := svc.Store.Query(context.Background(), dispatchlog.LogQuery{RunID: "test-run"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	st := svc.Status.List(vehiclestatus.Filter{})
	require.Len(t, st, 1)
	assert.Equal(t, 2, st[0].Dispatches)
}

func TestServiceHandler(t *testing.T) {
	svc, err := NewFromDefinition(testConfig(t), twoCalls())
	require.NoError(t, err)
	defer svc.Close()
	_, err = svc.Run(context.Background())
	require.NoError(t, err)

	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/dispatch/logs?call_id=2", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var recs []dispatchlog.LogRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recs))
	resp.Body.Close()
	require.Len(t, recs, 1)
	assert.Equal(t, 2, recs[0].CallID)

	resp, err = http.Get(srv.URL + "/api/vehicles/status?status=unavailable")
	require.NoError(t, err)
	var st []vehiclestatus.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	resp.Body.Close()
	assert.Len(t, st, 1)

	resp, err = http.Get(srv.URL + "/api/vehicles/1/kpis")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestServiceStartupErrors(t *testing.T) {
	def := twoCalls()
	def.Calls = append(def.Calls, scenario.CallDef{ID: 3, Patient: "Q", Hospital: "P"})
	_, err := NewFromDefinition(testConfig(t), def)
	assert.ErrorIs(t, err, dispatch.ErrUnknownHospitalStation)

	def = twoCalls()
	def.Fleet = nil
	_, err = NewFromDefinition(testConfig(t), def)
	assert.ErrorContains(t, err, "fleet is empty")

	cfg := testConfig(t)
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrNoScenario)

	cfg.Logging.Backend = "kafka"
	_, err = NewFromDefinition(cfg, twoCalls())
	assert.ErrorContains(t, err, "log store")
}

func TestNewLoadsScenarioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.json")
	b, err := json.Marshal(twoCalls())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))

	cfg := testConfig(t)
	cfg.Simulation.Scenario = path
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()
	rep, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Dispatched)
}

type closingSink struct {
	coremetrics.NopSink
	closed *int
}

func (c closingSink) Close() { *c.closed++ }

func TestServiceClosesSinkWhenMQTTFails(t *testing.T) {
	closed := 0
	_ = coremetrics.RegisterMetricsSink("closing-test", func(map[string]any) (coremetrics.MetricsSink, error) {
		return closingSink{closed: &closed}, nil
	})
	cfg := testConfig(t)
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "closing-test"}}
	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "dispatcher"
	cfg.MQTT.UseTLS = true

	_, err := NewFromDefinition(cfg, twoCalls())
	require.ErrorContains(t, err, "mqtt client")
	assert.Equal(t, 1, closed)
}
