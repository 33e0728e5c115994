package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := write(t, "config.yaml", `simulation:
  scenario: "city.yaml"
  max_ticks: 100
  run_id: "night-shift"
logging:
  backend: rotating
  path: "logs/dispatch.jsonl"
  max_size_mb: 5
  max_backups: 2
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "dispatcher"
  username: "user"
  password: "pass"
  ack_topic: "ambulance/+/ack"
  ack_timeout_ms: 2500
  qos:
    order: 1
metrics:
  sinks:
    - type: "nop"
    - type: "influx"
      conf:
        url: "http://localhost:8086"
api:
  addr: ":9000"
  token: "secret"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"scenario", cfg.Simulation.Scenario, "city.yaml"},
		{"max_ticks", cfg.Simulation.MaxTicks, 100},
		{"run_id", cfg.Simulation.RunID, "night-shift"},
		{"backend", cfg.Logging.Backend, BackendRotating},
		{"max_backups", cfg.Logging.MaxBackups, 2},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "dispatcher"},
		{"ack_topic", cfg.MQTT.AckTopic, "ambulance/+/ack"},
		{"ack_timeout", cfg.MQTT.AckTimeout(), 2500 * time.Millisecond},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "ambulance"},
		{"qos", cfg.MQTT.QoS["order"], byte(1)},
		{"sinks", len(cfg.Metrics.Sinks), 2},
		{"sink_type", cfg.Metrics.Sinks[1].Type, "influx"},
		{"sink_conf", cfg.Metrics.Sinks[1].Conf["url"], "http://localhost:8086"},
		{"api.addr", cfg.API.Addr, ":9000"},
		{"api.token", cfg.API.Token, "secret"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
	assert.Equal(t, 100, cfg.Simulation.Engine().MaxTicks)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(write(t, "config.json", `{"simulation":{"scenario":"s.json"}}`))
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Logging.Backend)
	assert.Empty(t, cfg.Logging.Path)
	assert.Equal(t, ":8080", cfg.API.Addr)
	assert.NotEmpty(t, cfg.Simulation.RunID)
	assert.Empty(t, cfg.MQTT.TopicPrefix, "prefix only defaults when a broker is set")

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Simulation.Scenario)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AMB_SIMULATION__MAX_TICKS", "42")
	t.Setenv("AMB_LOGGING__BACKEND", "sqlite")
	t.Setenv("AMB_LOGGING__PATH", "runs.db")
	t.Setenv("AMB_API__TOKEN", "from-env")
	cfg, err := Load(write(t, "config.yml", "simulation:\n  max_ticks: 5\n"))
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Simulation.MaxTicks)
	assert.Equal(t, BackendSQLite, cfg.Logging.Backend)
	assert.Equal(t, "runs.db", cfg.Logging.Path)
	assert.Equal(t, "from-env", cfg.API.Token)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(write(t, "config.toml", ""))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(write(t, "bad.yaml", "logging:\n  backend: kafka\n"))
	assert.ErrorContains(t, err, "unknown backend")

	_, err = Load(write(t, "neg.yaml", "simulation:\n  max_ticks: -1\n"))
	assert.ErrorContains(t, err, "max_ticks")

	_, err = Load(write(t, "mqtt.yaml", "mqtt:\n  broker: tcp://b:1883\n"))
	assert.ErrorContains(t, err, "client_id")

	_, err = Load(write(t, "sink.yaml", "metrics:\n  sinks:\n    - conf: {}\n"))
	assert.ErrorContains(t, err, "type is required")
}

func TestLoggingConfigDefaults(t *testing.T) {
	c := LoggingConfig{Backend: BackendJSONL}
	c.SetDefaults()
	assert.Equal(t, "dispatch.log", c.Path)
	assert.NoError(t, c.Validate())
	assert.Error(t, LoggingConfig{Backend: BackendRotating, Path: "x", MaxSizeMB: -1}.Validate())
}
