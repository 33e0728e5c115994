package plugins

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ambulance-dispatch/config"
	dispatchlog "github.com/kilianp07/ambulance-dispatch/core/dispatch/logging"
	"github.com/kilianp07/ambulance-dispatch/core/model"
)

func TestBuiltinLogStores(t *testing.T) {
	assert.Equal(t, []string{"jsonl", "memory", "rotating", "sqlite"}, LogStoreTypes())

	dir := t.TempDir()
	cases := []config.LoggingConfig{
		{Backend: config.BackendMemory},
		{Backend: config.BackendJSONL, Path: filepath.Join(dir, "log.jsonl")},
		{Backend: config.BackendRotating, Path: filepath.Join(dir, "rot", "log.jsonl"), MaxSizeMB: 1},
		{Backend: config.BackendSQLite, Path: filepath.Join(dir, "log.db")},
	}
	for _, lc := range cases {
		t.Run(lc.Backend, func(t *testing.T) {
			store, err := NewLogStore(lc)
			require.NoError(t, err)
			defer store.Close()
			rec := dispatchlog.LogRecord{RunID: "r", DispatchRecord: model.DispatchRecord{Tick: 1, VehicleID: 2, CallID: 3}}
			require.NoError(t, store.Append(context.Background(), rec))
			got, err := store.Query(context.Background(), dispatchlog.LogQuery{RunID: "r"})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, 3, got[0].CallID)
		})
	}
}

func TestNewLogStoreUnknown(t *testing.T) {
	_, err := NewLogStore(config.LoggingConfig{Backend: "kafka"})
	assert.Error(t, err)
}
