package plugins

import (
	"github.com/kilianp07/ambulance-dispatch/config"
	dispatchlog "github.com/kilianp07/ambulance-dispatch/core/dispatch/logging"
)

func init() {
	RegisterLogStore(config.BackendMemory, func(config.LoggingConfig) (dispatchlog.LogStore, error) {
		return dispatchlog.NewMemoryStore(), nil
	})
	RegisterLogStore(config.BackendJSONL, func(lc config.LoggingConfig) (dispatchlog.LogStore, error) {
		return dispatchlog.NewJSONLStore(lc.Path)
	})
	RegisterLogStore(config.BackendRotating, func(lc config.LoggingConfig) (dispatchlog.LogStore, error) {
		return dispatchlog.NewRotatingJSONLStore(lc.Path, lc.MaxSizeMB, lc.MaxBackups, lc.MaxAgeDays)
	})
	RegisterLogStore(config.BackendSQLite, func(lc config.LoggingConfig) (dispatchlog.LogStore, error) {
		return dispatchlog.NewSQLiteStore(lc.Path)
	})
}
