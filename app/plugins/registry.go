package plugins

import (
	"fmt"
	"sort"

	"github.com/kilianp07/ambulance-dispatch/config"
	dispatchlog "github.com/kilianp07/ambulance-dispatch/core/dispatch/logging"
)

// LogStoreFactory builds a dispatch log store from the logging section.
type LogStoreFactory func(cfg config.LoggingConfig) (dispatchlog.LogStore, error)

var LogStores = map[string]LogStoreFactory{}

func RegisterLogStore(name string, f LogStoreFactory) { LogStores[name] = f }

// LogStoreTypes lists the registered backends in order.
func LogStoreTypes() []string {
	out := make([]string, 0, len(LogStores))
	for name := range LogStores {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NewLogStore builds the backend selected by cfg.Backend.
func NewLogStore(cfg config.LoggingConfig) (dispatchlog.LogStore, error) {
	f, ok := LogStores[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown log store backend %q", cfg.Backend)
	}
	return f(cfg)
}
