package logger

import corelogger "github.com/kilianp07/ambulance-dispatch/core/logger"

// Logger is the core logger interface, re-exported so callers wiring infra
// components need a single import.
type Logger = corelogger.Logger

// NopLogger discards everything. Tests and the QA runner use it to keep
// dispatch output quiet.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Infow(string, map[string]any)  {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns the zerolog-backed Logger tagged with component, e.g.
// "dispatch" or "mqtt_client". APP_ENV=dev switches to console output
// and LOG_LEVEL sets the minimum level.
func New(component string) Logger {
	return NewZerologLogger(component)
}
