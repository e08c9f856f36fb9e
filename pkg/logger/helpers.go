package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogFollowResult logs the outcome of a single follow attempt
func LogFollowResult(l Logger, target, track string, success bool, reason string) {
	fields := map[string]interface{}{
		"target":  target,
		"track":   track,
		"success": success,
		"reason":  reason,
	}
	if success {
		l.InfoWithFields("Follow attempt finished", fields)
		return
	}
	l.DebugWithFields("Follow attempt finished", fields)
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	entry := l.WithField("component", component)
	if len(config) > 0 {
		entry = entry.WithFields(config)
	}
	entry.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(l Logger, component string, reason string) {
	l.WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (n nopLogger) Debug(string)                                       {}
func (n nopLogger) Info(string)                                        {}
func (n nopLogger) Warn(string)                                        {}
func (n nopLogger) Error(string)                                       {}
func (n nopLogger) WithField(string, interface{}) Logger               { return n }
func (n nopLogger) WithFields(map[string]interface{}) Logger           { return n }
func (n nopLogger) WithError(error) Logger                             { return n }
func (n nopLogger) WithContext(context.Context) Logger                 { return n }
func (n nopLogger) DebugWithFields(string, map[string]interface{})     {}
func (n nopLogger) InfoWithFields(string, map[string]interface{})      {}
func (n nopLogger) WarnWithFields(string, map[string]interface{})      {}
func (n nopLogger) ErrorWithFields(string, map[string]interface{})     {}
func (n nopLogger) GetZerolog() *zerolog.Logger                        { nop := zerolog.Nop(); return &nop }
