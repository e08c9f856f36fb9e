// Package logger provides the structured logging interface used across twfollow.
//
// It wraps zerolog with a small Logger interface supporting leveled messages,
// structured fields and a process-wide logger initialised from
// config.LoggingConfig:
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	logger.WithField("target", "jack").Info("Following")
//
// Components receive a Logger through their constructors; tests pass a
// TestLogger and assert on the captured messages.
package logger
