// Package logger provides structured logging on top of zerolog.
//
// Loggers take an optional field map on every call and can be scoped to a
// component:
//
//	log := logger.GetGlobalLogger().WithComponent("identify")
//	log.Info("label identified", map[string]interface{}{"label": "SPEAKER_01"})
//
// Format "auto" selects the console writer when the output is a terminal and
// JSON otherwise.
package logger
