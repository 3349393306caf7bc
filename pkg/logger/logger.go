// Package logger provides the shared zap logger used by zra binaries.
// Library packages return errors instead of logging; only the CLI layer
// writes log output.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a sugared production logger tagged with the service name.
func New(service string) *zap.SugaredLogger {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stderr"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.InitialFields = map[string]any{"service": service}
	config.DisableStacktrace = true

	log, err := config.Build()
	if err != nil {
		log = zap.NewNop()
	}

	return log.Sugar()
}
