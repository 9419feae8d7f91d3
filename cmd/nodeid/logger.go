package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger adapts a zap logger to the logging.Logger interface.
type zapLogger struct {
	log *zap.Logger
}

// newZapLogger returns a JSON production logger that writes debug messages
// only if debug is true.
func newZapLogger(debug bool) (*zapLogger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &zapLogger{log}, nil
}

func (l *zapLogger) Log(f string, v ...interface{}) {
	l.log.Info(fmt.Sprintf(f, v...))
}

func (l *zapLogger) LogString(s string) {
	l.log.Info(s)
}

func (l *zapLogger) Debug(f string, v ...interface{}) {
	if ce := l.log.Check(zapcore.DebugLevel, ""); ce != nil {
		ce.Message = fmt.Sprintf(f, v...)
		ce.Write()
	}
}

func (l *zapLogger) DebugString(s string) {
	l.log.Debug(s)
}

func (l *zapLogger) IsDebug() bool {
	return l.log.Core().Enabled(zapcore.DebugLevel)
}

func (l *zapLogger) Sync() {
	l.log.Sync() // nolint:errcheck
}
