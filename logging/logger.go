// Package logging provides the process-wide structured logger, adapted from
// the teacher's utils/logger.go: a zap logger built once at startup, with a
// development encoder for local runs and a production JSON encoder otherwise.
package logging

import (
	"log"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// Init builds the global logger for the given environment ("production" or
// anything else). Safe to call once at startup; subsequent calls are no-ops.
func Init(env string) {
	once.Do(func() {
		var cfg zap.Config
		if env == "production" {
			cfg = zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		} else {
			cfg = zap.NewDevelopmentConfig()
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		built, err := cfg.Build()
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
		logger = built
	})
}

// L returns the global logger, initializing a development logger if Init was
// never called (mirrors the teacher's lazy GetLogger fallback).
func L() *zap.Logger {
	if logger == nil {
		Init("development")
	}
	return logger
}
