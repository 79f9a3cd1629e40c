// Package logging builds the process logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger at level. Development mode logs human-readable
// console output; otherwise JSON. The returned level can be changed at runtime.
func New(level string, development bool) (*zap.Logger, zap.AtomicLevel, error) {
	atomic := zap.NewAtomicLevel()
	if err := SetLevel(atomic, level); err != nil {
		return nil, atomic, err
	}

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = atomic

	logger, err := cfg.Build()
	if err != nil {
		return nil, atomic, fmt.Errorf("build logger: %w", err)
	}
	return logger, atomic, nil
}

// SetLevel parses level and applies it
func SetLevel(atomic zap.AtomicLevel, level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	atomic.SetLevel(lvl)
	return nil
}
