package logutils

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger at the given level writing to file, or to stderr
// when file is empty. The returned func flushes buffered entries.
//
// The level parameter can be one of: debug, info, warn, error.
func New(level string, file string) (*zap.Logger, func(), error) {
	closer := func() {}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, closer, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, closer, fmt.Errorf("create logs dir: %w", err)
		}
		cfg.OutputPaths = []string{file}
		cfg.ErrorOutputPaths = []string{file}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, closer, err
	}
	closer = func() { _ = logger.Sync() }
	return logger, closer, nil
}
