// internal/utils/logger/config.go
package logger

import (
	"errors"

	"go.uber.org/zap/zapcore"
)

// Config describes the rotated JSON log file and the optional console mirror.
type Config struct {
	LogFile    string
	MaxSize    int // MB before rotation
	MaxAge     int // days to keep rotated files
	MaxBackups int
	Compress   bool
	// Development switches to debug level and the development encoder.
	Development bool
	// Quiet disables console output; the file still receives every entry.
	Quiet bool
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		LogFile:    "launchpad.log",
		MaxSize:    100,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
	}
}

func (c *Config) validate() error {
	if c.LogFile == "" {
		return errors.New("log file is required")
	}
	if c.MaxSize < 0 || c.MaxAge < 0 || c.MaxBackups < 0 {
		return errors.New("log rotation limits must not be negative")
	}
	return nil
}

func (c *Config) level() zapcore.Level {
	if c.Development {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
