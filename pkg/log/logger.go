// Package log builds the zap logger used across the service
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects level, format and optional file output
type Config struct {
	// Level: debug, info, warn, error
	Level string

	// Encoding: json or console
	Encoding string

	// File enables a rotated log file next to stderr output
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	Development bool
}

// DefaultConfig is console output at info level
var DefaultConfig = Config{
	Level:      "info",
	Encoding:   "console",
	MaxSizeMB:  100,
	MaxBackups: 5,
	MaxAgeDays: 30,
}

// New creates a logger writing to stderr and, when cfg.File is set, to a
// lumberjack-rotated file.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	encoder, err := newEncoder(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)}
	if cfg.File != "" {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(Rotation(cfg)), level))
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}
	return zap.New(zapcore.NewTee(cores...), opts...), nil
}

// NewWithCore is New for tests and embedding callers that bring their own sink
func NewWithCore(core zapcore.Core) *zap.Logger {
	return zap.New(core, zap.AddCaller())
}

// Rotation returns the rotating file writer for cfg
func Rotation(cfg Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    orDefault(cfg.MaxSizeMB, DefaultConfig.MaxSizeMB),
		MaxBackups: orDefault(cfg.MaxBackups, DefaultConfig.MaxBackups),
		MaxAge:     orDefault(cfg.MaxAgeDays, DefaultConfig.MaxAgeDays),
		Compress:   true,
	}
}

func newEncoder(encoding string) (zapcore.Encoder, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	switch encoding {
	case "", "console":
		return zapcore.NewConsoleEncoder(encoderConfig), nil
	case "json":
		return zapcore.NewJSONEncoder(encoderConfig), nil
	}
	return nil, fmt.Errorf("invalid log encoding %q", encoding)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
