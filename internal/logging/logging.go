// Package logging builds the service's zap logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/saulfrancisco-ruizacevedo/go-neosocial/internal/config"
)

// Options controls how the logger is assembled.
type Options struct {
	Level  string
	Format string // "json" or "console"
	// Debug forces the console encoder and debug level.
	Debug bool
	// File adds a rotating JSON sink when non-empty.
	File       string
	MaxSizeMB  int
	MaxBackups int
	// Output receives console/JSON entries; defaults to stdout.
	Output io.Writer
}

// OptionsFrom derives logger options from the service configuration.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Debug:      cfg.Debug,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	}
}

// New returns a logger writing to Output and, when configured, to a rotating file.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if opts.Debug {
		level.SetLevel(zap.DebugLevel)
	} else if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	format := opts.Format
	if opts.Debug {
		format = "console"
	}
	cores := []zapcore.Core{
		zapcore.NewCore(encoder(format), zapcore.Lock(zapcore.AddSync(out)), level),
	}

	if opts.File != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		})
		// File output is always JSON.
		cores = append(cores, zapcore.NewCore(encoder("json"), fileWriter, level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel)).Named("neosocial"), nil
}

func encoder(format string) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}
