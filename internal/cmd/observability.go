package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/runsheethq/runsheet/internal/log"
	"github.com/runsheethq/runsheet/internal/metrics"
	"github.com/runsheethq/runsheet/internal/version"
)

// setupObservability configures logging and metrics.
// It returns a cleanup function that should be deferred by the caller.
func setupObservability(ctx context.Context) func() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Unable to load config for observability: %v\n", err)
		cfg = defaultGlobalConfig()
	}

	logCleanup := setupLogging(cfg)
	metrics.InitDefault()

	return logCleanup
}

func setupLogging(cfg *GlobalConfig) func() {
	info := version.GetInfo()

	level := getLogLevel(cfg)
	format := getLogFormat()
	loggerOutput, _, fileCleanup := configureLogOutput(cfg)

	logger := log.New(log.Config{
		Level:          log.ParseLevel(level),
		Format:         log.ParseFormat(format),
		Output:         loggerOutput,
		AddSource:      false,
		ServiceName:    "runsheet",
		ServiceVersion: info.Version,
	})

	log.SetDefaultLogger(logger)

	// Note: We intentionally don't log initialization to stdout
	// as it clutters the user experience. File logging captures this if enabled.

	return fileCleanup
}

func getLogLevel(cfg *GlobalConfig) string {
	if env := os.Getenv("RUNSHEET_LOG_LEVEL"); env != "" {
		return env
	}
	if cfg != nil && cfg.Logging.Level != "" {
		return cfg.Logging.Level
	}
	return "info"
}

func getLogFormat() string {
	if env := os.Getenv("RUNSHEET_LOG_FORMAT"); env != "" {
		return env
	}
	return "json"
}

func configureLogOutput(cfg *GlobalConfig) (log.Output, string, func()) {
	var writers []io.Writer

	// Only write to stdout if explicitly requested via environment variable
	// This keeps the CLI output clean by default
	if os.Getenv("RUNSHEET_LOG_STDOUT") == "true" {
		writers = append(writers, os.Stdout)
	}

	var file *os.File
	var filePath string
	if cfg != nil && cfg.Logging.EnableFile {
		dir := cfg.Logging.LogDir
		if dir == "" {
			dir = defaultLogDir()
		}
		dir = expandPath(dir)
		if err := os.MkdirAll(dir, 0o750); err == nil {
			path := filepath.Join(dir, "runsheet.log")
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err == nil {
				file = f
				filePath = path
				writers = append(writers, f)
			}
		}
	}

	// If no writers configured (no stdout, no file), default to discard
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	output := log.NewOutput(io.MultiWriter(writers...))
	cleanup := func() {
		if file != nil {
			_ = file.Close()
		}
	}
	return output, filePath, cleanup
}

func defaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.runsheet/logs"
	}
	return filepath.Join(home, ".runsheet", "logs")
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
