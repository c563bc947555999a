package logging

import (
	"fmt"
	"os"
	"strings"

	cblog "github.com/charmbracelet/log"
)

// Setup configures the default charmbracelet logger to write to a file so
// command output stays clean JSON. The file path is taken from
// ARGOFLEET_LOG_FILE, falling back to a temp file whose path is exported via
// the same variable for later inspection.
func Setup() {
	var f *os.File
	var err error

	if path := os.Getenv("ARGOFLEET_LOG_FILE"); path != "" {
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	} else {
		f, err = os.CreateTemp("", "argofleet-*.log")
		if err == nil {
			_ = os.Setenv("ARGOFLEET_LOG_FILE", f.Name())
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return
	}

	logger := cblog.NewWithOptions(f, cblog.Options{ReportTimestamp: true})
	logger.SetLevel(levelFromEnv())
	cblog.SetDefault(logger)

	cblog.With("component", "app").Info("argofleet started", "logFile", f.Name())
}

func levelFromEnv() cblog.Level {
	switch strings.ToUpper(os.Getenv("ARGOFLEET_LOG_LEVEL")) {
	case "DEBUG":
		return cblog.DebugLevel
	case "WARN":
		return cblog.WarnLevel
	case "ERROR":
		return cblog.ErrorLevel
	case "FATAL":
		return cblog.FatalLevel
	default:
		return cblog.InfoLevel
	}
}
