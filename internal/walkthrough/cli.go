package walkthrough

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/cinemind/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends structured logs to stdout and logFile. If logFile is empty,
// a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		logFile = "walkthrough_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return file, nil
}

// ShowHelp prints usage information for the walkthrough tool.
func ShowHelp() {
	os.Stdout.WriteString(`CineMind Walkthrough
====================

Drives concurrent visitor journeys (landing, sign-in, onboarding, home,
profile) against a running CineMind API and checks every page it sees.

Usage:
  go run ./cmd/walkthrough [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -visitors int
        Number of visitor journeys (default 20)
  -workers int
        Number of concurrent workers (default CPU cores)
  -queries string
        Comma-separated onboarding searches (default "the,in,man,star,love")
  -watch int
        Home cards to mark watched per visitor (default 3)
  -timeout duration
        HTTP request timeout (default 15s)
  -log string
        Log file for run output (default: walkthrough_TIMESTAMP.log)
  -verbose
        Enable debug logging and progress reports
  -help
        Show this help message

Examples:
  go run ./cmd/walkthrough -visitors 200 -workers 16
  go run ./cmd/walkthrough -queries "dark,night" -watch 5 -verbose
`)
}
