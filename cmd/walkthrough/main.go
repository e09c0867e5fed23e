package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/okian/cinemind/internal/walkthrough"
)

// Default configuration constants.
const (
	defaultVisitors   = 20
	defaultWatch      = 3
	defaultQueries    = "the,in,man,star,love"
	defaultTimeout    = 15 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		visitors = flag.Int("visitors", defaultVisitors, "Number of visitor journeys")
		workers  = flag.Int("workers", runtime.NumCPU(), "Number of concurrent workers")
		queries  = flag.String("queries", defaultQueries, "Comma-separated onboarding searches")
		watch    = flag.Int("watch", defaultWatch, "Home cards to mark watched per visitor")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile  = flag.String("log", "", "Log file for run output (default: walkthrough_TIMESTAMP.log)")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		walkthrough.ShowHelp()
		return
	}

	closer, err := walkthrough.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &walkthrough.Config{
		BaseURL:  strings.TrimRight(*baseURL, "/"),
		Visitors: *visitors,
		Workers:  *workers,
		Queries:  splitQueries(*queries),
		Watch:    *watch,
		Timeout:  *timeout,
		LogFile:  *logFile,
		Verbose:  *verbose,
	}

	if _, err := walkthrough.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Walkthrough failed: " + err.Error() + "\n")
		cancel()
		_ = closer.Close()
		os.Exit(1)
	}
}

func splitQueries(s string) []string {
	var out []string
	for _, q := range strings.Split(s, ",") {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}
