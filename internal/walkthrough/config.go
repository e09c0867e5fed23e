// Package walkthrough drives complete visitor journeys against a running
// CineMind API and checks the user-visible guarantees of each page.
package walkthrough

import (
	"sync/atomic"
	"time"
)

// Config holds configuration for a walkthrough run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Visitors int           // Number of concurrent visitor journeys
	Workers  int           // Number of concurrent workers
	Queries  []string      // Search queries typed during onboarding
	Watch    int           // Cards marked watched on the home page
	Timeout  time.Duration // HTTP request timeout
	LogFile  string        // Log file for run output
	Verbose  bool          // Enable verbose logging
}

// Stats holds run statistics. Counters are updated concurrently.
type Stats struct {
	JourneysStarted   atomic.Int64
	JourneysCompleted atomic.Int64
	JourneysFailed    atomic.Int64
	Requests          atomic.Int64
	Violations        atomic.Int64
	EmptyFeeds        atomic.Int64
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
