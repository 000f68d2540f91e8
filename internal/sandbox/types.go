package sandbox

import (
	"context"
	"time"

	"github.com/2926295173/never-jscore/internal/disguise"
)

// Config defines sandbox configuration.
type Config struct {
	Timeout       time.Duration     // Execution timeout per script
	FetchTimeout  time.Duration     // Hard timeout for fetch requests
	MaxCallStack  int               // Maximum JS call stack depth
	EnableConsole bool              // Capture console.log/warn/error/info
	EnableWebAPIs bool              // Install Web API emulations
	Disguise      bool              // Run the disguise bootstrap
	Catalog       *disguise.Catalog // Protection catalog override (nil = defaults)
}

// Result holds execution result.
type Result struct {
	Value    interface{}   // Exported return value
	Console  []LogEntry    // Captured console output
	Duration time.Duration // Execution time
	Error    error         // Execution error
}

// LogEntry represents captured console output.
type LogEntry struct {
	Level   string    // log, warn, error, info
	Message string    // Log message
	Time    time.Time // Timestamp
}

// Sandbox defines the JavaScript execution interface.
type Sandbox interface {
	Execute(ctx context.Context, script string) (*Result, error)
	Reset() error
	Close() error
}

// DefaultConfig returns the default sandbox configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		FetchTimeout:  10 * time.Second,
		MaxCallStack:  1024,
		EnableConsole: true,
		EnableWebAPIs: true,
		Disguise:      true,
	}
}
