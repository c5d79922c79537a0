package export

import (
	"errors"
	"fmt"
	"strings"
)

// Lifecycle misuse errors. Writing to a stopped pipeline is programmer error
// in the driving code, not a recoverable condition.
var (
	ErrNotStarted     = errors.New("export: pipeline not started")
	ErrAlreadyStarted = errors.New("export: pipeline already started")
	ErrStopped        = errors.New("export: pipeline is stopped")
)

// ConfigError indicates an invalid pipeline configuration: an unknown export
// format, conflicting options, or an export target that cannot be used.
type ConfigError struct {
	Msg   string
	Valid []string
}

func (e *ConfigError) Error() string {
	if len(e.Valid) > 0 {
		return fmt.Sprintf("export: %s, valid values: %s", e.Msg, strings.Join(e.Valid, ", "))
	}
	return "export: " + e.Msg
}

// StopFetchError signals that enough rows have been collected and the caller
// should stop requesting further pages. It is cooperative backpressure, not a
// failure: output already written remains valid and Stop must still be called
// so the sink is closed cleanly.
type StopFetchError struct {
	Reason    string
	Processed int
}

func (e *StopFetchError) Error() string {
	return fmt.Sprintf("export: stop fetch after %d rows: %s", e.Processed, e.Reason)
}
