package domain

import (
	"errors"
	"fmt"
)

// ErrConfig marks configuration failures that abort a run in every mode.
var ErrConfig = errors.New("configuration error")

// ConfigError reports a missing or malformed configuration source.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is reports ErrConfig for every ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// ScanError reports a file that could not be read during a walk.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// ExitError carries the process exit status for a finished command.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) ExitCode() int { return e.Code }
