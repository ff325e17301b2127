package model

import "fmt"

// ConnectorError wraps a per-provider failure. It is never fatal to a
// sync cycle; the aggregator records it and omits that provider's data.
type ConnectorError struct {
	Provider string
	Cause    error
}

func (e *ConnectorError) Error() string {
	return fmt.Sprintf("connector %s: %v", e.Provider, e.Cause)
}

func (e *ConnectorError) Unwrap() error {
	return e.Cause
}

// NormalizationError reports a per-instance mapping failure. Callers
// recover via the documented fallbacks (unknown GPU type, default rate).
type NormalizationError struct {
	Provider   string
	InstanceID string
	Field      string
	Cause      error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s/%s field %q: %v", e.Provider, e.InstanceID, e.Field, e.Cause)
}

func (e *NormalizationError) Unwrap() error {
	return e.Cause
}

// ConfigurationError is the only fatal error class. Invalid thresholds
// are rejected eagerly, before the first snapshot is produced.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Field, e.Reason)
}

// InsufficientDataError signals the forecaster had too little history.
// It is informational: the forecaster still returns a degraded result.
type InsufficientDataError struct {
	Needed int
	Got    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient history: need %d periods, have %d", e.Needed, e.Got)
}
