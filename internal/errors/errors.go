package errors

import (
	"errors"
	"fmt"
)

// Application-specific errors
var (
	// ErrNotCoordinate signals that free text did not look like a coordinate
	// pair at all and should be treated as a name query, not a parse failure.
	ErrNotCoordinate = errors.New("input is not a coordinate")

	// ErrDataUnavailable signals that the commune dataset has not loaded yet
	// or failed to load. Transient: resolution recovers once a load succeeds.
	ErrDataUnavailable = errors.New("commune data not loaded")

	ErrSessionNotFound = errors.New("session not found")
	ErrPointNotFound   = errors.New("point not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrRateLimit       = errors.New("rate limit exceeded")
)

// ParseError represents malformed coordinate input. Always user-correctable,
// never a system fault.
type ParseError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s: %s", e.Field, e.Reason)
}

// RangeError represents a numerically valid value outside geographic bounds.
// The value is never clamped; the caller must surface the failure.
type RangeError struct {
	Axis  string  `json:"axis"` // latitude, longitude, minutes, seconds
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

func (e RangeError) Error() string {
	return fmt.Sprintf("%s %g out of range [%g, %g]", e.Axis, e.Value, e.Min, e.Max)
}

// DatasetError wraps a failure to load the commune dataset from a source.
type DatasetError struct {
	Source string
	Err    error
}

func (e DatasetError) Error() string {
	return fmt.Sprintf("dataset load from %s failed: %v", e.Source, e.Err)
}

func (e DatasetError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe ParseError
	return errors.As(err, &pe)
}

// IsRangeError reports whether err is (or wraps) a RangeError.
func IsRangeError(err error) bool {
	var re RangeError
	return errors.As(err, &re)
}
