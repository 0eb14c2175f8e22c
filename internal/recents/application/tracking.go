package application

import (
	"errors"
	"fmt"
)

// Tracked operation names, used in TrackingError.Op.
const (
	OpWrite = "write"
	OpRead  = "read"
)

// TrackingError reports that a tracked file operation succeeded but the
// registry could not be updated afterwards. Err is the registry failure.
type TrackingError struct {
	Op   string
	Path string
	Err  error
}

func (e *TrackingError) Error() string {
	return fmt.Sprintf("%s %s succeeded but recording it in recent files failed: %v", e.Op, e.Path, e.Err)
}

func (e *TrackingError) Unwrap() error {
	return e.Err
}

// IsTrackingError reports whether err is or wraps a *TrackingError.
func IsTrackingError(err error) bool {
	var te *TrackingError
	return errors.As(err, &te)
}
