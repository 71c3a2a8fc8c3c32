// Package geolocation provides the device-location capability used by the
// acquisition flow. A Locator blocks until it has a position or an error; it
// imposes no timeout of its own and stops only when its context ends.
package geolocation

import (
	"context"
	"errors"
	"fmt"

	"weatherwidget/internal/models"
)

// ErrUnsupported means no location capability is available at all
var ErrUnsupported = errors.New("geolocation is not supported")

// PositionErrorCode classifies why a position could not be obtained
type PositionErrorCode int

const (
	PermissionDenied PositionErrorCode = iota + 1
	PositionUnavailable
	Timeout
)

func (c PositionErrorCode) String() string {
	switch c {
	case PermissionDenied:
		return "permission_denied"
	case PositionUnavailable:
		return "position_unavailable"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// PositionError carries the provider's reason text for a failed lookup
type PositionError struct {
	Code    PositionErrorCode
	Message string
	Err     error
}

func (e *PositionError) Error() string {
	return e.Message
}

func (e *PositionError) Unwrap() error {
	return e.Err
}

// Locator obtains the current coordinates
type Locator interface {
	Locate(ctx context.Context) (models.Coordinates, error)
}

// LocatorFunc adapts a function to the Locator interface
type LocatorFunc func(ctx context.Context) (models.Coordinates, error)

// Locate calls f(ctx)
func (f LocatorFunc) Locate(ctx context.Context) (models.Coordinates, error) {
	return f(ctx)
}

// StaticLocator always reports the same position
type StaticLocator struct {
	Coordinates models.Coordinates
}

// NewStaticLocator creates a locator for fixed coordinates
func NewStaticLocator(c models.Coordinates) (*StaticLocator, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("static coordinates out of range: %s", c)
	}
	return &StaticLocator{Coordinates: c}, nil
}

// Locate returns the fixed position unless ctx is already done
func (s *StaticLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, contextError(err)
	}
	return s.Coordinates, nil
}

// DeniedLocator models a user who refuses the location permission
type DeniedLocator struct {
	Reason string
}

// Locate always fails with PermissionDenied
func (d DeniedLocator) Locate(context.Context) (models.Coordinates, error) {
	reason := d.Reason
	if reason == "" {
		reason = "User denied Geolocation"
	}
	return models.Coordinates{}, &PositionError{Code: PermissionDenied, Message: reason}
}

// contextError maps a finished context to a PositionError
func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &PositionError{Code: Timeout, Message: "Timeout expired", Err: err}
	}
	return &PositionError{Code: PositionUnavailable, Message: "Position acquisition aborted", Err: err}
}
