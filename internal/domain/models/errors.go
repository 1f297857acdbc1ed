package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInsufficientData means the series is shorter than a required window.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidModelInput means a model precondition does not hold.
	ErrInvalidModelInput = errors.New("invalid model input")
	// ErrUpstreamUnavailable means the market data provider failed or returned nothing usable.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrEmptySeries means the provider answered but with zero bars.
	ErrEmptySeries = errors.New("empty series")
)

// UnavailableError reports that no instrument could be served and when it is
// worth asking again.
type UnavailableError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%v (retry after %s)", e.Err, e.RetryAfter)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
