package github

import (
	"errors"
	"fmt"
	"time"
)

// GuardError is the self-imposed stop issued before a call would dip into
// the safety buffer. It is always recoverable by waiting for the quota
// window to reset or by supplying a credential with more headroom.
type GuardError struct {
	Remaining int
	ResetIn   time.Duration
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("rate limit guard: only %d requests left, resets in ~%d min",
		e.Remaining, ceilMinutes(e.ResetIn))
}

// RateLimitError means the upstream API itself rejected the call (403/429).
type RateLimitError struct {
	ResetIn  time.Duration
	HasReset bool
}

func (e *RateLimitError) Error() string {
	if e.HasReset {
		return fmt.Sprintf("rate limited by GitHub, resets in ~%d min", ceilMinutes(e.ResetIn))
	}
	return "rate limited by GitHub, wait a moment and try again"
}

// APIError is any other non-success HTTP status from the API.
type APIError struct {
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error: %d %s", e.StatusCode, e.Status)
}

// IsGuard reports whether err is a self-imposed guard stop.
func IsGuard(err error) bool {
	return errors.As(err, new(*GuardError))
}

// IsRateLimited reports whether err is an upstream rate-limit rejection.
func IsRateLimited(err error) bool {
	return errors.As(err, new(*RateLimitError))
}

// ceilMinutes converts d to whole minutes, rounded up, never negative.
func ceilMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Minute - 1) / time.Minute)
}
