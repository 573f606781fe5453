package github

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Safety-buffer policy: keep 10% of the quota window in reserve, never less
// than 5 requests.
const (
	safetyPercent    = 10
	minSafeRemaining = 5
)

// QuotaTracker holds the mutable view of the current credential's rate-limit
// window, derived from the x-ratelimit-* headers of the most recent response.
// One tracker exists per active credential; swapping credentials resets it
// since quota pools are independent.
//
// All methods are safe for concurrent use.
type QuotaTracker struct {
	mu sync.Mutex

	credKey string

	remaining      int
	remainingKnown bool
	limit          int
	limitKnown     bool
	resetAt        time.Time
	resetKnown     bool
}

// QuotaSnapshot is a point-in-time copy of the tracker state.
// Remaining and Limit are -1 when unknown.
type QuotaSnapshot struct {
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetAt   time.Time `json:"reset_at,omitzero"`
}

// NewQuotaTracker creates a tracker bound to the given credential key.
// The key is opaque; use the token itself or a hash of it.
func NewQuotaTracker(credentialKey string) *QuotaTracker {
	return &QuotaTracker{credKey: credentialKey}
}

// Observe updates the tracker from response headers. Missing headers leave
// the corresponding field untouched, so state never regresses to unknown
// once observed.
func (q *QuotaTracker) Observe(h http.Header) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if v := h.Get("x-ratelimit-remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.remaining = n
			q.remainingKnown = true
		}
	}
	if v := h.Get("x-ratelimit-limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.limit = n
			q.limitKnown = true
		}
	}
	if v := h.Get("x-ratelimit-reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.resetAt = time.Unix(epoch, 0)
			q.resetKnown = true
		}
	}
}

// ResetCredential clears all quota state if key differs from the stored
// credential key. Re-supplying the same key leaves state untouched.
func (q *QuotaTracker) ResetCredential(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if key == q.credKey {
		return
	}
	q.credKey = key
	q.remaining = 0
	q.remainingKnown = false
	q.limit = 0
	q.limitKnown = false
	q.resetAt = time.Time{}
	q.resetKnown = false
}

// SafetyBuffer returns the reserve below which calls are refused:
// max(limit/10, 5) when the limit is known, otherwise 5.
func (q *QuotaTracker) SafetyBuffer() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.safetyBufferLocked()
}

func (q *QuotaTracker) safetyBufferLocked() int {
	if q.limitKnown {
		return max(q.limit/safetyPercent, minSafeRemaining)
	}
	return minSafeRemaining
}

// ShouldGuard reports whether the next call should be refused: remaining is
// known and at or under the safety buffer. Unknown state never guards.
func (q *QuotaTracker) ShouldGuard() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.remainingKnown && q.remaining <= q.safetyBufferLocked()
}

// Remaining returns the last observed remaining count and whether it is known.
func (q *QuotaTracker) Remaining() (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.remaining, q.remainingKnown
}

// UntilReset returns the time until the quota window resets, zero when the
// reset time is unknown or already past.
func (q *QuotaTracker) UntilReset() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.resetKnown {
		return 0
	}
	return max(time.Until(q.resetAt), 0)
}

// Snapshot returns a copy of the current state for progress reporting.
func (q *QuotaTracker) Snapshot() QuotaSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := QuotaSnapshot{Remaining: -1, Limit: -1}
	if q.remainingKnown {
		s.Remaining = q.remaining
	}
	if q.limitKnown {
		s.Limit = q.limit
	}
	if q.resetKnown {
		s.ResetAt = q.resetAt
	}
	return s
}
