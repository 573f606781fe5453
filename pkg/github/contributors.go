package github

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	contribPageSize = 100

	// Page cap: at most 2000 contributors per extraction, protecting quota
	// on huge repositories.
	maxContribPages = 20

	// Delay between paginated calls to avoid bursting even with ample quota.
	pageThrottle = 200 * time.Millisecond
)

// ExtractProgress reports incremental extraction progress: contributors
// collected so far and the remaining quota (-1 when unknown).
type ExtractProgress func(count, remaining int)

// Contributors extracts the full contributor list of a repository via
// paginated calls, anonymous contributors included.
//
// Bot accounts (type "Bot" or login containing "[bot]") are filtered out.
// Records without a login are normalized to anonymous aggregates. Extraction
// stops at end-of-data, at the page cap, or early with partial results when
// the quota guard trips between pages. A guard trip before the first page
// surfaces as an error since there is nothing to fall back on yet.
func (c *Client) Contributors(ctx context.Context, owner, repo string, onProgress ExtractProgress) ([]Contributor, error) {
	var all []Contributor

	for page := 1; page <= maxContribPages; page++ {
		// Cheaper pre-check than the fetch guard: lets pagination terminate
		// cleanly with partial results instead of an error. Page 1 goes
		// through the guarded fetch so exhaustion surfaces to the caller.
		if page > 1 && c.quota.ShouldGuard() {
			break
		}

		path := fmt.Sprintf("/repos/%s/%s/contributors?per_page=%d&page=%d&anon=1",
			owner, repo, contribPageSize, page)

		var records []Contributor
		if err := c.get(ctx, path, &records); err != nil {
			return all, err
		}
		if len(records) == 0 {
			break
		}

		for _, r := range records {
			if r.Type == "Bot" || strings.Contains(r.Login, "[bot]") {
				continue
			}
			if r.Login == "" {
				r.Login = "anonymous"
				r.IsAnonymous = true
			}
			all = append(all, r)
		}

		if onProgress != nil {
			remaining := -1
			if n, known := c.quota.Remaining(); known {
				remaining = n
			}
			onProgress(len(all), remaining)
		}

		if len(records) < contribPageSize {
			break
		}
		if page < maxContribPages {
			if err := sleepCtx(ctx, pageThrottle); err != nil {
				return all, err
			}
		}
	}

	return all, nil
}

// sleepCtx sleeps for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
