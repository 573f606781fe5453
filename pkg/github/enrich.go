package github

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// Profiles are fetched in fixed-size batches: bounded concurrency while
	// still parallelizing within a batch.
	enrichBatchSize = 5

	// Delay between batches, same pacing as pagination.
	batchThrottle = 200 * time.Millisecond
)

// EnrichProgress reports enrichment progress after every batch. The snapshot
// is always a full-length, order-preserving copy of the working list:
// processed prefix plus the as-yet-unprocessed tail, anonymous contributors
// at the end.
type EnrichProgress func(done, total int, snapshot []Contributor)

// Enrich merges public profile fields into each non-anonymous contributor.
//
// Anonymous contributors are excluded from fetching entirely and appended to
// the result unchanged with Enriched false. Each batch member's failure is
// isolated: a failed lookup marks only that contributor unenriched. A quota
// guard trip mid-stream marks the unprocessed tail unenriched, emits a final
// progress tick, and returns gracefully; a guard trip before any work is a
// hard error since there are no partial results yet. ctrl may be nil to run
// without pause support.
func (c *Client) Enrich(ctx context.Context, contributors []Contributor, ctrl *Control, onProgress EnrichProgress) ([]Contributor, error) {
	var real, anon []Contributor
	for _, contrib := range contributors {
		if contrib.IsAnonymous || contrib.Login == "anonymous" {
			contrib.Enriched = false
			anon = append(anon, contrib)
		} else {
			real = append(real, contrib)
		}
	}

	if len(real) > 0 && c.quota.ShouldGuard() {
		return nil, c.guardErr()
	}

	out := make([]Contributor, len(real))
	copy(out, real)
	total := len(real)

	snapshot := func() []Contributor {
		s := make([]Contributor, 0, len(out)+len(anon))
		s = append(s, out...)
		s = append(s, anon...)
		return s
	}

	for start := 0; start < total; start += enrichBatchSize {
		if ctrl != nil {
			if err := ctrl.WaitReady(ctx); err != nil {
				return nil, err
			}
		}

		// Graceful degradation mid-stream: stamp the tail and stop.
		if start > 0 && c.quota.ShouldGuard() {
			for i := start; i < total; i++ {
				out[i].Enriched = false
			}
			if onProgress != nil {
				onProgress(start, total, snapshot())
			}
			break
		}

		end := min(start+enrichBatchSize, total)

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				profile, err := c.User(gctx, out[i].Login)
				if err != nil {
					out[i].Enriched = false
					return nil
				}
				merge(&out[i], profile)
				return nil
			})
		}
		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if onProgress != nil {
			onProgress(end, total, snapshot())
		}

		if end < total {
			if err := sleepCtx(ctx, batchThrottle); err != nil {
				return nil, err
			}
		}
	}

	return snapshot(), nil
}

// merge copies profile fields onto a contributor and marks it enriched.
// The email field participates so a public profile email rides along.
func merge(c *Contributor, p *Profile) {
	c.Name = p.Name
	c.Bio = p.Bio
	c.Company = p.Company
	c.Blog = p.Blog
	c.TwitterUsername = p.TwitterUsername
	c.SocialAccounts = p.SocialAccounts
	c.Location = p.Location
	if isValidEmail(p.Email) {
		c.Email = p.Email
		c.EmailStatus = EmailFound
	}
	c.Enriched = true
}
