// Package github implements the rate-limit-aware GitHub API access layer:
// a quota tracker fed from response headers, a guarded fetch wrapper that
// refuses calls near quota exhaustion, paginated contributor extraction,
// a batched pausable profile-enrichment pipeline, and a best-effort
// multi-strategy email finder.
//
// All outbound API calls go through a single choke point (Client.do) so the
// quota tracker observes every response and the safety guard applies
// uniformly. Raw patch fetches against github.com bypass the guard since
// they do not consume API quota.
package github
