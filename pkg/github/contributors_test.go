package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func contribPage(n int) []map[string]any {
	page := make([]map[string]any, n)
	for i := range n {
		page[i] = map[string]any{
			"login":         fmt.Sprintf("user%d", i),
			"contributions": 1,
			"type":          "User",
		}
	}
	return page
}

func TestContributorsFiltersBots(t *testing.T) {
	records := []map[string]any{
		{"login": "alice", "type": "User", "contributions": 10},
		{"login": "dependabot[bot]", "type": "User", "contributions": 9},
		{"login": "bob", "type": "User", "contributions": 8},
		{"login": "ci-runner", "type": "Bot", "contributions": 7},
		{"login": "carol", "type": "User", "contributions": 6},
		{"login": "dave", "type": "User", "contributions": 5},
		{"login": "renovate[bot]", "type": "Bot", "contributions": 4},
		{"login": "erin", "type": "User", "contributions": 3},
		{"login": "frank", "type": "User", "contributions": 2},
		{"login": "grace", "type": "User", "contributions": 1},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(records)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	got, err := c.Contributors(context.Background(), "o", "r", nil)
	if err != nil {
		t.Fatalf("Contributors: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("got %d contributors, want 7 (3 bots filtered)", len(got))
	}
	for _, contrib := range got {
		if contrib.Type == "Bot" {
			t.Errorf("bot leaked through: %q", contrib.Login)
		}
	}
}

func TestContributorsNormalizesAnonymous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"login":"ana","type":"User","contributions":5},{"type":"Anonymous","contributions":3}]`)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	got, err := c.Contributors(context.Background(), "o", "r", nil)
	if err != nil {
		t.Fatalf("Contributors: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d contributors, want 2", len(got))
	}
	if got[1].Login != "anonymous" || !got[1].IsAnonymous {
		t.Errorf("anonymous record not normalized: %+v", got[1])
	}
	if got[0].IsAnonymous {
		t.Errorf("named record flagged anonymous: %+v", got[0])
	}
}

func TestContributorsRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("per_page") != "100" {
			t.Errorf("per_page = %q, want 100", q.Get("per_page"))
		}
		if q.Get("anon") != "1" {
			t.Errorf("anon = %q, want 1", q.Get("anon"))
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	if _, err := c.Contributors(context.Background(), "o", "r", nil); err != nil {
		t.Fatalf("Contributors: %v", err)
	}
}

func TestContributorsStopsAtPageCap(t *testing.T) {
	var pages atomic.Int64
	full, _ := json.Marshal(contribPage(100))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		// Never a short page: only the cap can stop pagination
		w.Write(full)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	got, err := c.Contributors(context.Background(), "o", "r", nil)
	if err != nil {
		t.Fatalf("Contributors: %v", err)
	}
	if pages.Load() != 20 {
		t.Errorf("pages fetched = %d, want exactly 20", pages.Load())
	}
	if len(got) != 2000 {
		t.Errorf("contributors = %d, want 2000", len(got))
	}
}

func TestContributorsStopsOnShortPage(t *testing.T) {
	var pages atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := pages.Add(1)
		if n == 1 {
			_ = json.NewEncoder(w).Encode(contribPage(100))
			return
		}
		_ = json.NewEncoder(w).Encode(contribPage(30))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))

	var progressCalls int
	got, err := c.Contributors(context.Background(), "o", "r", func(count, remaining int) {
		progressCalls++
	})
	if err != nil {
		t.Fatalf("Contributors: %v", err)
	}
	if pages.Load() != 2 {
		t.Errorf("pages fetched = %d, want 2", pages.Load())
	}
	if len(got) != 130 {
		t.Errorf("contributors = %d, want 130", len(got))
	}
	if progressCalls != 2 {
		t.Errorf("progress calls = %d, want 2", progressCalls)
	}
}

func TestContributorsGuardMidStreamReturnsPartial(t *testing.T) {
	var pages atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		// First response drops the quota to the buffer
		w.Header().Set("x-ratelimit-remaining", "5")
		w.Header().Set("x-ratelimit-limit", "50")
		_ = json.NewEncoder(w).Encode(contribPage(100))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	got, err := c.Contributors(context.Background(), "o", "r", nil)
	if err != nil {
		t.Fatalf("mid-stream guard must not error, got %v", err)
	}
	if pages.Load() != 1 {
		t.Errorf("pages fetched = %d, want 1 (guard stops page 2)", pages.Load())
	}
	if len(got) != 100 {
		t.Errorf("partial results = %d, want 100", len(got))
	}
}

func TestContributorsGuardOnFirstPageIsError(t *testing.T) {
	var pages atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
	}))
	defer srv.Close()

	c := NewClient("tok", WithBaseURL(srv.URL), WithQuota(guardedTracker()))
	_, err := c.Contributors(context.Background(), "o", "r", nil)
	if !IsGuard(err) {
		t.Fatalf("expected GuardError on first page, got %v", err)
	}
	if pages.Load() != 0 {
		t.Errorf("no network call expected, got %d", pages.Load())
	}
}

func TestContributorsProgressReportsRemaining(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-ratelimit-remaining", "4990")
		w.Header().Set("x-ratelimit-limit", "5000")
		w.Header().Set("x-ratelimit-reset", fmt.Sprint(time.Now().Add(time.Hour).Unix()))
		fmt.Fprint(w, `[{"login":"ana","type":"User","contributions":5}]`)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))

	var gotCount, gotRemaining int
	_, err := c.Contributors(context.Background(), "o", "r", func(count, remaining int) {
		gotCount, gotRemaining = count, remaining
	})
	if err != nil {
		t.Fatalf("Contributors: %v", err)
	}
	if gotCount != 1 {
		t.Errorf("progress count = %d, want 1", gotCount)
	}
	if gotRemaining != 4990 {
		t.Errorf("progress remaining = %d, want 4990", gotRemaining)
	}
}
