package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func realContribs(n int) []Contributor {
	out := make([]Contributor, n)
	for i := range n {
		out[i] = Contributor{Login: fmt.Sprintf("u%d", i), Type: "User", Contributions: n - i}
	}
	return out
}

// profileServer serves /users/{login} with a name derived from the login and
// counts fetches per login.
func profileServer(t *testing.T) (*httptest.Server, *sync.Map, *atomic.Int64) {
	t.Helper()
	var perLogin sync.Map
	var total atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login := strings.TrimPrefix(r.URL.Path, "/users/")
		total.Add(1)
		n, _ := perLogin.LoadOrStore(login, new(atomic.Int64))
		n.(*atomic.Int64).Add(1)
		fmt.Fprintf(w, `{"login":%q,"name":"Name of %s","location":"Earth"}`, login, login)
	}))
	t.Cleanup(srv.Close)
	return srv, &perLogin, &total
}

func TestEnrichSkipsAnonymous(t *testing.T) {
	srv, _, total := profileServer(t)
	c := NewClient("", WithBaseURL(srv.URL))

	contribs := append(realContribs(5),
		Contributor{Login: "anonymous", IsAnonymous: true, Contributions: 2},
		Contributor{Login: "anonymous", IsAnonymous: true, Contributions: 1},
	)

	got, err := c.Enrich(context.Background(), contribs, nil, nil)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	if total.Load() != 5 {
		t.Errorf("profile fetches = %d, want exactly 5", total.Load())
	}
	if len(got) != 7 {
		t.Fatalf("result length = %d, want 7", len(got))
	}
	for _, contrib := range got[:5] {
		if !contrib.Enriched {
			t.Errorf("%s should be enriched", contrib.Login)
		}
		if contrib.Name != "Name of "+contrib.Login {
			t.Errorf("%s: profile fields not merged: %+v", contrib.Login, contrib)
		}
	}
	for _, contrib := range got[5:] {
		if !contrib.IsAnonymous || contrib.Enriched {
			t.Errorf("anonymous tail should be unenriched: %+v", contrib)
		}
	}
}

func TestEnrichConcurrencyBounded(t *testing.T) {
	var inflight, peak atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := inflight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inflight.Add(-1)
		fmt.Fprint(w, `{"login":"x"}`)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	if _, err := c.Enrich(context.Background(), realContribs(12), nil, nil); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if peak.Load() > 5 {
		t.Errorf("peak in-flight = %d, want <= 5", peak.Load())
	}
}

func TestEnrichPauseResume(t *testing.T) {
	srv, perLogin, total := profileServer(t)
	c := NewClient("", WithBaseURL(srv.URL))

	ctrl := NewControl()
	ctrl.SetPaused(true)

	done := make(chan struct{})
	var got []Contributor
	go func() {
		defer close(done)
		got, _ = c.Enrich(context.Background(), realContribs(8), ctrl, nil)
	}()

	time.Sleep(100 * time.Millisecond)
	if total.Load() != 0 {
		t.Errorf("paused pipeline fetched %d profiles, want 0", total.Load())
	}

	ctrl.SetPaused(false)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("enrichment did not finish after resume")
	}

	if len(got) != 8 {
		t.Fatalf("result length = %d, want 8", len(got))
	}
	// No skips, no duplicates: every login fetched exactly once
	for i := range 8 {
		login := fmt.Sprintf("u%d", i)
		n, ok := perLogin.Load(login)
		if !ok || n.(*atomic.Int64).Load() != 1 {
			t.Errorf("login %s fetched %v times, want 1", login, n)
		}
	}
}

func TestEnrichFailureIsolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login := strings.TrimPrefix(r.URL.Path, "/users/")
		if login == "u2" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"login":%q,"name":"ok"}`, login)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))
	got, err := c.Enrich(context.Background(), realContribs(5), nil, nil)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	for _, contrib := range got {
		want := contrib.Login != "u2"
		if contrib.Enriched != want {
			t.Errorf("%s enriched = %v, want %v", contrib.Login, contrib.Enriched, want)
		}
	}
}

func TestEnrichGuardBeforeAnyWorkIsError(t *testing.T) {
	srv, _, total := profileServer(t)
	c := NewClient("tok", WithBaseURL(srv.URL), WithQuota(guardedTracker()))

	_, err := c.Enrich(context.Background(), realContribs(3), nil, nil)
	if !IsGuard(err) {
		t.Fatalf("expected GuardError before any work, got %v", err)
	}
	if total.Load() != 0 {
		t.Errorf("no fetches expected, got %d", total.Load())
	}
}

func TestEnrichGuardMidStreamMarksTail(t *testing.T) {
	var arrived atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The fifth arrival means every first-batch member already passed
		// the pre-flight guard; its response reports a drained quota.
		if arrived.Add(1) == 5 {
			w.Header().Set("x-ratelimit-remaining", "5")
			w.Header().Set("x-ratelimit-limit", "50")
		}
		login := strings.TrimPrefix(r.URL.Path, "/users/")
		fmt.Fprintf(w, `{"login":%q,"name":"ok"}`, login)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))

	var lastDone, lastTotal int
	var lastSnapshot []Contributor
	got, err := c.Enrich(context.Background(), realContribs(8), nil, func(done, total int, snapshot []Contributor) {
		lastDone, lastTotal = done, total
		lastSnapshot = snapshot
	})
	if err != nil {
		t.Fatalf("mid-stream guard must not error, got %v", err)
	}

	if arrived.Load() != 5 {
		t.Errorf("fetches = %d, want 5 (second batch guarded)", arrived.Load())
	}
	if len(got) != 8 {
		t.Fatalf("result length = %d, want full 8", len(got))
	}
	for i, contrib := range got {
		want := i < 5
		if contrib.Enriched != want {
			t.Errorf("index %d enriched = %v, want %v", i, contrib.Enriched, want)
		}
	}
	if lastDone != 5 || lastTotal != 8 {
		t.Errorf("final progress = (%d, %d), want (5, 8)", lastDone, lastTotal)
	}
	if len(lastSnapshot) != 8 {
		t.Errorf("final snapshot length = %d, want 8", len(lastSnapshot))
	}
}

func TestEnrichProgressSnapshotsAreFullLength(t *testing.T) {
	srv, _, _ := profileServer(t)
	c := NewClient("", WithBaseURL(srv.URL))

	contribs := append(realContribs(7), Contributor{Login: "anonymous", IsAnonymous: true})

	var ticks int
	_, err := c.Enrich(context.Background(), contribs, nil, func(done, total int, snapshot []Contributor) {
		ticks++
		if total != 7 {
			t.Errorf("total = %d, want 7", total)
		}
		if len(snapshot) != 8 {
			t.Errorf("snapshot length = %d, want 8 (full list incl. anonymous)", len(snapshot))
		}
		for i, contrib := range snapshot[:7] {
			if want := fmt.Sprintf("u%d", i); contrib.Login != want {
				t.Errorf("snapshot order broken at %d: %s", i, contrib.Login)
			}
		}
	})
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if ticks != 2 {
		t.Errorf("progress ticks = %d, want 2 (batches of 5)", ticks)
	}
}
