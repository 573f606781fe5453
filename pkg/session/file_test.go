package session

import (
	"context"
	"testing"
	"time"

	"github.com/contriblens/contriblens/pkg/github"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	sess, err := New("tok123", &github.Profile{Login: "ana", Name: "Ana B"}, DefaultTTL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected session")
	}
	if got.AccessToken != "tok123" || got.Login() != "ana" {
		t.Errorf("unexpected session: %+v", got)
	}
}

func TestFileStoreMissingSession(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	got, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing session, got %+v", got)
	}
}

func TestFileStoreExpiredSession(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	sess, _ := New("tok", &github.Profile{Login: "ana"}, -time.Hour)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Error("expired session should read as missing")
	}
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	sess, _ := New("tok", &github.Profile{Login: "ana"}, DefaultTTL)
	_ = store.Set(ctx, sess)

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, sess.ID); got != nil {
		t.Error("session should be gone after Delete")
	}

	// Deleting again is fine
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Errorf("Delete of missing session: %v", err)
	}
}

func TestSessionLoginNilSafety(t *testing.T) {
	var sess *Session
	if sess.Login() != "" {
		t.Error("nil session should report empty login")
	}
	if (&Session{}).Login() != "" {
		t.Error("session without user should report empty login")
	}
}
