package github

import (
	"context"
	"testing"
	"time"
)

func TestControlWaitReadyWhenUnpaused(t *testing.T) {
	ctrl := NewControl()
	start := time.Now()
	if err := ctrl.WaitReady(context.Background()); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Error("unpaused WaitReady should return immediately")
	}
}

func TestControlBlocksUntilUnpaused(t *testing.T) {
	ctrl := NewControl()
	ctrl.SetPaused(true)

	released := make(chan error, 1)
	go func() {
		released <- ctrl.WaitReady(context.Background())
	}()

	select {
	case <-released:
		t.Fatal("WaitReady returned while paused")
	case <-time.After(100 * time.Millisecond):
	}

	ctrl.SetPaused(false)
	select {
	case err := <-released:
		if err != nil {
			t.Fatalf("WaitReady: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitReady did not release after unpause")
	}
}

func TestControlWaitReadyHonorsContext(t *testing.T) {
	ctrl := NewControl()
	ctrl.SetPaused(true)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := ctrl.WaitReady(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
