package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	a := NoopAPIHooks{}
	a.OnRequest(ctx, "https://api.github.com/users/ana")
	a.OnResponse(ctx, "https://api.github.com/users/ana", 200, time.Second)
	a.OnGuard(ctx, 5)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "search")
	c.OnCacheMiss(ctx, "user")
	c.OnCacheSet(ctx, "user", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := API().(NoopAPIHooks); !ok {
		t.Error("API() should return NoopAPIHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customAPI := &testAPIHooks{}
	SetAPIHooks(customAPI)
	if API() != customAPI {
		t.Error("SetAPIHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := API().(NoopAPIHooks); !ok {
		t.Error("Reset() should restore NoopAPIHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testAPIHooks{}
	SetAPIHooks(custom)

	SetAPIHooks(nil)

	if API() != custom {
		t.Error("SetAPIHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testAPIHooks struct{ NoopAPIHooks }
type testCacheHooks struct{ NoopCacheHooks }
