package ratelimiter

import (
	"testing"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	if _, ok := registry.Get("analyze"); ok {
		t.Error("expected no limiter for an unregistered operation")
	}

	limiter := New(100, 10)
	registry.Set("analyze", limiter)

	got, ok := registry.Get("analyze")
	if !ok {
		t.Fatal("expected limiter for registered operation")
	}
	if got != limiter {
		t.Error("retrieved limiter does not match the registered one")
	}

	// Re-registering replaces the limiter.
	replacement := New(1, 1)
	registry.Set("analyze", replacement)
	if got, _ := registry.Get("analyze"); got != replacement {
		t.Error("expected the replacement limiter")
	}
}
