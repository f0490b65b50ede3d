package kv

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "appointments"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Set(ctx, "k", "first"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "k", "second"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "second" {
		t.Fatalf("expected second, got %q", got)
	}
}

func TestNamespaced(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryStore()
	ns := Namespaced(base, "tenant-a")

	if err := ns.Set(ctx, "discountGrants", "{}"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := base.Get(ctx, "discountGrants"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("un-prefixed key should be absent, got %v", err)
	}
	v, err := base.Get(ctx, "tenant-a:discountGrants")
	if err != nil || v != "{}" {
		t.Fatalf("expected prefixed key, got %q (%v)", v, err)
	}
	if Namespaced(base, "  ") != Store(base) {
		t.Fatal("empty prefix should return the inner store")
	}
	if err := ReadyCheck(ns)(ctx); err != nil {
		t.Fatalf("memory store should be ready: %v", err)
	}
}
