// Package kv is the textual key-value substrate shared by every actor of a
// deployment. Values are opaque strings; callers own the encoding. There is no
// locking and no versioning: a Set replaces whatever was stored, so concurrent
// read-modify-write cycles resolve as last write wins.
package kv

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kv: key not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Pinger is implemented by backends that can report their own liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyCheck adapts a store to a readiness probe. Stores without a Ping are
// always ready.
func ReadyCheck(s Store) func(context.Context) error {
	return func(ctx context.Context) error {
		if s == nil {
			return errors.New("store not configured")
		}
		if p, ok := s.(Pinger); ok {
			return p.Ping(ctx)
		}
		return nil
	}
}

// Namespaced prefixes every key with prefix + ":".
func Namespaced(s Store, prefix string) Store {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return s
	}
	return &namespaced{inner: s, prefix: prefix + ":"}
}

type namespaced struct {
	inner  Store
	prefix string
}

func (n *namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Ping(ctx context.Context) error {
	return ReadyCheck(n.inner)(ctx)
}
