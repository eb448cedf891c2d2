package kv

import "context"

// Prefixed scopes every key of an underlying Store under a fixed prefix.
type Prefixed struct {
	inner  Store
	prefix string
}

// WithPrefix returns a Store whose keys are prefix+key in inner.
func WithPrefix(inner Store, prefix string) *Prefixed {
	return &Prefixed{inner: inner, prefix: prefix}
}

// ForClient namespaces inner for one client id.
func ForClient(inner Store, clientID string) *Prefixed {
	return WithPrefix(inner, "client:"+clientID+":")
}

func (p *Prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *Prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *Prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}
