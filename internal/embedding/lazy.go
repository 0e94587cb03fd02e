package embedding

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LazyEmbedder defers constructing an expensive embedder (model load) until
// the first Embed call. Concurrent first calls share a single load via
// singleflight; a failed load is retried on the next call instead of being
// latched the way sync.Once would.
type LazyEmbedder struct {
	factory    func() (Embedder, error)
	dimensions int

	group singleflight.Group
	mu    sync.RWMutex
	inner Embedder
}

// NewLazyEmbedder wraps factory. dimensions is reported before the inner
// embedder exists, so callers can size stores without forcing a model load.
func NewLazyEmbedder(dimensions int, factory func() (Embedder, error)) *LazyEmbedder {
	return &LazyEmbedder{factory: factory, dimensions: dimensions}
}

func (e *LazyEmbedder) ensure() (Embedder, error) {
	e.mu.RLock()
	inner := e.inner
	e.mu.RUnlock()
	if inner != nil {
		return inner, nil
	}

	v, err, _ := e.group.Do("warm", func() (interface{}, error) {
		e.mu.RLock()
		inner := e.inner
		e.mu.RUnlock()
		if inner != nil {
			return inner, nil
		}
		built, err := e.factory()
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.inner = built
		e.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Embedder), nil
}

// Embed warms the inner embedder if needed and delegates to it.
func (e *LazyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	inner, err := e.ensure()
	if err != nil {
		return nil, err
	}
	return inner.Embed(ctx, text)
}

// Dimensions returns the configured embedding dimension.
func (e *LazyEmbedder) Dimensions() int {
	return e.dimensions
}

// Close closes the inner embedder if it was ever constructed.
func (e *LazyEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inner == nil {
		return nil
	}
	err := e.inner.Close()
	e.inner = nil
	return err
}
