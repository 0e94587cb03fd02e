// Package embedding provides text embedding via ONNX and caching.
package embedding

import "context"

// Embedder produces a fixed-dimension vector embedding for text.
// Implementations must be deterministic for identical input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
}
