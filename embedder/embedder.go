package embedder

import "context"

// Embedder turns text into a fixed-dimension vector. The dimensionality is
// decided by the backing deployment and is opaque to callers.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
