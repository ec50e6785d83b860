package storer

import "context"

// Storer is a vector-memory backend: append-only upsert plus nearest-neighbor
// query against a single shared collection.
type Storer interface {
	Upsert(ctx context.Context, id string, document string, metadata map[string]any, vector []float32) error
	Query(ctx context.Context, vector []float32, k int) ([]Record, error)
}
