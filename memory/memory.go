package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured indicates the gateway has no embedder or storer wired.
// Memory is an enhancement, not a correctness requirement, so callers see
// empty results instead of this error.
var ErrNotConfigured = errors.New("memory is not configured")

// Snippet is a read-only projection of a prior query/response pair, ordered
// by similarity when returned from Recall.
type Snippet struct {
	Id       string  `json:"id"`
	Prompt   string  `json:"prompt,omitempty"`
	Response string  `json:"response"`
	Distance float64 `json:"distance"`
}

// Gateway wraps embedding generation and vector-store upsert/query into the
// two memory operations the pipeline needs. Every failure is downgraded at
// this boundary: Recall yields an empty slice, Remember becomes a no-op, and
// both log instead of propagating.
type Gateway struct {
	options Options
}

func New(opts ...Option) *Gateway {
	return &Gateway{
		options: NewOptions(opts...),
	}
}

// Recall embeds the raw prompt text and returns the nearest prior snippets,
// most similar first. It never fails: a missing configuration, transport
// error, or deadline produces an empty result.
func (g *Gateway) Recall(ctx context.Context, prompt string) []Snippet {
	snippets, err := g.recall(ctx, prompt)
	if err != nil {
		g.options.Logger.Warn("memory recall failed", zap.Error(err))
		return nil
	}
	return snippets
}

// Remember embeds the canonical encoding of the (prompt, response) pair and
// upserts a record keyed by a timestamp-derived identifier. Fire and forget:
// persistence must never block delivery of an already-computed answer.
func (g *Gateway) Remember(ctx context.Context, prompt, response string) {
	if err := g.remember(ctx, prompt, response); err != nil {
		g.options.Logger.Warn("memory remember failed", zap.Error(err))
	}
}

func (g *Gateway) recall(ctx context.Context, prompt string) ([]Snippet, error) {
	if g.options.Embedder == nil || g.options.Storer == nil {
		return nil, ErrNotConfigured
	}

	vec, err := g.options.Embedder.Embed(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	// The store gets its own deadline so a slow or unreachable backend
	// cannot stall the interactive pipeline.
	queryCtx, cancel := context.WithTimeout(ctx, g.options.Deadline)
	defer cancel()

	records, err := g.options.Storer.Query(queryCtx, vec, g.options.Limit)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	snippets := make([]Snippet, 0, len(records))
	for _, rec := range records {
		snippet := Snippet{
			Id:       rec.Id,
			Response: rec.Document,
			Distance: rec.Distance,
		}
		if v, ok := rec.Metadata["prompt"]; ok {
			if s, ok := v.(string); ok {
				snippet.Prompt = s
			}
		}
		snippets = append(snippets, snippet)
	}

	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].Distance < snippets[j].Distance
	})

	return snippets, nil
}

func (g *Gateway) remember(ctx context.Context, prompt, response string) error {
	if g.options.Embedder == nil || g.options.Storer == nil {
		return ErrNotConfigured
	}

	document, err := encodePair(prompt, response)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	vec, err := g.options.Embedder.Embed(ctx, document)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	now := time.Now().UnixMilli()

	upsertCtx, cancel := context.WithTimeout(ctx, g.options.Deadline)
	defer cancel()

	return g.options.Storer.Upsert(
		upsertCtx,
		fmt.Sprintf("mem-%d", now),
		document,
		map[string]any{
			"prompt":    prompt,
			"timestamp": now,
		},
		vec,
	)
}

// encodePair is the canonical encoding Remember embeds. Recall embeds the
// raw prompt instead: it runs before a response exists.
func encodePair(prompt, response string) (string, error) {
	data, err := json.Marshal(struct {
		Query    string `json:"query"`
		Response string `json:"response"`
	}{
		Query:    prompt,
		Response: response,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
