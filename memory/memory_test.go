package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w-h-a/analyst/memory/providers/storer"
)

type fakeEmbedder struct {
	texts []string
	err   error
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.texts = append(e.texts, text)
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeStorer struct {
	records  []storer.Record
	queryErr error

	upsertId       string
	upsertDocument string
	upsertMetadata map[string]any
	delay          time.Duration
}

func (s *fakeStorer) Upsert(ctx context.Context, id, document string, metadata map[string]any, vector []float32) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.upsertId = id
	s.upsertDocument = document
	s.upsertMetadata = metadata
	return nil
}

func (s *fakeStorer) Query(ctx context.Context, vector []float32, k int) ([]storer.Record, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.records, nil
}

func TestRecallOrdersBySimilarity(t *testing.T) {
	store := &fakeStorer{
		records: []storer.Record{
			{Id: "mem-2", Document: "second", Distance: 0.6, Metadata: map[string]any{"prompt": "q2"}},
			{Id: "mem-1", Document: "first", Distance: 0.2, Metadata: map[string]any{"prompt": "q1"}},
		},
	}

	gateway := New(
		WithEmbedder(&fakeEmbedder{}),
		WithStorer(store),
	)

	snippets := gateway.Recall(context.Background(), "how hot was it")

	require.Len(t, snippets, 2)
	assert.Equal(t, "mem-1", snippets[0].Id)
	assert.Equal(t, "first", snippets[0].Response)
	assert.Equal(t, "q1", snippets[0].Prompt)
	assert.Equal(t, "mem-2", snippets[1].Id)
}

func TestRecallEmbedsRawPrompt(t *testing.T) {
	embedder := &fakeEmbedder{}

	gateway := New(
		WithEmbedder(embedder),
		WithStorer(&fakeStorer{}),
	)

	gateway.Recall(context.Background(), "how hot was it")

	require.Len(t, embedder.texts, 1)
	assert.Equal(t, "how hot was it", embedder.texts[0])
}

func TestRecallUnconfigured(t *testing.T) {
	gateway := New()

	snippets := gateway.Recall(context.Background(), "anything")
	assert.Empty(t, snippets)
}

func TestRecallStorerFailure(t *testing.T) {
	gateway := New(
		WithEmbedder(&fakeEmbedder{}),
		WithStorer(&fakeStorer{queryErr: errors.New("connection refused")}),
	)

	snippets := gateway.Recall(context.Background(), "anything")
	assert.Empty(t, snippets)
}

func TestRecallDeadline(t *testing.T) {
	gateway := New(
		WithEmbedder(&fakeEmbedder{}),
		WithStorer(&fakeStorer{delay: 200 * time.Millisecond}),
		WithDeadline(10*time.Millisecond),
	)

	start := time.Now()
	snippets := gateway.Recall(context.Background(), "anything")

	assert.Empty(t, snippets)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestRememberEmbedsCanonicalPair(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := &fakeStorer{}

	gateway := New(
		WithEmbedder(embedder),
		WithStorer(store),
	)

	gateway.Remember(context.Background(), "how hot was it", "very hot")

	require.Len(t, embedder.texts, 1)

	var pair struct {
		Query    string `json:"query"`
		Response string `json:"response"`
	}
	require.NoError(t, json.Unmarshal([]byte(embedder.texts[0]), &pair))
	assert.Equal(t, "how hot was it", pair.Query)
	assert.Equal(t, "very hot", pair.Response)

	assert.Equal(t, embedder.texts[0], store.upsertDocument)
	assert.Regexp(t, `^mem-\d+$`, store.upsertId)
	assert.Equal(t, "how hot was it", store.upsertMetadata["prompt"])
	assert.NotNil(t, store.upsertMetadata["timestamp"])
}

func TestRememberUnconfiguredIsNoop(t *testing.T) {
	gateway := New()

	// Must not panic or block.
	gateway.Remember(context.Background(), "prompt", "response")
}

func TestRememberEmbedFailureIsSwallowed(t *testing.T) {
	store := &fakeStorer{}

	gateway := New(
		WithEmbedder(&fakeEmbedder{err: errors.New("quota exceeded")}),
		WithStorer(store),
	)

	gateway.Remember(context.Background(), "prompt", "response")

	assert.Empty(t, store.upsertId)
}
