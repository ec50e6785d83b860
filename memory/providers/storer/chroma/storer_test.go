package chroma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w-h-a/analyst/memory/providers/storer"
)

func TestNewStorerRequiresLocation(t *testing.T) {
	_, err := NewStorer()
	assert.Error(t, err)
}

func TestUpsert(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"ok": true}`)
	}))
	defer srv.Close()

	s, err := NewStorer(
		storer.WithLocation(srv.URL),
		storer.WithApiKey("secret"),
	)
	require.NoError(t, err)

	err = s.Upsert(context.Background(), "mem-123", "doc", map[string]any{"prompt": "q"}, []float32{0.1, 0.2})
	require.NoError(t, err)

	assert.Equal(t, "/api/chroma-add-record", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "mem-123", gotBody["id"])
	assert.Equal(t, "doc", gotBody["document"])
}

func TestUpsertServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok": false, "error": "collection missing"}`)
	}))
	defer srv.Close()

	s, err := NewStorer(storer.WithLocation(srv.URL))
	require.NoError(t, err)

	err = s.Upsert(context.Background(), "mem-123", "doc", nil, []float32{0.1})
	assert.EqualError(t, err, "collection missing")
}

func TestQueryDecodesColumnarResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chroma-search-record", r.URL.Path)
		fmt.Fprint(w, `{
			"ids": ["mem-2", "mem-1"],
			"documents": ["far", "near"],
			"metadatas": [{"prompt": "q2"}, {"prompt": "q1"}],
			"distances": [0.9, 0.1]
		}`)
	}))
	defer srv.Close()

	s, err := NewStorer(storer.WithLocation(srv.URL))
	require.NoError(t, err)

	records, err := s.Query(context.Background(), []float32{0.1, 0.2}, 5)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "mem-1", records[0].Id)
	assert.Equal(t, "near", records[0].Document)
	assert.Equal(t, 0.1, records[0].Distance)
	assert.Equal(t, "q1", records[0].Metadata["prompt"])
	assert.Equal(t, "mem-2", records[1].Id)
}

func TestQueryZeroK(t *testing.T) {
	s, err := NewStorer(storer.WithLocation("http://localhost:4000"))
	require.NoError(t, err)

	records, err := s.Query(context.Background(), []float32{0.1}, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestQueryHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, err := NewStorer(storer.WithLocation(srv.URL))
	require.NoError(t, err)

	_, err = s.Query(context.Background(), []float32{0.1}, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chroma http 500")
}
