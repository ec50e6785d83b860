package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/w-h-a/analyst/memory/providers/storer"
)

const (
	upsertPath = "/api/chroma-add-record"
	searchPath = "/api/chroma-search-record"
)

type chromaStorer struct {
	options storer.Options
	client  *http.Client
}

func (s *chromaStorer) Upsert(ctx context.Context, id string, document string, metadata map[string]any, vector []float32) error {
	req := map[string]any{
		"id":        id,
		"embedding": vector,
		"document":  document,
		"metadata":  metadata,
	}

	var rsp struct {
		Ok    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}

	if err := s.do(ctx, upsertPath, req, &rsp); err != nil {
		return err
	}

	if !rsp.Ok && len(rsp.Error) > 0 {
		return errors.New(rsp.Error)
	}

	return nil
}

func (s *chromaStorer) Query(ctx context.Context, vector []float32, k int) ([]storer.Record, error) {
	if k < 1 {
		return nil, nil
	}

	req := map[string]any{
		"embedding": vector,
		"k":         k,
	}

	var rsp struct {
		Ids       []string         `json:"ids"`
		Documents []string         `json:"documents"`
		Metadatas []map[string]any `json:"metadatas"`
		Distances []float64        `json:"distances"`
	}

	if err := s.do(ctx, searchPath, req, &rsp); err != nil {
		return nil, err
	}

	records := make([]storer.Record, 0, len(rsp.Ids))

	for i, id := range rsp.Ids {
		rec := storer.Record{Id: id}
		if i < len(rsp.Documents) {
			rec.Document = rsp.Documents[i]
		}
		if i < len(rsp.Metadatas) {
			rec.Metadata = rsp.Metadatas[i]
		}
		if i < len(rsp.Distances) {
			rec.Distance = rsp.Distances[i]
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Distance < records[j].Distance
	})

	return records, nil
}

func (s *chromaStorer) do(ctx context.Context, path string, req any, rsp any) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	u := strings.TrimRight(s.options.Location, "/") + path

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")

	if len(s.options.ApiKey) > 0 {
		request.Header.Set("Authorization", "Bearer "+s.options.ApiKey)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("chroma http %d: %s", response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

func NewStorer(opts ...storer.Option) (storer.Storer, error) {
	options := storer.NewOptions(opts...)

	if len(options.Location) == 0 {
		return nil, errors.New("missing location for chroma storer")
	}

	s := &chromaStorer{
		options: options,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}

	return s, nil
}
