package azure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/analyst/embedder"
)

const apiVersion = "2024-12-01-preview"

type azureEmbedder struct {
	options embedder.Options
	client  *openai.Client
}

func (e *azureEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	rsp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.options.Model),
	})
	if err != nil {
		return nil, err
	}

	if len(rsp.Data) == 0 || len(rsp.Data[0].Embedding) == 0 {
		return nil, errors.New("no response from Azure OpenAI")
	}

	return rsp.Data[0].Embedding, nil
}

func NewEmbedder(opts ...embedder.Option) (embedder.Embedder, error) {
	options := embedder.NewOptions(opts...)

	switch {
	case len(options.ApiKey) == 0:
		return nil, fmt.Errorf("%w: azure openai api key", ErrMissingConfig)
	case len(options.Endpoint) == 0:
		return nil, fmt.Errorf("%w: azure openai endpoint", ErrMissingConfig)
	case len(options.Model) == 0:
		return nil, fmt.Errorf("%w: azure embedding deployment", ErrMissingConfig)
	}

	cfg := openai.DefaultAzureConfig(options.ApiKey, strings.TrimRight(options.Endpoint, "/"))
	cfg.APIVersion = apiVersion

	e := &azureEmbedder{
		options: options,
		client:  openai.NewClientWithConfig(cfg),
	}

	return e, nil
}

// ErrMissingConfig indicates an absent credential or deployment identifier.
var ErrMissingConfig = errors.New("missing configuration")
