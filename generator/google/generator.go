package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/analyst/generator"
	"google.golang.org/api/googleapi"
	genaiopt "google.golang.org/api/option"
)

type googleGenerator struct {
	options generator.Options
	client  *genai.Client
}

func (g *googleGenerator) Generate(ctx context.Context, prompt string, opts ...generator.GenerateOption) (string, error) {
	options := generator.NewGenerateOptions(opts...)

	fullPrompt := prompt
	if len(options.SystemPrompt) > 0 {
		fullPrompt = options.SystemPrompt + "\n\n" + prompt
	}

	model := g.client.GenerativeModel(g.options.Model)
	model.SetTemperature(0.1)

	rsp, err := model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", &generator.ProviderError{
				Provider: generator.ProviderGemini,
				Status:   apiErr.Code,
				Message:  apiErr.Message,
			}
		}
		return "", err
	}

	if len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil || len(rsp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini")
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	result := b.String()
	if len(result) == 0 {
		return "", errors.New("no response from Gemini")
	}

	return result, nil
}

func NewGenerator(opts ...generator.Option) (generator.Generator, error) {
	options := generator.NewOptions(opts...)

	switch {
	case len(options.ApiKey) == 0:
		return nil, fmt.Errorf("%w: gemini api key", generator.ErrMissingConfig)
	case len(options.Model) == 0:
		return nil, fmt.Errorf("%w: gemini model", generator.ErrMissingConfig)
	}

	client, err := genai.NewClient(
		context.Background(),
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		return nil, err
	}

	g := &googleGenerator{
		options: options,
		client:  client,
	}

	return g, nil
}
