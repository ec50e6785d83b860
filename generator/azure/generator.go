package azure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/analyst/generator"
)

const apiVersion = "2024-12-01-preview"

type azureGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *azureGenerator) Generate(ctx context.Context, prompt string, opts ...generator.GenerateOption) (string, error) {
	options := generator.NewGenerateOptions(opts...)

	messages := []openai.ChatCompletionMessage{}
	if len(options.SystemPrompt) > 0 {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: options.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	rsp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.options.Model,
		Messages: messages,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &generator.ProviderError{
				Provider: generator.ProviderAzureOpenAI,
				Status:   apiErr.HTTPStatusCode,
				Message:  fmt.Sprintf("%v", apiErr.Message),
			}
		}
		return "", err
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", errors.New("no response from Azure OpenAI")
	}

	return rsp.Choices[0].Message.Content, nil
}

func NewGenerator(opts ...generator.Option) (generator.Generator, error) {
	options := generator.NewOptions(opts...)

	switch {
	case len(options.ApiKey) == 0:
		return nil, fmt.Errorf("%w: azure openai api key", generator.ErrMissingConfig)
	case len(options.Endpoint) == 0:
		return nil, fmt.Errorf("%w: azure openai endpoint", generator.ErrMissingConfig)
	case len(options.Model) == 0:
		return nil, fmt.Errorf("%w: azure openai deployment", generator.ErrMissingConfig)
	}

	cfg := openai.DefaultAzureConfig(options.ApiKey, strings.TrimRight(options.Endpoint, "/"))
	cfg.APIVersion = apiVersion

	g := &azureGenerator{
		options: options,
		client:  openai.NewClientWithConfig(cfg),
	}

	return g, nil
}
