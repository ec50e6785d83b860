package generator

import (
	"context"
	"errors"
	"fmt"
)

// Generator produces a single assistant message for a prompt. The returned
// string is the raw message text; callers decide whether to treat it as prose
// or embedded structured data.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)
}

// Provider tags one of the two supported chat-completion backends.
type Provider string

const (
	ProviderAzureOpenAI Provider = "azure-openai"
	ProviderGemini      Provider = "gemini"
)

func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderAzureOpenAI, ProviderGemini:
		return Provider(s), nil
	case "":
		return ProviderAzureOpenAI, nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

// ErrMissingConfig indicates a required credential or model identifier is
// absent. Backends return it before attempting any network call.
var ErrMissingConfig = errors.New("missing configuration")

// ProviderError is a non-success response from a chat-completion backend.
type ProviderError struct {
	Provider Provider
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
}
