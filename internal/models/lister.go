package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"codeberg.org/snonux/subtitlecsv/internal/translation"
)

// Providers understood by the lister
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Lister lists the chat models an endpoint offers
type Lister struct {
	provider string
	apiKey   string
	endpoint string
}

// NewLister creates a new model lister. endpoint only applies to the
// OpenAI provider; empty means the OpenAI API.
func NewLister(provider, apiKey, endpoint string) *Lister {
	return &Lister{
		provider: provider,
		apiKey:   apiKey,
		endpoint: endpoint,
	}
}

// ListAvailableModels writes the endpoint's chat models to w, sorted
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	var (
		ids []string
		err error
	)
	switch l.provider {
	case ProviderOpenAI, "":
		ids, err = l.openAIModels(ctx)
	case ProviderGemini:
		ids, err = l.geminiModels(ctx)
	default:
		return fmt.Errorf("unknown provider %q", l.provider)
	}
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	sort.Strings(ids)

	fmt.Fprintf(w, "Available %s chat models:\n", l.label())
	if len(ids) == 0 {
		fmt.Fprintln(w, "  No chat models found")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintf(w, "  %s\n", id)
	}
	return nil
}

func (l *Lister) label() string {
	if l.provider == ProviderGemini {
		return "Gemini"
	}
	if l.endpoint != "" {
		return translation.BaseURL(l.endpoint)
	}
	return "OpenAI"
}

func (l *Lister) openAIModels(ctx context.Context) ([]string, error) {
	if l.apiKey == "" && l.endpoint == "" {
		return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .subtitlecsv.yaml")
	}

	config := openai.DefaultConfig(l.apiKey)
	if l.endpoint != "" {
		config.BaseURL = translation.BaseURL(l.endpoint)
	}
	models, err := openai.NewClientWithConfig(config).ListModels(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, model := range models.Models {
		if isChatModel(model.ID) {
			ids = append(ids, model.ID)
		}
	}
	return ids, nil
}

// isChatModel drops the speech, image and embedding models OpenAI lists
// alongside chat models. Local servers only list chat models.
func isChatModel(id string) bool {
	for _, other := range []string{"tts", "whisper", "dall-e", "embedding", "moderation", "audio", "image"} {
		if strings.Contains(id, other) {
			return false
		}
	}
	return true
}

func (l *Lister) geminiModels(ctx context.Context) ([]string, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("Gemini API key not found. Set GEMINI_API_KEY environment variable or configure in .subtitlecsv.yaml")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  l.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	var ids []string
	for model, err := range client.Models.All(ctx) {
		if err != nil {
			return nil, err
		}
		for _, action := range model.SupportedActions {
			if action == "generateContent" {
				ids = append(ids, strings.TrimPrefix(model.Name, "models/"))
				break
			}
		}
	}
	return ids, nil
}
