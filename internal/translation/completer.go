package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Completer sends one prompt to a chat model and returns its reply
type Completer interface {
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// LLMOptions are optional sampling settings, read from a JSON file.
// Keys without a field land in Extra and are sent as they are to
// OpenAI-compatible endpoints (e.g. top_k or repeat_penalty of local servers).
type LLMOptions struct {
	Temperature *float32 `json:"temperature,omitempty"`
	TopP        *float32 `json:"top_p,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Seed        *int     `json:"seed,omitempty"`
	Stop        []string `json:"stop,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownLLMOptions = []string{"temperature", "top_p", "max_tokens", "seed", "stop"}

// LoadLLMOptions reads LLMOptions from a JSON file
func LoadLLMOptions(path string) (LLMOptions, error) {
	var opts LLMOptions

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read LLM options: %w", err)
	}
	if err := json.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse LLM options %s: %w", path, err)
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return opts, fmt.Errorf("failed to parse LLM options %s: %w", path, err)
	}
	for _, key := range knownLLMOptions {
		delete(all, key)
	}
	if len(all) > 0 {
		opts.Extra = all
	}
	return opts, nil
}

// extraFieldsTransport adds fields to JSON request bodies. Fields the
// request already sets win.
type extraFieldsTransport struct {
	next  http.RoundTripper
	extra map[string]json.RawMessage
}

func (t *extraFieldsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || req.Body == nil {
		return t.next.RoundTrip(req)
	}

	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err == nil {
		for key, value := range t.extra {
			if _, set := body[key]; !set {
				body[key] = value
			}
		}
		if merged, err := json.Marshal(body); err == nil {
			data = merged
		}
	}

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(data))
	out.ContentLength = int64(len(data))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return t.next.RoundTrip(out)
}

// BaseURL turns a full chat completions URL into the API base URL.
// Base URLs are returned unchanged.
func BaseURL(endpoint string) string {
	endpoint = strings.TrimRight(endpoint, "/")
	return strings.TrimSuffix(endpoint, "/chat/completions")
}

// OpenAICompleter talks to OpenAI or any server implementing its chat API
type OpenAICompleter struct {
	client *openai.Client
	model  string
	opts   LLMOptions
}

// NewOpenAICompleter creates a completer. An empty endpoint means the
// OpenAI API.
func NewOpenAICompleter(apiKey, endpoint, model string, opts LLMOptions) *OpenAICompleter {
	config := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		config.BaseURL = BaseURL(endpoint)
	}
	if len(opts.Extra) > 0 {
		config.HTTPClient = &http.Client{
			Transport: &extraFieldsTransport{next: http.DefaultTransport, extra: opts.Extra},
		}
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(config),
		model:  model,
		opts:   opts,
	}
}

// Complete returns the content of the first choice, or "" when there is none
func (c *OpenAICompleter) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: c.opts.MaxTokens,
		Seed:      c.opts.Seed,
		Stop:      c.opts.Stop,
	}
	if c.opts.Temperature != nil {
		req.Temperature = *c.opts.Temperature
	}
	if c.opts.TopP != nil {
		req.TopP = *c.opts.TopP
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// GeminiCompleter talks to the Gemini API
type GeminiCompleter struct {
	client *genai.Client
	model  string
	opts   LLMOptions
}

// NewGeminiCompleter creates a Gemini completer
func NewGeminiCompleter(ctx context.Context, apiKey, model string, opts LLMOptions) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if len(opts.Extra) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: Gemini ignores LLM options %s\n",
			strings.Join(slices.Sorted(maps.Keys(opts.Extra)), ", "))
	}

	return &GeminiCompleter{client: client, model: model, opts: opts}, nil
}

// Complete returns the reply text
func (c *GeminiCompleter) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       c.opts.Temperature,
		TopP:              c.opts.TopP,
		MaxOutputTokens:   int32(c.opts.MaxTokens),
		StopSequences:     c.opts.Stop,
	}
	if c.opts.Seed != nil {
		config.Seed = genai.Ptr(int32(*c.opts.Seed))
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return resp.Text(), nil
}
