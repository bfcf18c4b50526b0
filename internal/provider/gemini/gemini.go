// Package gemini implements the primary (cheap/fast) language-model
// backend over the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/UveshSamol/urbench-ats/internal/logger"
	"github.com/UveshSamol/urbench-ats/internal/provider"
)

const (
	name         = "gemini"
	defaultModel = "gemini-2.5-flash-lite"

	// Extraction and scoring responses are small JSON objects; the output
	// budget matches what the prompts ask for.
	maxOutputTokens = 1000
	temperature     = float32(0.1)
)

// Client wraps the Google GenAI client behind the provider interface.
// A single model serves both tiers; the quality tier is accepted and
// ignored here, since tier selection lives on the secondary backend.
type Client struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// New creates a Gemini-backed provider. A missing API key is an
// unconfigured failure rather than a deferred runtime surprise.
func New(ctx context.Context, apiKey, model string, log *zap.Logger) (*Client, error) {
	if apiKey = strings.TrimSpace(apiKey); apiKey == "" {
		return nil, &provider.Error{Provider: name, Kind: provider.KindUnconfigured, Err: errors.New("api key is required")}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	log = logger.WithCommonFields(log, name, model)

	return &Client{client: client, model: model, logger: log}, nil
}

func (c *Client) Name() string { return name }

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

func (c *Client) Invoke(ctx context.Context, prompt provider.Prompt, _ provider.Tier) (string, error) {
	if c == nil || c.client == nil {
		return "", &provider.Error{Provider: name, Kind: provider.KindUnconfigured, Err: errors.New("client is not initialized")}
	}

	user := strings.TrimSpace(prompt.User)
	if user == "" {
		return "", &provider.Error{Provider: name, Kind: provider.KindProvider, Err: errors.New("prompt must not be empty")}
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: maxOutputTokens,
	}
	if system := strings.TrimSpace(prompt.System); system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	c.logger.Debug("generating content", zap.Int("prompt_len", len(user)))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
	if err != nil {
		return "", classify(err)
	}

	output := collectText(resp)
	if output == "" {
		return "", &provider.Error{Provider: name, Kind: provider.KindProvider, Err: errors.New("empty response")}
	}

	return output, nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}
	return strings.TrimSpace(builder.String())
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		kind := provider.KindProvider
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			kind = provider.KindRateLimited
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = provider.KindUnauthorized
		}
		return &provider.Error{Provider: name, Kind: kind, Status: apiErr.Code, Err: err}
	}

	return &provider.Error{Provider: name, Kind: provider.KindNetwork, Err: err}
}
