// Package anthropic implements the secondary (fallback) language-model
// backend against the Anthropic Messages API. This is the only backend
// where the quality tier selects a model: fast maps to the cheap model,
// strong to the slower, more accurate one.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/UveshSamol/urbench-ats/internal/logger"
	"github.com/UveshSamol/urbench-ats/internal/provider"
)

const (
	name       = "anthropic"
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"

	defaultFastModel   = "claude-haiku-4-5-20251001"
	defaultStrongModel = "claude-sonnet-4-20250514"

	maxTokens = 1000
)

// Client talks to the Anthropic Messages API.
type Client struct {
	apiKey string
	models map[provider.Tier]string
	logger *zap.Logger

	HTTPClient *http.Client
	APIURL     string
}

// New creates an Anthropic-backed provider. Empty model names fall back to
// the defaults per tier.
func New(apiKey, fastModel, strongModel string, log *zap.Logger) (*Client, error) {
	if apiKey = strings.TrimSpace(apiKey); apiKey == "" {
		return nil, &provider.Error{Provider: name, Kind: provider.KindUnconfigured, Err: errors.New("api key is required")}
	}

	if fastModel = strings.TrimSpace(fastModel); fastModel == "" {
		fastModel = defaultFastModel
	}
	if strongModel = strings.TrimSpace(strongModel); strongModel == "" {
		strongModel = defaultStrongModel
	}

	return &Client{
		apiKey: apiKey,
		models: map[provider.Tier]string{
			provider.TierFast:   fastModel,
			provider.TierStrong: strongModel,
		},
		logger: logger.WithCommonFields(log, name, ""),
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		APIURL: apiURL,
	}, nil
}

func (c *Client) Name() string { return name }

// Model returns the model used for the given tier.
func (c *Client) Model(tier provider.Tier) string {
	if model, ok := c.models[tier]; ok {
		return model
	}
	return c.models[provider.TierFast]
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (c *Client) Invoke(ctx context.Context, prompt provider.Prompt, tier provider.Tier) (string, error) {
	if c == nil || strings.TrimSpace(c.apiKey) == "" {
		return "", &provider.Error{Provider: name, Kind: provider.KindUnconfigured, Err: errors.New("client is not initialized")}
	}

	user := strings.TrimSpace(prompt.User)
	if user == "" {
		return "", &provider.Error{Provider: name, Kind: provider.KindProvider, Err: errors.New("prompt must not be empty")}
	}

	model := c.Model(tier)
	body, err := json.Marshal(messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    strings.TrimSpace(prompt.System),
		Messages:  []message{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	c.logger.Debug("anthropic request", zap.String("model", model), zap.String("tier", string(tier)))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", &provider.Error{Provider: name, Kind: provider.KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &provider.Error{Provider: name, Kind: provider.KindNetwork, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, data)
	}

	var parsed messageResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", &provider.Error{Provider: name, Kind: provider.KindProvider, Err: fmt.Errorf("decode response: %w", err)}
	}

	output := collectText(parsed)
	if output == "" {
		return "", &provider.Error{Provider: name, Kind: provider.KindProvider, Err: errors.New("empty response")}
	}

	return output, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
}

func collectText(resp messageResponse) string {
	var builder strings.Builder
	for _, block := range resp.Content {
		if block.Type != "" && block.Type != "text" {
			continue
		}
		text := strings.TrimSpace(block.Text)
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(text)
	}
	return strings.TrimSpace(builder.String())
}

func classifyStatus(status int, body []byte) error {
	kind := provider.KindProvider
	switch status {
	case http.StatusTooManyRequests:
		kind = provider.KindRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = provider.KindUnauthorized
	}

	return &provider.Error{
		Provider: name,
		Kind:     kind,
		Status:   status,
		Err:      fmt.Errorf("bad status %d: %s", status, strings.TrimSpace(string(body))),
	}
}
