package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Compat talks to any server implementing the OpenAI chat-completions API,
// such as llama.cpp or vLLM. The API key is optional.
type Compat struct {
	api chatAPI
}

// NewCompat creates the OpenAI-compatible provider.
func NewCompat(baseURL, apiKey string) *Compat {
	return &Compat{api: chatAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{},
	}}
}

func (c *Compat) ID() string          { return "openai_compat" }
func (c *Compat) DisplayName() string { return "OpenAI-compatible server" }

// IsHealthy probes /v1/models. Auth rejections and a missing listing
// endpoint still mean the server is reachable, so they count as healthy;
// the 404 case carries a note.
func (c *Compat) IsHealthy(ctx context.Context) (bool, string) {
	ctx, cancel := withTimeout(ctx, healthTimeout)
	defer cancel()

	resp, err := c.api.modelsResponse(ctx)
	if err != nil {
		return false, err.Error()
	}
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusUnauthorized, http.StatusForbidden:
		return true, ""
	case http.StatusNotFound:
		return true, "no /v1/models endpoint (404)"
	default:
		return false, fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
}

// ListModels returns the server's model listing; an empty list with an
// explanatory error when the server has no listing endpoint.
func (c *Compat) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, modelsTimeout)
	defer cancel()

	models, err := c.api.listModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai_compat: %w", err)
	}
	return models, nil
}

func (c *Compat) Generate(ctx context.Context, prompt, model string, temperature float64) (string, error) {
	ctx, cancel := withTimeout(ctx, generateTimeout)
	defer cancel()

	text, err := c.api.generate(ctx, prompt, model, temperature)
	if err != nil {
		return "", fmt.Errorf("openai_compat: %w", err)
	}
	return text, nil
}
