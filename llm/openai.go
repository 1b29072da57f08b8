package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// chatAPI implements the OpenAI chat-completions wire protocol shared by the
// hosted OpenAI provider and any compatible server.
type chatAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func (c *chatAPI) headers(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if key := strings.TrimSpace(c.apiKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
}

func (c *chatAPI) modelsResponse(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return nil, err
	}
	c.headers(req)
	return c.client.Do(req)
}

// errNoModelEndpoint marks servers that do not expose /v1/models.
var errNoModelEndpoint = errors.New("server does not expose /v1/models")

func (c *chatAPI) listModels(ctx context.Context) ([]string, error) {
	resp, err := c.modelsResponse(ctx)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNoModelEndpoint
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d from /v1/models", resp.StatusCode)
	}

	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode model list: %w", err)
	}

	seen := make(map[string]bool)
	var models []string
	for _, m := range body.Data {
		id := strings.TrimSpace(m.ID)
		if id != "" && !seen[id] {
			seen[id] = true
			models = append(models, id)
		}
	}
	sort.Strings(models)
	return models, nil
}

func (c *chatAPI) generate(ctx context.Context, prompt, model string, temperature float64) (string, error) {
	payload := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": temperature,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	c.headers(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("HTTP %d from /v1/chat/completions", resp.StatusCode)
	}

	var body struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(body.Choices) == 0 {
		return "", errors.New("response contained no choices")
	}
	return body.Choices[0].Message.Content, nil
}

// DefaultOpenAIBaseURL is the hosted API endpoint.
const DefaultOpenAIBaseURL = "https://api.openai.com"

// OpenAI is the hosted OpenAI provider. An API key is required.
type OpenAI struct {
	api chatAPI
}

// NewOpenAI creates the hosted provider. An empty baseURL uses the public
// endpoint.
func NewOpenAI(apiKey, baseURL string) *OpenAI {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAI{api: chatAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{},
	}}
}

func (o *OpenAI) ID() string          { return "openai" }
func (o *OpenAI) DisplayName() string { return "OpenAI" }

// IsHealthy verifies a key is configured and the models endpoint answers.
func (o *OpenAI) IsHealthy(ctx context.Context) (bool, string) {
	if strings.TrimSpace(o.api.apiKey) == "" {
		return false, "OpenAI API key is not set"
	}

	ctx, cancel := withTimeout(ctx, healthTimeout)
	defer cancel()

	resp, err := o.api.modelsResponse(ctx)
	if err != nil {
		return false, err.Error()
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return false, fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return true, ""
}

func (o *OpenAI) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, modelsTimeout)
	defer cancel()

	models, err := o.api.listModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return models, nil
}

func (o *OpenAI) Generate(ctx context.Context, prompt, model string, temperature float64) (string, error) {
	ctx, cancel := withTimeout(ctx, generateTimeout)
	defer cancel()

	text, err := o.api.generate(ctx, prompt, model, temperature)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	return text, nil
}
