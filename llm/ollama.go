package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Ollama talks to a local Ollama server.
type Ollama struct {
	baseURL string
	client  *http.Client
}

// NewOllama creates the Ollama provider.
func NewOllama(baseURL string) *Ollama {
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (o *Ollama) ID() string          { return "ollama" }
func (o *Ollama) DisplayName() string { return "Ollama (local)" }

// IsHealthy probes the tags endpoint.
func (o *Ollama) IsHealthy(ctx context.Context) (bool, string) {
	ctx, cancel := withTimeout(ctx, healthTimeout)
	defer cancel()

	resp, err := o.get(ctx, "/api/tags")
	if err != nil {
		return false, err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return false, fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return true, ""
}

// ListModels returns the locally available model tags.
func (o *Ollama) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, modelsTimeout)
	defer cancel()

	resp, err := o.get(ctx, "/api/tags")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("ollama: HTTP %d from /api/tags", resp.StatusCode)
	}

	var body struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("ollama: failed to decode model list: %w", err)
	}

	seen := make(map[string]bool)
	var models []string
	for _, m := range body.Models {
		name := strings.TrimSpace(m.Name)
		if name != "" && !seen[name] {
			seen[name] = true
			models = append(models, name)
		}
	}
	sort.Strings(models)
	return models, nil
}

// Generate runs a non-streaming completion.
func (o *Ollama) Generate(ctx context.Context, prompt, model string, temperature float64) (string, error) {
	ctx, cancel := withTimeout(ctx, generateTimeout)
	defer cancel()

	payload := map[string]any{
		"model":  model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": temperature,
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ollama: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ollama: HTTP %d from /api/generate", resp.StatusCode)
	}

	var body struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("ollama: failed to decode response: %w", err)
	}
	return body.Response, nil
}

func (o *Ollama) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return o.client.Do(req)
}
