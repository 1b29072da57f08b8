package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllama_IsHealthy(t *testing.T) {
	t.Run("healthy server", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			_, _ = w.Write([]byte(`{"models":[]}`))
		}))
		defer srv.Close()

		ok, msg := NewOllama(srv.URL).IsHealthy(context.Background())
		assert.True(t, ok)
		assert.Empty(t, msg)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		ok, msg := NewOllama(srv.URL).IsHealthy(context.Background())
		assert.False(t, ok)
		assert.Equal(t, "HTTP 500", msg)
	})

	t.Run("unreachable server", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		ok, msg := NewOllama(srv.URL).IsHealthy(context.Background())
		assert.False(t, ok)
		assert.NotEmpty(t, msg)
	})
}

func TestOllama_ListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[
			{"name":"llama3.1:8b"},
			{"name":"qwen2:7b"},
			{"name":"llama3.1:8b"},
			{"name":"  "}
		]}`))
	}))
	defer srv.Close()

	models, err := NewOllama(srv.URL).ListModels(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.1:8b", "qwen2:7b"}, models)
}

func TestOllama_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.1:8b", req["model"])
		assert.Equal(t, "hello", req["prompt"])
		assert.Equal(t, false, req["stream"])
		assert.Equal(t, 0.2, req["options"].(map[string]any)["temperature"])

		_, _ = w.Write([]byte(`{"response":"hi there"}`))
	}))
	defer srv.Close()

	text, err := NewOllama(srv.URL).Generate(context.Background(), "hello", "llama3.1:8b", 0.2)

	require.NoError(t, err)
	assert.Equal(t, "hi there", text)
}

func TestOllama_GenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewOllama(srv.URL).Generate(context.Background(), "hello", "llama3.1:8b", 0.2)

	assert.Error(t, err)
}

func TestCompat_IsHealthyStatusHandling(t *testing.T) {
	tests := []struct {
		status  int
		healthy bool
		note    string
	}{
		{http.StatusOK, true, ""},
		{http.StatusUnauthorized, true, ""},
		{http.StatusForbidden, true, ""},
		{http.StatusNotFound, true, "no /v1/models endpoint (404)"},
		{http.StatusInternalServerError, false, "HTTP 500"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			ok, msg := NewCompat(srv.URL, "").IsHealthy(context.Background())
			assert.Equal(t, tt.healthy, ok)
			assert.Equal(t, tt.note, msg)
		})
	}
}

func TestCompat_ListModels(t *testing.T) {
	t.Run("sorted and deduplicated", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/models", r.URL.Path)
			_, _ = w.Write([]byte(`{"data":[{"id":"zephyr"},{"id":"mistral"},{"id":"zephyr"}]}`))
		}))
		defer srv.Close()

		models, err := NewCompat(srv.URL, "").ListModels(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"mistral", "zephyr"}, models)
	})

	t.Run("missing listing endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewCompat(srv.URL, "").ListModels(context.Background())
		assert.ErrorIs(t, err, errNoModelEndpoint)
	})
}

func TestCompat_GenerateSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		messages := req["messages"].([]any)
		require.Len(t, messages, 1)
		assert.Equal(t, "user", messages[0].(map[string]any)["role"])
		assert.Equal(t, "hello", messages[0].(map[string]any)["content"])

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}]}`))
	}))
	defer srv.Close()

	text, err := NewCompat(srv.URL, "secret").Generate(context.Background(), "hello", "mistral", 0.7)

	require.NoError(t, err)
	assert.Equal(t, "hi", text)
}

func TestCompat_GenerateNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewCompat(srv.URL, "").Generate(context.Background(), "hello", "mistral", 0.7)

	assert.Error(t, err)
}

func TestOpenAI_IsHealthyRequiresKey(t *testing.T) {
	ok, msg := NewOpenAI("", "").IsHealthy(context.Background())

	assert.False(t, ok)
	assert.Contains(t, msg, "API key")
}

func TestOpenAI_ListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"id":"gpt-4o-mini"},{"id":"gpt-4o"}]}`))
	}))
	defer srv.Close()

	models, err := NewOpenAI("sk-test", srv.URL).ListModels(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, models)
}

func TestOpenAI_DefaultBaseURL(t *testing.T) {
	p := NewOpenAI("sk-test", "")
	assert.Equal(t, DefaultOpenAIBaseURL, p.api.baseURL)
}
