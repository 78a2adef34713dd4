package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"walink/internal/config"
	"walink/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDraft(t *testing.T) {
	now := time.Unix(1700000000, 0)

	t.Run("fenced reply is unwrapped", func(t *testing.T) {
		draft := BuildDraft("```markdown\n# Title Here\n\nIntro paragraph.\n```", "topic", domain.LangEnglish, "openai", now)
		assert.Equal(t, "Title Here", draft.Title)
		assert.Equal(t, "# Title Here\n\nIntro paragraph.", draft.Content)
		assert.Equal(t, "Intro paragraph.", draft.Excerpt)
	})

	t.Run("long excerpt is truncated", func(t *testing.T) {
		long := strings.Repeat("word ", 100)
		draft := BuildDraft("# T\n\n"+long, "topic", domain.LangEnglish, "openai", now)
		assert.True(t, strings.HasSuffix(draft.Excerpt, "..."))
		assert.LessOrEqual(t, len([]rune(draft.Excerpt)), ExcerptRunes+3)
	})

	t.Run("unsluggable title falls back to timestamp", func(t *testing.T) {
		draft := BuildDraft("# !!!\n\nbody", "topic", domain.LangEnglish, "openai", now)
		assert.Equal(t, "!!!", draft.Title)
		assert.Equal(t, "article-1700000000", draft.Slug)
	})

	t.Run("reading time uses language speed", func(t *testing.T) {
		body := strings.Repeat("كلمة ", 400)
		assert.Equal(t, 3, BuildDraft(body, "t", domain.LangArabic, "x", now).ReadingTime)
		assert.Equal(t, 2, BuildDraft(body, "t", domain.LangEnglish, "x", now).ReadingTime)
	})
}

func TestTemplate(t *testing.T) {
	ar := Template("الدعم الفني", domain.LangArabic)
	en := Template("Support", domain.LangEnglish)

	assert.Contains(t, ar, "## مقدمة")
	assert.Contains(t, ar, "## الخاتمة")
	assert.Contains(t, en, "## Introduction")
	assert.Contains(t, en, "## Conclusion")
	assert.Equal(t, 5, strings.Count(en, "## "))
	assert.Equal(t, en, Template("Support", domain.LangEnglish), "template output is deterministic")
	assert.Equal(t, ar, Template("الدعم الفني", "xx"), "unknown language uses the default")
}

func TestCompatibleProvider_Generate(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"# Hello"}}]}`))
	}))
	defer server.Close()

	providers, err := NewProviders([]config.AIProvider{{
		Name:     "groq",
		Type:     config.ProviderOpenAICompatible,
		APIKey:   "gsk-test",
		Endpoint: server.URL + "/v1/",
		Model:    "llama-3.1-8b-instant",
	}}, 512, server.Client())
	require.NoError(t, err)
	require.Len(t, providers, 1)

	text, err := providers[0].Generate(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "# Hello", text)
	assert.Equal(t, "groq", providers[0].Name())

	assert.Equal(t, "llama-3.1-8b-instant", got.Model)
	assert.Equal(t, 512, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Content)
}

func TestCompatibleProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, "status 401"},
		{"error object", http.StatusOK, `{"error":{"message":"model not found"}}`, "model not found"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "empty response"},
		{"blank content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`, "empty response"},
		{"not json", http.StatusOK, `<html>`, "openai-compatible response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := &compatibleProvider{name: "x", endpoint: server.URL, apiKey: "k", model: "m", client: server.Client()}
			_, err := p.Generate(context.Background(), "", "prompt")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewProviders(t *testing.T) {
	providers, err := NewProviders([]config.AIProvider{
		{Name: "openai", Type: "OpenAI", APIKey: "sk-1"},
		{Name: "claude", Type: config.ProviderAnthropic, APIKey: "sk-2"},
	}, 1024, nil)
	require.NoError(t, err)

	require.Len(t, providers, 2)
	assert.Equal(t, "openai", providers[0].Name())
	assert.Equal(t, "claude", providers[1].Name())
	assert.IsType(t, &languageModelProvider{}, providers[0])

	_, err = NewProviders([]config.AIProvider{{Name: "x", Type: "cohere", APIKey: "k"}}, 1024, nil)
	assert.Error(t, err)

	_, err = NewProviders([]config.AIProvider{{Name: "x", Type: config.ProviderOpenAI}}, 1024, nil)
	assert.Error(t, err)
}

func TestNormalizeEndpoints(t *testing.T) {
	assert.Equal(t, "https://api.groq.com/openai", normalizeCompatibleEndpoint("https://api.groq.com/openai/v1/"))
	assert.Equal(t, "https://api.openai.com", normalizeCompatibleEndpoint(""))
	assert.Equal(t, "https://proxy.example.com/v1", normalizeOpenAIBaseURL("https://proxy.example.com"))
	assert.Equal(t, "https://proxy.example.com/v1", normalizeOpenAIBaseURL("https://proxy.example.com/v1/"))
	assert.Empty(t, normalizeOpenAIBaseURL(""))
}
