package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vkotliar/gavel/internal/model"
)

func TestAnthropicProvider_Generate(t *testing.T) {
	var captured anthropicRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing x-api-key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "Guilty on several counts. [Source 2]"}},
			"model":   "claude-3-5-sonnet-20241022",
			"usage":   map[string]any{"input_tokens": 100, "output_tokens": 30},
		})
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(model.LLMConfig{
		Provider:    "anthropic",
		Model:       "claude-3-5-sonnet-20241022",
		APIKey:      "test-key",
		BaseURL:     server.URL,
		Timeout:     5,
		MaxTokens:   2048,
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("NewAnthropicProvider failed: %v", err)
	}

	resp, err := provider.Generate(context.Background(), GenerateRequest{
		System: "answering rules",
		Prompt: "What was the sentence?",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Text != "Guilty on several counts. [Source 2]" {
		t.Errorf("unexpected response: %q", resp.Text)
	}
	if resp.TokensUsed != 130 {
		t.Errorf("expected 130 tokens, got %d", resp.TokensUsed)
	}
	if captured.System != "answering rules" {
		t.Errorf("system prompt not forwarded: %q", captured.System)
	}
	if captured.MaxTokens != 2048 {
		t.Errorf("expected max_tokens 2048, got %d", captured.MaxTokens)
	}
}

func TestAnthropicProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]any{
				"type":    "authentication_error",
				"message": "invalid x-api-key",
			},
		})
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(model.LLMConfig{Provider: "anthropic", APIKey: "bad", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("NewAnthropicProvider failed: %v", err)
	}

	_, err = provider.Generate(context.Background(), GenerateRequest{Prompt: "q"})
	if !errors.Is(err, model.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	_, err := NewAnthropicProvider(model.LLMConfig{Provider: "anthropic"})
	if !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestNewProvider_Factory(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{"openai", "openai", false},
		{"anthropic", "anthropic", false},
		{"claude", "anthropic", false},
		{"ollama", "ollama", false},
		{"unknown", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		p, err := NewProvider(model.LLMConfig{Provider: tt.provider, APIKey: "k"})
		if tt.wantErr {
			if !errors.Is(err, model.ErrConfiguration) {
				t.Errorf("provider %q: expected ErrConfiguration, got %v", tt.provider, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("provider %q: unexpected error %v", tt.provider, err)
			continue
		}
		if p.Name() != tt.wantName {
			t.Errorf("provider %q: expected name %q, got %q", tt.provider, tt.wantName, p.Name())
		}
	}
}
