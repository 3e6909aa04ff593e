package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// geminiReply builds a minimal generateContent body.
func geminiReply(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"parts": []map[string]any{{"text": text}}},
			"finishReason": "STOP",
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 8, "candidatesTokenCount": 12},
	}
}

func TestGoogleProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing or wrong API key header")
		}
		if r.URL.Query().Get("key") != "" {
			t.Errorf("API key leaked into query string")
		}

		var req geminiRequest
		json.NewDecoder(r.Body).Decode(&req)

		if len(req.Contents) == 0 {
			t.Error("no contents in request")
		}

		json.NewEncoder(w).Encode(geminiReply("Gemini response"))
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})

	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Gemini response" {
		t.Errorf("content = %q, want %q", resp.Content, "Gemini response")
	}
	if resp.InputTokens != 8 {
		t.Errorf("input_tokens = %d, want 8", resp.InputTokens)
	}
	if resp.Model != "gemini-2.5-flash" {
		t.Errorf("model = %q, want default", resp.Model)
	}
}

func TestGoogleProvider_Complete_RoleMappings(t *testing.T) {
	var received geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(geminiReply("ok"))
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: "You are a curriculum designer."},
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi"},
			{Role: "user", Content: "design a course"},
		},
	})

	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if len(received.Contents) != 3 {
		t.Fatalf("got %d contents, want 3 (system goes to systemInstruction)", len(received.Contents))
	}
	if received.Contents[1].Role != "model" {
		t.Errorf("assistant role mapped to %q, want %q", received.Contents[1].Role, "model")
	}
	if received.SystemInstruction == nil || received.SystemInstruction.Parts[0].Text != "You are a curriculum designer." {
		t.Errorf("systemInstruction = %+v", received.SystemInstruction)
	}
}

func TestGoogleProvider_Complete_ResponseSchema(t *testing.T) {
	var received geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(geminiReply(`{"title":"x"}`))
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL), WithGoogleModel("gemini-2.5-pro"))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages:       []Message{{Role: "user", Content: "curriculum"}},
		ResponseSchema: map[string]any{"type": "object"},
		Temperature:    0.4,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	cfg := received.GenerationConfig
	if cfg == nil {
		t.Fatal("generationConfig missing")
	}
	if cfg.ResponseMimeType != "application/json" {
		t.Errorf("responseMimeType = %q", cfg.ResponseMimeType)
	}
	if cfg.ResponseJSONSchema["type"] != "object" {
		t.Errorf("responseJsonSchema = %+v", cfg.ResponseJSONSchema)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.4 {
		t.Errorf("temperature = %v, want 0.4", cfg.Temperature)
	}
}

func TestGoogleProvider_Complete_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))
	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err == nil {
		t.Fatal("Complete() should return error without candidates")
	}
}

func TestGoogleProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "forbidden"}`))
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})

	if err == nil {
		t.Fatal("Complete() should return error on API error")
	}
}

func TestGoogleProvider_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{"healthy", http.StatusOK, false},
		{"unhealthy", http.StatusForbidden, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasSuffix(r.URL.Path, "/models") {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))
			err := provider.HealthCheck(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGoogleProvider_Models(t *testing.T) {
	provider := NewGoogleProvider("test-key")
	models := provider.Models()

	if len(models) == 0 {
		t.Fatal("Models() returned empty list")
	}
	for _, m := range models {
		if m.Name == "" {
			t.Errorf("model %q has empty name", m.ID)
		}
	}
}
