package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// openaiReply builds a minimal chat completions body.
func openaiReply(content, model string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"content": content}}},
		"model":   model,
		"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 5},
	}
}

func TestOpenAIProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}

		var req openaiRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Model != "gpt-4o" {
			t.Errorf("model = %q, want %q", req.Model, "gpt-4o")
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.ResponseFormat != nil {
			t.Errorf("response_format = %+v, want none without a schema", req.ResponseFormat)
		}

		json.NewEncoder(w).Encode(openaiReply("Hi there!", "gpt-4o"))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", WithBaseURL(server.URL))

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
		Model:    "gpt-4o",
	})

	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Hi there!" {
		t.Errorf("content = %q, want %q", resp.Content, "Hi there!")
	}
	if resp.InputTokens != 10 {
		t.Errorf("input_tokens = %d, want 10", resp.InputTokens)
	}
	if resp.OutputTokens != 5 {
		t.Errorf("output_tokens = %d, want 5", resp.OutputTokens)
	}
}

func TestOpenAIProvider_Complete_JSONSchema(t *testing.T) {
	var got openaiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(openaiReply(`{"ok":true}`, "gpt-4o-mini"))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", WithBaseURL(server.URL))
	schema := map[string]any{"type": "object"}

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages:       []Message{{Role: "user", Content: "quiz me"}},
		Task:           TaskQuiz,
		ResponseSchema: schema,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if got.ResponseFormat == nil {
		t.Fatal("response_format missing")
	}
	if got.ResponseFormat.Type != "json_schema" {
		t.Errorf("type = %q, want json_schema", got.ResponseFormat.Type)
	}
	if got.ResponseFormat.JSONSchema.Name != "quiz" {
		t.Errorf("schema name = %q, want task name %q", got.ResponseFormat.JSONSchema.Name, "quiz")
	}
	if got.ResponseFormat.JSONSchema.Schema["type"] != "object" {
		t.Errorf("schema = %+v", got.ResponseFormat.JSONSchema.Schema)
	}
}

func TestOpenAIProvider_Complete_Refusal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"","refusal":"cannot help"}}]}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", WithBaseURL(server.URL))
	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err == nil || !strings.Contains(err.Error(), "cannot help") {
		t.Fatalf("Complete() error = %v, want refusal", err)
	}
}

func TestOpenAIProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", WithBaseURL(server.URL), WithProviderName("groq"))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})

	if err == nil {
		t.Fatal("Complete() should return error on API error")
	}
	if !strings.HasPrefix(err.Error(), "groq api error (status 429)") {
		t.Errorf("error = %q, want provider name and status", err)
	}
}

func TestOpenAIProvider_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	provider := NewOpenAIProvider("test-key", WithBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})

	if err == nil {
		t.Fatal("Complete() should return error when no choices")
	}
}

func TestOpenAIProvider_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{"healthy", http.StatusOK, false},
		{"unhealthy", http.StatusUnauthorized, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/models" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			provider := NewOpenAIProvider("test-key", WithBaseURL(server.URL))
			err := provider.HealthCheck(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenAIProvider_CustomModels(t *testing.T) {
	custom := []ModelInfo{{ID: "custom-model", Name: "Custom"}}
	provider := NewOpenAIProvider("test-key", WithModels(custom))
	models := provider.Models()

	if len(models) != 1 || models[0].ID != "custom-model" {
		t.Errorf("Models() = %+v, want custom models", models)
	}
}

func TestOpenAIProvider_DefaultModel(t *testing.T) {
	tests := []struct {
		name string
		opts []OpenAIOption
		want string
	}{
		{"builtin", nil, "gpt-4o-mini"},
		{"configured", []OpenAIOption{WithModel("gpt-4o")}, "gpt-4o"},
		{"empty option keeps builtin", []OpenAIOption{WithModel("")}, "gpt-4o-mini"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var receivedModel string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req openaiRequest
				json.NewDecoder(r.Body).Decode(&req)
				receivedModel = req.Model
				json.NewEncoder(w).Encode(openaiReply("ok", req.Model))
			}))
			defer server.Close()

			opts := append([]OpenAIOption{WithBaseURL(server.URL)}, tt.opts...)
			provider := NewOpenAIProvider("test-key", opts...)

			_, err := provider.Complete(context.Background(), CompletionRequest{
				Messages: []Message{{Role: "user", Content: "hi"}},
			})
			if err != nil {
				t.Fatalf("Complete() error = %v", err)
			}
			if receivedModel != tt.want {
				t.Errorf("model = %q, want %q", receivedModel, tt.want)
			}
		})
	}
}
