package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func TestOpenAIProvider_Extract_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}

		// The request must carry one multi-content message: prompt
		// text plus one data-URL image part.
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || len(req.Messages[0].MultiContent) != 2 {
			t.Errorf("expected 1 message with 2 parts, got %+v", req.Messages)
		}

		resp := openai.ChatCompletionResponse{
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: `Here you go: [{"brand": "A", "rank": 1}]`,
					},
					FinishReason: "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	reply, err := provider.Extract(context.Background(), ExtractRequest{
		Prompt: "extract",
		Images: []Image{{MIME: "image/png", Data: []byte("fake")}},
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if reply != `Here you go: [{"brand": "A", "rank": 1}]` {
		t.Errorf("unexpected reply: %s", reply)
	}
}

func TestOpenAIProvider_Extract_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	_, err = provider.Extract(context.Background(), ExtractRequest{
		Prompt: "extract",
		Images: []Image{{MIME: "image/png", Data: []byte("fake")}},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestOpenAIProvider_Extract_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	reply, err := provider.Extract(context.Background(), ExtractRequest{
		Prompt: "extract",
		Images: []Image{{MIME: "image/png", Data: []byte("fake")}},
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	// Empty reply is the retry trigger, not an error.
	if reply != "" {
		t.Errorf("expected empty reply, got %q", reply)
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestNewProvider_Factory(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "openai", APIKey: "k"}); err != nil {
		t.Errorf("openai: %v", err)
	}
	if _, err := NewProvider(Config{Provider: "gemini", APIKey: "k"}); err != nil {
		t.Errorf("gemini: %v", err)
	}
	if _, err := NewProvider(Config{Provider: "claude", APIKey: "k"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
