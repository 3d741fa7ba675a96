package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
)

func TestNewOpenAILLM_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAILLM("", "gpt-4o-mini", "")
	if err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNewOpenAILLM_Defaults(t *testing.T) {
	svc, err := NewOpenAILLM("sk-test", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	llm := svc.(*OpenAILLM)
	if llm.model != defaultChatModel {
		t.Errorf("expected default model %s, got %s", defaultChatModel, llm.model)
	}
	if llm.baseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default base URL, got %s", llm.baseURL)
	}
	if svc.Model() != defaultChatModel {
		t.Errorf("Model() = %s, want %s", svc.Model(), defaultChatModel)
	}
}

// newChatServer returns an httptest server that records the last request body
// and replies with the given completion text.
func newChatServer(t *testing.T, reply string, lastReq *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected authorization header: %s", got)
		}
		if err := json.NewDecoder(r.Body).Decode(lastReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": reply}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAILLM_Complete(t *testing.T) {
	var lastReq chatRequest
	server := newChatServer(t, "hello there", &lastReq)
	defer server.Close()

	svc, err := NewOpenAILLM("sk-test", "gpt-4o-mini", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer svc.Close()

	text, err := svc.Complete(context.Background(), driven.CompletionRequest{
		System:    "be brief",
		Prompt:    "say hello",
		MaxTokens: 32,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != "hello there" {
		t.Errorf("expected completion text, got %q", text)
	}

	if len(lastReq.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(lastReq.Messages))
	}
	if lastReq.Messages[0].Role != "system" || lastReq.Messages[0].Content != "be brief" {
		t.Errorf("unexpected system message: %+v", lastReq.Messages[0])
	}
	if lastReq.Messages[1].Role != "user" {
		t.Errorf("unexpected user message role: %s", lastReq.Messages[1].Role)
	}
	if lastReq.MaxTokens != 32 {
		t.Errorf("expected max_tokens 32, got %d", lastReq.MaxTokens)
	}
	if lastReq.ResponseFormat != nil {
		t.Errorf("expected no response format for plain completion")
	}
}

func TestOpenAILLM_CompleteOmitsEmptySystem(t *testing.T) {
	var lastReq chatRequest
	server := newChatServer(t, "ok", &lastReq)
	defer server.Close()

	svc, _ := NewOpenAILLM("sk-test", "gpt-4o-mini", server.URL)
	defer svc.Close()

	if _, err := svc.Complete(context.Background(), driven.CompletionRequest{Prompt: "hi"}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if len(lastReq.Messages) != 1 || lastReq.Messages[0].Role != "user" {
		t.Errorf("expected a single user message, got %+v", lastReq.Messages)
	}
}

func TestOpenAILLM_CompleteJSON(t *testing.T) {
	var lastReq chatRequest
	server := newChatServer(t, `{"searchQuery":"invoices","includeAttachments":true,"limit":3}`, &lastReq)
	defer server.Close()

	svc, _ := NewOpenAILLM("sk-test", "gpt-4o-mini", server.URL)
	defer svc.Close()

	raw, err := svc.CompleteJSON(context.Background(), driven.CompletionRequest{Prompt: "plan"})
	if err != nil {
		t.Fatalf("CompleteJSON failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if decoded["searchQuery"] != "invoices" {
		t.Errorf("unexpected decoded payload: %v", decoded)
	}

	if lastReq.ResponseFormat == nil || lastReq.ResponseFormat.Type != "json_object" {
		t.Errorf("expected json_object response format, got %+v", lastReq.ResponseFormat)
	}
}

func TestOpenAILLM_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
				"code":    "rate_limited",
			},
		})
	}))
	defer server.Close()

	svc, _ := NewOpenAILLM("sk-test", "gpt-4o-mini", server.URL)
	defer svc.Close()

	_, err := svc.Complete(context.Background(), driven.CompletionRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error from API failure")
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("expected error to carry API message, got: %v", err)
	}
}

func TestOpenAILLM_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	svc, _ := NewOpenAILLM("sk-test", "gpt-4o-mini", server.URL)
	defer svc.Close()

	_, err := svc.Complete(context.Background(), driven.CompletionRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error when no choices returned")
	}
}
