package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
)

// Ensure OpenAILLM implements LLMService
var _ driven.LLMService = (*OpenAILLM)(nil)

// OpenAILLM implements LLMService using OpenAI's chat completions API.
type OpenAILLM struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

const defaultChatModel = "gpt-4o-mini"

// NewOpenAILLM creates a new OpenAI chat completion service.
func NewOpenAILLM(apiKey, model, baseURL string) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	if model == "" {
		model = defaultChatModel
	}

	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAILLM{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// chatMessage is a single message in a chat completion request
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for the OpenAI chat completions API
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *chatRespFmt  `json:"response_format,omitempty"`
}

type chatRespFmt struct {
	Type string `json:"type"`
}

// chatResponse is the response from the OpenAI chat completions API
type chatResponse struct {
	Choices []struct {
		Index   int         `json:"index"`
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Complete returns a free-text completion.
func (l *OpenAILLM) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	return l.complete(ctx, req, nil)
}

// CompleteJSON returns a completion constrained to a single JSON object via
// the json_object response format.
func (l *OpenAILLM) CompleteJSON(ctx context.Context, req driven.CompletionRequest) ([]byte, error) {
	text, err := l.complete(ctx, req, &chatRespFmt{Type: "json_object"})
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

// Model returns the model name being used.
func (l *OpenAILLM) Model() string {
	return l.model
}

// Ping verifies the service is available with a minimal completion.
func (l *OpenAILLM) Ping(ctx context.Context) error {
	_, err := l.Complete(ctx, driven.CompletionRequest{
		Prompt:    "ping",
		MaxTokens: 1,
	})
	return err
}

// Close releases resources held by the service.
func (l *OpenAILLM) Close() error {
	l.client.CloseIdleConnections()
	return nil
}

func (l *OpenAILLM) complete(ctx context.Context, req driven.CompletionRequest, format *chatRespFmt) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	resp, err := l.doRequest(ctx, chatRequest{
		Model:          l.model,
		Messages:       messages,
		MaxTokens:      req.MaxTokens,
		ResponseFormat: format,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// doRequest makes a request to the OpenAI chat completions API
func (l *OpenAILLM) doRequest(ctx context.Context, reqBody chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", l.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("OpenAI API error: %s (type: %s, code: %s)",
			chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API returned status %d", resp.StatusCode)
	}

	return &chatResp, nil
}
