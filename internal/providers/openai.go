package providers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"mediguide-backend/internal/models"
)

// ErrMissingAPIKey is returned when a provider is called without credentials.
// Handlers map it to a generic 500.
var ErrMissingAPIKey = errors.New("provider API key is not configured")

// OpenAIClient speaks the OpenAI-compatible chat completion wire format.
// Perplexity exposes the same contract, so both providers share this type
// with different base URLs and keys.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	log     *slog.Logger
	client  *http.Client
}

func NewOpenAIClient(baseURL, apiKey string, log *slog.Logger) *OpenAIClient {
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		log:     log,
		client:  &http.Client{Timeout: 240 * time.Second},
	}
}

// ChatCompletionRequest is the request body for /chat/completions.
type ChatCompletionRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature,omitempty"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
	Stream      bool                 `json:"stream,omitempty"`
}

// CreateChatCompletion sends a non-streaming completion and returns the
// first choice's message content.
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	req.Stream = false
	res, err := c.post(ctx, "/chat/completions", req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return "", fmt.Errorf("chat completion failed (%d): %s", res.StatusCode, string(body))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode chat completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return out.Choices[0].Message.Content, nil
}

// StreamChatCompletion sends a streaming completion and invokes onDelta for
// each content fragment as it arrives. A non-nil error from onDelta aborts
// the stream, which also cancels the upstream request via ctx.
func (c *OpenAIClient) StreamChatCompletion(ctx context.Context, req ChatCompletionRequest, onDelta func(string) error) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	req.Stream = true
	res, err := c.post(ctx, "/chat/completions", req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return fmt.Errorf("chat completion stream failed (%d): %s", res.StatusCode, string(body))
	}

	scanner := bufio.NewScanner(res.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			if payload == "[DONE]" {
				return nil
			}
			continue
		}

		delta := gjson.Get(payload, "choices.0.delta.content")
		if !delta.Exists() || delta.String() == "" {
			continue
		}
		if err := onDelta(delta.String()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read error: %w", err)
	}

	return nil
}

// SpeechRequest is the request body for /audio/speech.
type SpeechRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

// CreateSpeech synthesizes audio for the given text and returns the raw
// bytes plus the upstream content type.
func (c *OpenAIClient) CreateSpeech(ctx context.Context, req SpeechRequest) ([]byte, string, error) {
	if c.apiKey == "" {
		return nil, "", ErrMissingAPIKey
	}

	res, err := c.post(ctx, "/audio/speech", req)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return nil, "", fmt.Errorf("speech synthesis failed (%d): %s", res.StatusCode, string(body))
	}

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read audio response: %w", err)
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	return audio, contentType, nil
}

func (c *OpenAIClient) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	return res, nil
}
