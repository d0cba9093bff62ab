package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mediguide-backend/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, nil))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestCreateChatCompletion_MissingKey(t *testing.T) {
	c := NewOpenAIClient("https://api.openai.com/v1", "", testLogger())

	_, err := c.CreateChatCompletion(context.Background(), ChatCompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []models.ChatMessage{{Role: "user", Content: "hi"}},
	})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestCreateChatCompletion_ParsesContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected bearer auth, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"GREETING"}}]}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "test-key", testLogger())
	got, err := c.CreateChatCompletion(context.Background(), ChatCompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []models.ChatMessage{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "GREETING" {
		t.Errorf("Expected GREETING, got %q", got)
	}
}

func TestCreateChatCompletion_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "test-key", testLogger())
	_, err := c.CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	if err == nil {
		t.Fatal("Expected error for upstream 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("Expected status code in error, got %v", err)
	}
}

func TestStreamChatCompletion_CollectsDeltas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Take \"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"with food.\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}\n\n")
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "test-key", testLogger())

	var got strings.Builder
	err := c.StreamChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"}, func(delta string) error {
		got.WriteString(delta)
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.String() != "Take with food." {
		t.Errorf("Expected assembled deltas, got %q", got.String())
	}
}

func TestStreamChatCompletion_CallbackAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for i := 0; i < 10; i++ {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":\"chunk %d\"}}]}\n\n", i)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "test-key", testLogger())

	abort := errors.New("client went away")
	calls := 0
	err := c.StreamChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"}, func(delta string) error {
		calls++
		return abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("Expected callback error to propagate, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected stream to stop after first delta, got %d calls", calls)
	}
}

func TestCreateSpeech_RelaysAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte{0xFF, 0xFB, 0x90, 0x00})
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "test-key", testLogger())
	audio, contentType, err := c.CreateSpeech(context.Background(), SpeechRequest{
		Model: "tts-1", Voice: "alloy", Input: "take your medication",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if contentType != "audio/mpeg" {
		t.Errorf("Expected audio/mpeg, got %q", contentType)
	}
	if len(audio) != 4 {
		t.Errorf("Expected 4 audio bytes, got %d", len(audio))
	}
}
