package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"mediguide-backend/internal/models"
)

type fakeChatStreamer struct {
	chunks  []string
	err     error
	lastReq models.ChatRequest
}

func (f *fakeChatStreamer) StreamReply(ctx context.Context, req models.ChatRequest, onDelta func(string) error) error {
	f.lastReq = req
	if f.err != nil {
		return f.err
	}
	for _, c := range f.chunks {
		if err := onDelta(c); err != nil {
			return err
		}
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestChatStream_MissingMessages(t *testing.T) {
	h := NewChatHandler(&fakeChatStreamer{}, discardLogger())

	rr := postJSON(t, h.Stream, "/api/v1/chat", models.ChatRequest{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR, got %q", resp.Error.Code)
	}
}

func TestChatStream_NoUserMessage(t *testing.T) {
	h := NewChatHandler(&fakeChatStreamer{}, discardLogger())

	rr := postJSON(t, h.Stream, "/api/v1/chat", models.ChatRequest{
		Messages: []models.ChatMessage{{Role: "assistant", Content: "hello"}},
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}

func TestChatStream_SetsTitleAndStreamsChunks(t *testing.T) {
	fake := &fakeChatStreamer{chunks: []string{"Metformin is ", "taken with meals."}}
	h := NewChatHandler(fake, discardLogger())

	rr := postJSON(t, h.Stream, "/api/v1/chat", models.ChatRequest{
		Messages: []models.ChatMessage{{Role: "user", Content: "How should I take metformin?"}},
		Data:     models.ChatRequestData{Persona: models.PersonaGeneral},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("X-Chat-Title"); got != "How should I take metformin?" {
		t.Errorf("Expected derived title header, got %q", got)
	}
	if got := rr.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Expected event-stream content type, got %q", got)
	}
	if rr.Body.String() != "Metformin is taken with meals." {
		t.Errorf("Expected relayed chunks, got %q", rr.Body.String())
	}
}

func TestChatStream_DefaultsPersonaToGeneral(t *testing.T) {
	fake := &fakeChatStreamer{chunks: []string{"ok"}}
	h := NewChatHandler(fake, discardLogger())

	postJSON(t, h.Stream, "/api/v1/chat", models.ChatRequest{
		Messages: []models.ChatMessage{{Role: "user", Content: "hi"}},
	})

	if fake.lastReq.Data.Persona != models.PersonaGeneral {
		t.Errorf("Expected persona defaulted to general, got %q", fake.lastReq.Data.Persona)
	}
}

func TestChatStream_ProviderFailureBeforeFirstChunk(t *testing.T) {
	fake := &fakeChatStreamer{err: fmt.Errorf("provider unreachable")}
	h := NewChatHandler(fake, discardLogger())

	rr := postJSON(t, h.Stream, "/api/v1/chat", models.ChatRequest{
		Messages: []models.ChatMessage{{Role: "user", Content: "hello"}},
	})

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 when nothing was streamed, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Expected JSON error body before first byte, got %q", got)
	}
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Success || resp.Error.Code != "AI_ERROR" {
		t.Errorf("Unexpected error payload %+v", resp)
	}
}
