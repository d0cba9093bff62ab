package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"mediguide-backend/internal/models"
	"mediguide-backend/internal/services"
)

type chatStreamer interface {
	StreamReply(ctx context.Context, req models.ChatRequest, onDelta func(string) error) error
}

type ChatHandler struct {
	chat chatStreamer
	log  *slog.Logger
}

func NewChatHandler(chat chatStreamer, log *slog.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, log: log}
}

// Stream relays a conversation to the selected provider and streams the
// reply back as it arrives. The derived chat title rides on X-Chat-Title,
// which must be set before the first chunk is written.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Messages are required", r))
		return
	}
	latest := req.LastUserMessage()
	if strings.TrimSpace(latest) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Conversation has no user message", r))
		return
	}
	if req.Data.Persona == "" {
		req.Data.Persona = models.PersonaGeneral
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Streaming is not supported", r))
		return
	}

	setSSEHeaders(w)
	w.Header().Set("X-Chat-Title", services.DeriveChatTitle(latest))

	wroteAny := false
	err := h.chat.StreamReply(r.Context(), req, func(chunk string) error {
		if _, werr := w.Write([]byte(chunk)); werr != nil {
			return werr
		}
		flusher.Flush()
		wroteAny = true
		return nil
	})
	if err != nil {
		h.log.Error("chat stream failed", "error", err)
		if !wroteAny {
			// Nothing flushed yet, so the response can still carry the
			// standard envelope. Provider errors stay generic.
			writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", "Failed to generate response", r))
			return
		}
		// Mid-stream failure: the connection ends early and the client
		// surfaces a network error.
		return
	}
}
