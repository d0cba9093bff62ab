package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"mediguide-backend/internal/models"
)

const maxAudioUploadBytes = 25 * 1024 * 1024 // 25MB

type speechRelay interface {
	Synthesize(ctx context.Context, text string) ([]byte, string, error)
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

type SpeechHandler struct {
	speech speechRelay
	log    *slog.Logger
}

func NewSpeechHandler(speech speechRelay, log *slog.Logger) *SpeechHandler {
	return &SpeechHandler{speech: speech, log: log}
}

// TTS passes text to the speech-synthesis provider and returns the raw
// audio bytes.
func (h *SpeechHandler) TTS(w http.ResponseWriter, r *http.Request) {
	var req models.SpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Text is required", r))
		return
	}

	audio, contentType, err := h.speech.Synthesize(r.Context(), req.Text)
	if err != nil {
		h.log.Error("speech synthesis failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", "Failed to synthesize speech", r))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

// Transcribe accepts a recorded audio file and forwards it for
// transcription.
func (h *SpeechHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUploadBytes)

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No audio file provided", r))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil || len(audio) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Audio file is empty or unreadable", r))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(audio)
	}

	text, err := h.speech.Transcribe(r.Context(), audio, mimeType)
	if err != nil {
		h.log.Error("transcription failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", "Failed to transcribe audio", r))
		return
	}

	writeJSON(w, http.StatusOK, models.TranscriptionResponse{Success: true, Text: text})
}
