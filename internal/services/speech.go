package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mediguide-backend/internal/providers"
)

type speechSynthesizer interface {
	CreateSpeech(ctx context.Context, req providers.SpeechRequest) ([]byte, string, error)
}

type transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// SpeechService forwards text to the speech-synthesis provider and recorded
// audio to the transcription provider. Pure relay, no local processing.
type SpeechService struct {
	tts   speechSynthesizer
	stt   transcriber
	model string
	voice string
	log   *slog.Logger
}

func NewSpeechService(tts speechSynthesizer, stt transcriber, model, voice string, log *slog.Logger) *SpeechService {
	return &SpeechService{tts: tts, stt: stt, model: model, voice: voice, log: log}
}

// Synthesize returns audio bytes and their content type for the given text.
func (s *SpeechService) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "", fmt.Errorf("empty text")
	}

	return s.tts.CreateSpeech(ctx, providers.SpeechRequest{
		Model: s.model,
		Voice: s.voice,
		Input: text,
	})
}

// Transcribe forwards recorded audio and returns the transcription text.
func (s *SpeechService) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio payload")
	}
	return s.stt.Transcribe(ctx, audio, mimeType)
}
