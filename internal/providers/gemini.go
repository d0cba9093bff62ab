package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ImagePart is one inline image sent to the vision model.
type ImagePart struct {
	MIMEType string
	Data     []byte
}

// GeminiClient wraps the multimodal Gemini model used for meal image
// analysis and audio transcription.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates the vision client. An empty API key yields a
// client whose calls fail with ErrMissingAPIKey, so the server can start
// without credentials and surface the problem per-request.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return &GeminiClient{}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// GenerateVision sends a prompt plus inline images and returns the full text
// response.
func (c *GeminiClient) GenerateVision(ctx context.Context, prompt string, images []ImagePart) (string, error) {
	if c.client == nil {
		return "", ErrMissingAPIKey
	}

	resp, err := c.model.GenerateContent(ctx, visionParts(prompt, images)...)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("Gemini returned empty response")
	}
	return text, nil
}

// StreamVision sends a prompt plus inline images and invokes onDelta for
// each text fragment as the model produces it.
func (c *GeminiClient) StreamVision(ctx context.Context, prompt string, images []ImagePart, onDelta func(string) error) error {
	if c.client == nil {
		return ErrMissingAPIKey
	}

	iter := c.model.GenerateContentStream(ctx, visionParts(prompt, images)...)
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Gemini stream error: %w", err)
		}

		chunk := extractText(resp)
		if chunk == "" {
			continue
		}
		if err := onDelta(chunk); err != nil {
			return err
		}
	}
}

// Transcribe uploads recorded audio through the Gemini File API and returns
// its verbatim transcription.
func (c *GeminiClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if c.client == nil {
		return "", ErrMissingAPIKey
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("audio payload is empty")
	}

	file, err := c.client.UploadFile(ctx, "", bytes.NewReader(audio), &genai.UploadFileOptions{
		DisplayName: "voice-note",
		MIMEType:    mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload audio to Gemini: %w", err)
	}

	// Ensure remote file is cleaned up
	defer c.client.DeleteFile(context.Background(), file.Name)

	// Wait until file is active
	for i := 0; i < 20; i++ {
		current, getErr := c.client.GetFile(ctx, file.Name)
		if getErr != nil {
			return "", fmt.Errorf("failed to get uploaded file status: %w", getErr)
		}

		if current.State == genai.FileStateActive {
			file = current
			break
		}
		if current.State == genai.FileStateFailed {
			return "", fmt.Errorf("Gemini failed to process uploaded audio file")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	if file.State != genai.FileStateActive {
		return "", fmt.Errorf("audio file did not become active in time")
	}

	prompt := "Transcribe the provided audio verbatim. Return plain text only, without markdown, headers, or explanations."

	resp, err := c.model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.FileData{MIMEType: mimeType, URI: file.URI},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini transcription error: %w", err)
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", fmt.Errorf("Gemini returned empty transcription")
	}

	return text, nil
}

func visionParts(prompt string, images []ImagePart) []genai.Part {
	parts := make([]genai.Part, 0, len(images)+1)
	parts = append(parts, genai.Text(prompt))
	for _, img := range images {
		format := strings.TrimPrefix(img.MIMEType, "image/")
		parts = append(parts, genai.ImageData(format, img.Data))
	}
	return parts
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
