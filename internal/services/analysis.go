package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mediguide-backend/internal/models"
	"mediguide-backend/internal/providers"
)

type visionModel interface {
	GenerateVision(ctx context.Context, prompt string, images []providers.ImagePart) (string, error)
	StreamVision(ctx context.Context, prompt string, images []providers.ImagePart, onDelta func(string) error) error
}

// AnalysisService runs the meal image flows: single-shot before/after
// comparison and the streamed nutrition analysis with optional medication
// alerts.
type AnalysisService struct {
	vision visionModel
	log    *slog.Logger
}

func NewAnalysisService(vision visionModel, log *slog.Logger) *AnalysisService {
	return &AnalysisService{vision: vision, log: log}
}

// CompareMeals sends both images plus the fixed comparison prompt in one
// vision call and returns the full text response.
func (s *AnalysisService) CompareMeals(ctx context.Context, before, after providers.ImagePart) (string, error) {
	analysis, err := s.vision.GenerateVision(ctx, buildComparisonPrompt(), []providers.ImagePart{before, after})
	if err != nil {
		return "", fmt.Errorf("comparison analysis failed: %w", err)
	}
	return strings.TrimSpace(analysis), nil
}

// StreamNutritionAnalysis streams the nutrition breakdown for one image,
// then, when medications are present, makes a second sequential call seeded
// with the first response and streams its output between separator markers.
// Frames arrive on emit in stream order; emit returning an error aborts.
func (s *AnalysisService) StreamNutritionAnalysis(ctx context.Context, req models.AnalyzeRequest, emit func(models.StreamFrame) error) error {
	imageData, mimeType, err := models.DecodeImagePayload(req.Image)
	if err != nil {
		return fmt.Errorf("invalid image payload: %w", err)
	}
	image := providers.ImagePart{MIMEType: mimeType, Data: imageData}

	var analysis strings.Builder
	err = s.vision.StreamVision(ctx, buildNutritionPrompt(), []providers.ImagePart{image}, func(chunk string) error {
		analysis.WriteString(chunk)
		return emit(models.StreamFrame{Content: chunk, Type: models.FrameAnalysis})
	})
	if err != nil {
		return fmt.Errorf("nutrition analysis failed: %w", err)
	}

	if len(req.Medications) == 0 {
		return nil
	}

	if err := emit(models.StreamFrame{Content: models.MedicationAlertStart, Type: models.FrameSeparator}); err != nil {
		return err
	}

	alertPrompt := buildMedicationAlertPrompt(analysis.String(), req.Medications)
	err = s.vision.StreamVision(ctx, alertPrompt, nil, func(chunk string) error {
		return emit(models.StreamFrame{Content: chunk, Type: models.FrameMedicationAlert})
	})
	if err != nil {
		return fmt.Errorf("medication alert generation failed: %w", err)
	}

	return emit(models.StreamFrame{Content: models.MedicationAlertEnd, Type: models.FrameSeparator})
}
