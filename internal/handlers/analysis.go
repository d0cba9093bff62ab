package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"mediguide-backend/internal/models"
	"mediguide-backend/internal/providers"
)

const maxImageUploadBytes = 20 * 1024 * 1024 // 20MB across both images

type mealAnalyzer interface {
	CompareMeals(ctx context.Context, before, after providers.ImagePart) (string, error)
	StreamNutritionAnalysis(ctx context.Context, req models.AnalyzeRequest, emit func(models.StreamFrame) error) error
}

type AnalysisHandler struct {
	analysis mealAnalyzer
	log      *slog.Logger
}

func NewAnalysisHandler(analysis mealAnalyzer, log *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, log: log}
}

// Compare accepts before/after meal images as multipart files or as JSON
// base64 payloads, runs the single-shot comparison, and returns the full
// analysis text.
func (h *AnalysisHandler) Compare(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadBytes)

	var before, after providers.ImagePart
	var err error

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		before, after, err = readComparisonForm(r)
	} else {
		before, after, err = readComparisonJSON(r)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", err.Error(), map[string]string{
			"beforeImage": "required",
			"afterImage":  "required",
		}, r))
		return
	}

	analysis, err := h.analysis.CompareMeals(r.Context(), before, after)
	if err != nil {
		h.log.Error("comparison analysis failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", "Failed to analyze images", r))
		return
	}

	writeJSON(w, http.StatusOK, models.ComparisonResponse{Success: true, Analysis: analysis})
}

// Nutrition streams the nutritional breakdown of one meal image as SSE
// frames, followed by a delimited medication-alert section when the request
// carries medications, and a [DONE] terminator.
func (h *AnalysisHandler) Nutrition(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadBytes)

	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if _, _, err := models.DecodeImagePayload(req.Image); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "A valid base64 image is required", r))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Streaming is not supported", r))
		return
	}

	setSSEHeaders(w)

	wroteAny := false
	err := h.analysis.StreamNutritionAnalysis(r.Context(), req, func(frame models.StreamFrame) error {
		wroteAny = true
		return writeSSEFrame(w, flusher, frame)
	})
	if err != nil {
		h.log.Error("nutrition stream failed", "error", err)
		if !wroteAny {
			writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", "Failed to analyze image", r))
			return
		}
		// Mid-stream failure: emit an error frame so the client can stop
		// parsing cleanly, then terminate.
		writeSSEFrame(w, flusher, models.StreamFrame{Content: "Analysis failed", Type: "error"})
	}

	writeSSEDone(w, flusher)
}

func readComparisonForm(r *http.Request) (providers.ImagePart, providers.ImagePart, error) {
	before, err := readFormImage(r, "beforeImage")
	if err != nil {
		return providers.ImagePart{}, providers.ImagePart{}, err
	}
	after, err := readFormImage(r, "afterImage")
	if err != nil {
		return providers.ImagePart{}, providers.ImagePart{}, err
	}
	return before, after, nil
}

func readFormImage(r *http.Request, field string) (providers.ImagePart, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return providers.ImagePart{}, fmt.Errorf("missing %s", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		return providers.ImagePart{}, fmt.Errorf("unreadable %s", field)
	}

	// Sniff the type from the payload, not the client-supplied filename.
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return providers.ImagePart{}, fmt.Errorf("%s is not an image", field)
	}

	return providers.ImagePart{MIMEType: mimeType, Data: data}, nil
}

func readComparisonJSON(r *http.Request) (providers.ImagePart, providers.ImagePart, error) {
	var req models.ComparisonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return providers.ImagePart{}, providers.ImagePart{}, fmt.Errorf("invalid request body")
	}

	if req.BeforeImage == "" || req.AfterImage == "" {
		return providers.ImagePart{}, providers.ImagePart{}, fmt.Errorf("beforeImage and afterImage are required")
	}

	beforeData, beforeMIME, err := models.DecodeImagePayload(req.BeforeImage)
	if err != nil {
		return providers.ImagePart{}, providers.ImagePart{}, fmt.Errorf("invalid beforeImage: %v", err)
	}
	afterData, afterMIME, err := models.DecodeImagePayload(req.AfterImage)
	if err != nil {
		return providers.ImagePart{}, providers.ImagePart{}, fmt.Errorf("invalid afterImage: %v", err)
	}

	return providers.ImagePart{MIMEType: beforeMIME, Data: beforeData},
		providers.ImagePart{MIMEType: afterMIME, Data: afterData}, nil
}
