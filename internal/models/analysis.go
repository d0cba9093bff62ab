package models

// Stream frame types for the nutrition analysis SSE stream.
const (
	FrameAnalysis        = "analysis"
	FrameMedicationAlert = "medication_alert"
	FrameSeparator       = "separator"
)

// Separator markers delimiting the medication alert section inside the
// nutrition stream. The browser client splits on these.
const (
	MedicationAlertStart = "MEDICATION_ALERT_START"
	MedicationAlertEnd   = "MEDICATION_ALERT_END"
)

// AnalyzeRequest is the payload for the single-image nutrition analysis
// endpoint. Image is a base64 string, optionally with a data-URL prefix.
type AnalyzeRequest struct {
	Image       string       `json:"image"`
	Medications []Medication `json:"medications,omitempty"`
}

// ComparisonRequest is the JSON variant of the before/after meal comparison
// payload. The endpoint also accepts the same two images as multipart files.
type ComparisonRequest struct {
	BeforeImage string `json:"beforeImage"`
	AfterImage  string `json:"afterImage"`
}

// ComparisonResponse is returned by the comparison endpoint.
type ComparisonResponse struct {
	Success  bool   `json:"success"`
	Analysis string `json:"analysis"`
}

// StreamFrame is one frame of the nutrition SSE stream.
type StreamFrame struct {
	Content string `json:"content"`
	Type    string `json:"type"`
}
