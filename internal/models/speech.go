package models

// SpeechRequest is the payload for the text-to-speech endpoint.
type SpeechRequest struct {
	Text string `json:"text"`
}

// TranscriptionResponse is returned by the transcription endpoint.
type TranscriptionResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
}
