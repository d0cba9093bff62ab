package models

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeImagePayload decodes a base64 image payload, tolerating an optional
// data-URL prefix (data:image/png;base64,...). It returns the raw bytes and
// the MIME type, defaulting to image/jpeg when the payload has no prefix.
func DecodeImagePayload(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", fmt.Errorf("empty image payload")
	}

	mimeType := "image/jpeg"
	if strings.HasPrefix(payload, "data:") {
		comma := strings.Index(payload, ",")
		if comma < 0 {
			return nil, "", fmt.Errorf("malformed data URL: missing comma")
		}
		header := payload[len("data:"):comma]
		if mt, _, found := strings.Cut(header, ";"); found && mt != "" {
			mimeType = mt
		} else if header != "" {
			mimeType = header
		}
		payload = payload[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64 image: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("decoded image is empty")
	}

	return data, mimeType, nil
}
