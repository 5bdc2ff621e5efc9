package api

import "github.com/dictaflow/dictaflow/pkg/events"

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TranscriptResponse is the API shape of a finished transcript.
type TranscriptResponse struct {
	ID                string  `json:"id"`
	Text              string  `json:"text"`
	SourceDurationSec float64 `json:"source_duration_sec"`
	AudioPath         string  `json:"audio_path,omitempty"`
	ModelDisplayName  string  `json:"model_display_name"`
	ProcessingMs      int64   `json:"processing_ms"`
	CreatedAt         string  `json:"created_at"`
}

// ModelResponse describes one supported model version.
type ModelResponse struct {
	Version     string `json:"version"`
	DisplayName string `json:"display_name"`
	Available   bool   `json:"available"`
}

// PasteRequest asks for text delivery at the OS cursor.
type PasteRequest struct {
	Text string `json:"text"`
}

// CreateEndpointRequest registers a notification endpoint.
type CreateEndpointRequest struct {
	Name        string             `json:"name"`
	URL         string             `json:"url"`
	EventTypes  []events.EventType `json:"event_types"`
	Description string             `json:"description,omitempty"`
}

// EndpointResponse is the API shape of a notification endpoint.
type EndpointResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	URL         string             `json:"url"`
	EventTypes  []events.EventType `json:"event_types"`
	IsActive    bool               `json:"is_active"`
	Description string             `json:"description,omitempty"`
	Secret      string             `json:"secret,omitempty"`
	CreatedAt   string             `json:"created_at"`
}
