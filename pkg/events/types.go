package events

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of event flowing through the system.
type EventType string

const (
	TranscriptCreated EventType = "transcript.created"
	GatingDegraded    EventType = "gating.degraded"
	ModelLoaded       EventType = "model.loaded"
	ModelReleased     EventType = "model.released"
	PasteDelivered    EventType = "paste.delivered"
	PasteAborted      EventType = "paste.aborted"
	NotifyTest        EventType = "notify.test"
	SystemError       EventType = "error"
)

// Envelope is the standard event wrapper published to the event bus.
// SubjectID names the entity the event is about (transcript ID, model
// version, paste request ID).
type Envelope struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Source    string            `json:"source"`
	SubjectID string            `json:"subject_id"`
	Timestamp time.Time         `json:"timestamp"`
	Data      json.RawMessage   `json:"data"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// TranscriptCreatedData is the payload for transcript.created events.
type TranscriptCreatedData struct {
	TranscriptID      string  `json:"transcript_id"`
	Text              string  `json:"text"`
	ModelDisplayName  string  `json:"model_display_name"`
	SourceDurationSec float64 `json:"source_duration_sec"`
	ProcessingMs      int64   `json:"processing_ms"`
}

// GatingDegradedData is the payload for gating.degraded events.
type GatingDegradedData struct {
	Reason      string  `json:"reason"`
	DurationSec float64 `json:"duration_sec"`
}

// ModelEventData is the payload for model.loaded and model.released events.
type ModelEventData struct {
	Version     string `json:"version"`
	DisplayName string `json:"display_name"`
}

// PasteDeliveredData is the payload for paste.delivered events.
type PasteDeliveredData struct {
	Chars     int  `json:"chars"`
	Preserved bool `json:"preserved"`
	Attempts  int  `json:"attempts"`
}

// PasteAbortedData is the payload for paste.aborted events.
type PasteAbortedData struct {
	Reason   string `json:"reason"`
	Attempts int    `json:"attempts"`
	Restored bool   `json:"restored"`
}

// NotifyTestData is the payload for notify.test events.
type NotifyTestData struct {
	EndpointID string `json:"endpoint_id"`
	Message    string `json:"message"`
}
