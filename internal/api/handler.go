package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/xid"

	"github.com/dictaflow/dictaflow/internal/audio"
	"github.com/dictaflow/dictaflow/internal/history"
	"github.com/dictaflow/dictaflow/internal/paste"
	"github.com/dictaflow/dictaflow/internal/speech/artifacts"
	"github.com/dictaflow/dictaflow/internal/speech/engine"
	"github.com/dictaflow/dictaflow/pkg/events"
	"github.com/dictaflow/dictaflow/pkg/notify"
)

const maxAudioBodySize = 64 << 20 // 64 MiB
const maxRequestBodySize = 1 << 20

// Transcriber runs one transcription request end to end.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, modelName string) (*history.Transcript, error)
}

// Paster delivers text into the OS input focus.
type Paster interface {
	PasteAtCursor(ctx context.Context, text string) error
	PressEnter(ctx context.Context) error
}

// Handler provides the REST surface of the dictation service.
type Handler struct {
	transcriber Transcriber
	transcripts *history.Repository
	paster      Paster
	locator     *artifacts.Locator
	endpoints   *notify.Repository
	publisher   *events.Publisher
	audioDir    string
}

// NewHandler creates the API handler. audioDir receives uploaded audio
// before transcription.
func NewHandler(transcriber Transcriber, transcripts *history.Repository, paster Paster, locator *artifacts.Locator, endpoints *notify.Repository, publisher *events.Publisher, audioDir string) *Handler {
	return &Handler{
		transcriber: transcriber,
		transcripts: transcripts,
		paster:      paster,
		locator:     locator,
		endpoints:   endpoints,
		publisher:   publisher,
		audioDir:    audioDir,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/transcripts", h.CreateTranscript)
	mux.HandleFunc("GET /api/v1/transcripts", h.ListTranscripts)
	mux.HandleFunc("GET /api/v1/transcripts/{id}", h.GetTranscript)
	mux.HandleFunc("DELETE /api/v1/transcripts/{id}", h.DeleteTranscript)
	mux.HandleFunc("GET /api/v1/models", h.ListModels)
	mux.HandleFunc("POST /api/v1/paste", h.Paste)
	mux.HandleFunc("POST /api/v1/press-enter", h.PressEnter)
	mux.HandleFunc("POST /api/v1/endpoints", h.CreateEndpoint)
	mux.HandleFunc("GET /api/v1/endpoints", h.ListEndpoints)
	mux.HandleFunc("DELETE /api/v1/endpoints/{id}", h.DeleteEndpoint)
	mux.HandleFunc("POST /api/v1/endpoints/{id}/test", h.TestEndpoint)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func toTranscriptResponse(t *history.Transcript) TranscriptResponse {
	return TranscriptResponse{
		ID:                t.ID,
		Text:              t.Text,
		SourceDurationSec: t.SourceDurationSec,
		AudioPath:         t.AudioPath,
		ModelDisplayName:  t.ModelDisplayName,
		ProcessingMs:      t.ProcessingMs,
		CreatedAt:         t.CreatedAt.Format(time.RFC3339),
	}
}

// CreateTranscript handles POST /api/v1/transcripts. The body is a WAV
// byte stream, or raw 16kHz 16-bit mono PCM which is wrapped in a WAV
// container before storage. The model descriptor comes from the "model"
// query parameter.
func (h *Handler) CreateTranscript(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBodySize)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read audio body: "+err.Error())
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty audio body")
		return
	}

	audioPath := filepath.Join(h.audioDir, xid.New().String()+".wav")
	if err := storeAudio(audioPath, data); err != nil {
		writeError(w, http.StatusInternalServerError, "store audio: "+err.Error())
		return
	}

	t, err := h.transcriber.Transcribe(r.Context(), audioPath, r.URL.Query().Get("model"))
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrNoAudioFile), errors.Is(err, engine.ErrInvalidAudioFormat):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, engine.ErrEngineInit):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, toTranscriptResponse(t))
}

// storeAudio writes uploaded audio to path. A body that already carries
// a RIFF container is stored verbatim; anything else is treated as raw
// PCM and gets a WAV header first.
func storeAudio(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if !bytes.HasPrefix(data, []byte("RIFF")) {
		if err := audio.WriteWAVHeader(f, len(data)); err != nil {
			return err
		}
	}
	_, err = f.Write(data)
	return err
}

// ListTranscripts handles GET /api/v1/transcripts.
func (h *Handler) ListTranscripts(w http.ResponseWriter, r *http.Request) {
	items, err := h.transcripts.List(r.Context(), 50, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list transcripts failed")
		return
	}
	resp := make([]TranscriptResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toTranscriptResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTranscript handles GET /api/v1/transcripts/{id}.
func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	t, err := h.transcripts.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "transcript not found")
		return
	}
	writeJSON(w, http.StatusOK, toTranscriptResponse(t))
}

// DeleteTranscript handles DELETE /api/v1/transcripts/{id}.
func (h *Handler) DeleteTranscript(w http.ResponseWriter, r *http.Request) {
	if err := h.transcripts.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, "delete transcript failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListModels handles GET /api/v1/models.
func (h *Handler) ListModels(w http.ResponseWriter, _ *http.Request) {
	versions := []engine.ModelVersion{engine.V2, engine.V3}
	resp := make([]ModelResponse, 0, len(versions))
	for _, v := range versions {
		resp = append(resp, ModelResponse{
			Version:     v.String(),
			DisplayName: v.DisplayName(),
			Available:   h.locator.Available(v),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Paste handles POST /api/v1/paste.
func (h *Handler) Paste(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req PasteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	if err := h.paster.PasteAtCursor(r.Context(), req.Text); err != nil {
		switch {
		case errors.Is(err, paste.ErrDeliveryInFlight):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, paste.ErrPermissionNotGranted):
			writeError(w, http.StatusForbidden, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PressEnter handles POST /api/v1/press-enter.
func (h *Handler) PressEnter(w http.ResponseWriter, r *http.Request) {
	if err := h.paster.PressEnter(r.Context()); err != nil {
		if errors.Is(err, paste.ErrPermissionNotGranted) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toEndpointResponse(ep *notify.Endpoint, includeSecret bool) EndpointResponse {
	resp := EndpointResponse{
		ID:          ep.ID,
		Name:        ep.Name,
		URL:         ep.URL,
		EventTypes:  []events.EventType(ep.EventTypes),
		IsActive:    ep.IsActive,
		Description: ep.Description,
		CreatedAt:   ep.CreatedAt.Format(time.RFC3339),
	}
	if includeSecret {
		resp.Secret = ep.Secret
	}
	return resp
}

// CreateEndpoint handles POST /api/v1/endpoints.
func (h *Handler) CreateEndpoint(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req CreateEndpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.URL == "" {
		writeError(w, http.StatusBadRequest, "name and url are required")
		return
	}
	if err := notify.ValidateEndpointURL(req.URL, notify.AllowLocalTargets()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid endpoint URL: "+err.Error())
		return
	}

	secret, err := notify.GenerateSecret()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate secret")
		return
	}

	ep := &notify.Endpoint{
		Name:        req.Name,
		URL:         req.URL,
		Secret:      secret,
		EventTypes:  notify.EventTypesJSON(req.EventTypes),
		IsActive:    true,
		Description: req.Description,
	}
	if err := h.endpoints.CreateEndpoint(r.Context(), ep); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create endpoint")
		return
	}
	writeJSON(w, http.StatusCreated, toEndpointResponse(ep, true))
}

// ListEndpoints handles GET /api/v1/endpoints.
func (h *Handler) ListEndpoints(w http.ResponseWriter, r *http.Request) {
	endpoints, err := h.endpoints.ListEndpoints(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list endpoints")
		return
	}
	resp := make([]EndpointResponse, 0, len(endpoints))
	for i := range endpoints {
		resp = append(resp, toEndpointResponse(&endpoints[i], false))
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteEndpoint handles DELETE /api/v1/endpoints/{id}.
func (h *Handler) DeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	if err := h.endpoints.DeleteEndpoint(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete endpoint")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TestEndpoint handles POST /api/v1/endpoints/{id}/test.
func (h *Handler) TestEndpoint(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.endpoints.GetEndpoint(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "endpoint not found")
		return
	}

	if err := h.publisher.Emit(r.Context(), events.NotifyTest, id, events.NotifyTestData{
		EndpointID: id,
		Message:    "This is a test notification from dictaflow",
	}); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to publish test event")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "test event published"})
}
