package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dictaflow/dictaflow/internal/audio"
	"github.com/dictaflow/dictaflow/internal/history"
	"github.com/dictaflow/dictaflow/internal/speech/engine"
	"github.com/dictaflow/dictaflow/internal/speech/gating"
	"github.com/dictaflow/dictaflow/internal/speech/session"
	"github.com/dictaflow/dictaflow/internal/textproc"
	"github.com/dictaflow/dictaflow/pkg/events"
)

// Orchestrator composes audio ingestion, gating, recognition,
// normalization, and persistence into one transcription operation.
type Orchestrator struct {
	sessions *session.Manager
	gate     *gating.Controller
	pipeline *textproc.Pipeline
	store    history.Store
	pub      *events.Publisher
	useVAD   bool
}

// NewOrchestrator wires the transcription pipeline. Store and publisher
// are optional: a nil store skips persistence, a nil publisher skips
// event emission.
func NewOrchestrator(sessions *session.Manager, gate *gating.Controller, pipeline *textproc.Pipeline, store history.Store, pub *events.Publisher, useVAD bool) *Orchestrator {
	return &Orchestrator{
		sessions: sessions,
		gate:     gate,
		pipeline: pipeline,
		store:    store,
		pub:      pub,
		useVAD:   useVAD,
	}
}

// Transcribe turns the audio file at audioPath into a finished
// transcript using the model named by modelName. Each step hard-depends
// on its predecessor; persistence alone is best-effort, so the caller
// receives the transcript value even when the history insert fails.
func (o *Orchestrator) Transcribe(ctx context.Context, audioPath, modelName string) (*history.Transcript, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("%w: %q", engine.ErrNoAudioFile, audioPath)
	}

	version := engine.ParseModelVersion(modelName)
	sess, err := o.sessions.EnsureLoaded(ctx, version)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", engine.ErrNoAudioFile, audioPath)
	}
	samples, err := audio.DecodePCM16(data)
	if err != nil {
		return nil, err
	}
	durationSec := audio.Duration(len(samples))
	readDur := time.Since(start)

	gateStart := time.Now()
	gated := o.gate.Gate(ctx, samples, durationSec, o.useVAD)
	gateDur := time.Since(gateStart)
	if gated.Degraded {
		o.emit(ctx, events.GatingDegraded, "", events.GatingDegradedData{
			Reason:      gated.Cause.Error(),
			DurationSec: durationSec,
		})
	}

	asrStart := time.Now()
	raw, err := sess.Transcribe(ctx, gated.Samples)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrTranscriptionFailed, err)
	}
	asrDur := time.Since(asrStart)

	text := o.pipeline.Normalize(raw)

	t := &history.Transcript{
		Text:              text,
		SourceDurationSec: durationSec,
		AudioPath:         audioPath,
		ModelDisplayName:  version.DisplayName(),
		ProcessingMs:      time.Since(start).Milliseconds(),
	}

	slog.InfoContext(ctx, "transcription finished",
		slog.String("model", version.String()),
		slog.Float64("source_sec", durationSec),
		slog.Int("segments", gated.SegmentCount),
		slog.Duration("read", readDur),
		slog.Duration("gate", gateDur),
		slog.Duration("asr", asrDur),
	)

	if o.store != nil {
		if err := o.store.Insert(ctx, t); err != nil {
			// History is an optional enhancement; the transcript itself
			// is still delivered to the caller.
			slog.ErrorContext(ctx, "persist transcript failed", slog.String("error", err.Error()))
			return t, nil
		}
		o.emit(ctx, events.TranscriptCreated, t.ID, events.TranscriptCreatedData{
			TranscriptID:      t.ID,
			Text:              t.Text,
			ModelDisplayName:  t.ModelDisplayName,
			SourceDurationSec: t.SourceDurationSec,
			ProcessingMs:      t.ProcessingMs,
		})
	}

	return t, nil
}

func (o *Orchestrator) emit(ctx context.Context, et events.EventType, subjectID string, data interface{}) {
	if o.pub == nil {
		return
	}
	if err := o.pub.Emit(ctx, et, subjectID, data); err != nil {
		slog.WarnContext(ctx, "emit event failed",
			slog.String("event_type", string(et)),
			slog.String("error", err.Error()))
	}
}
