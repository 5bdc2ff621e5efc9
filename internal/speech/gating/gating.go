package gating

import (
	"context"
	"log/slog"

	"github.com/dictaflow/dictaflow/internal/speech/engine"
)

// MinVADDurationSec is the shortest recording worth segmenting. Below
// this, the fixed per-segment overhead of voice-activity analysis costs
// more than transcribing the silence.
const MinVADDurationSec = 20.0

// VADSource lazily supplies the shared VAD session. Satisfied by the
// session manager.
type VADSource interface {
	VAD(ctx context.Context) (engine.VADSession, error)
}

// Result is the outcome of one gating pass. Degraded marks a best-effort
// VAD failure: the original buffer was used and Cause records why, so
// callers can observe the degradation without scraping logs.
type Result struct {
	Samples      []float32
	SegmentCount int
	Degraded     bool
	Cause        error
}

// Controller decides whether to run voice-activity segmentation before
// transcription and assembles the sample stream actually sent to the
// ASR engine.
type Controller struct {
	src VADSource
}

// NewController creates a gating controller over the given VAD source.
func NewController(src VADSource) *Controller {
	return &Controller{src: src}
}

// Gate returns the samples to transcribe. Segmentation runs only when
// the recording is at least MinVADDurationSec long and useVAD is set;
// otherwise the buffer passes through unchanged. VAD failure or an
// empty segment list falls back to the full buffer: gating never
// discards audio and never aborts transcription.
func (c *Controller) Gate(ctx context.Context, samples []float32, durationSec float64, useVAD bool) Result {
	if durationSec < MinVADDurationSec || !useVAD {
		return Result{Samples: samples}
	}

	vad, err := c.src.VAD(ctx)
	if err != nil {
		slog.WarnContext(ctx, "vad unavailable, transcribing full buffer",
			slog.String("error", err.Error()))
		return Result{Samples: samples, Degraded: true, Cause: err}
	}

	segments, err := vad.Segment(ctx, samples)
	if err != nil {
		slog.WarnContext(ctx, "vad segmentation failed, transcribing full buffer",
			slog.String("error", err.Error()))
		return Result{Samples: samples, Degraded: true, Cause: err}
	}

	if len(segments) == 0 {
		// Nothing detected is not a reason to discard audio.
		return Result{Samples: samples}
	}

	total := 0
	for _, seg := range segments {
		total += len(seg)
	}
	joined := make([]float32, 0, total)
	for _, seg := range segments {
		joined = append(joined, seg...)
	}

	return Result{Samples: joined, SegmentCount: len(segments)}
}
