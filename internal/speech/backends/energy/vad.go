package energy

import (
	"context"
	"math"

	"github.com/dictaflow/dictaflow/internal/speech/engine"
	"github.com/dictaflow/dictaflow/internal/speech/registry"
)

func init() {
	registry.VAD.Register("energy", func(_ map[string]string) (engine.VADProvider, error) {
		return Provider{}, nil
	})
}

const (
	sampleRate      = 16000
	frameMs         = 30
	frameSamples    = sampleRate * frameMs / 1000
	speechMinDurMs  = 200
	silenceMinDurMs = 700
)

// Provider constructs RMS-energy voice activity sessions. The detector
// needs no model artifacts, so construction is cheap and never fails.
type Provider struct{}

// Construct builds a session with the given detection threshold in
// normalized sample units (0..1).
func (Provider) Construct(threshold float32) (engine.VADSession, error) {
	return &session{threshold: float64(threshold)}, nil
}

type session struct {
	threshold float64
}

// Segment walks the buffer in 30ms frames and groups contiguous
// above-threshold runs into speech segments. Short blips below the
// speech minimum are discarded; gaps shorter than the silence minimum
// do not split a segment.
func (s *session) Segment(ctx context.Context, samples []float32) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	speechMinFrames := speechMinDurMs / frameMs
	silenceMinFrames := silenceMinDurMs / frameMs

	var segments [][]float32
	var segStart int
	inSpeech := false
	speechRun := 0
	silenceRun := 0

	for off := 0; off < len(samples); off += frameSamples {
		end := off + frameSamples
		if end > len(samples) {
			end = len(samples)
		}

		if rms(samples[off:end]) >= s.threshold {
			silenceRun = 0
			speechRun++
			if !inSpeech && speechRun >= speechMinFrames {
				inSpeech = true
				segStart = off - (speechRun-1)*frameSamples
				if segStart < 0 {
					segStart = 0
				}
			}
		} else {
			speechRun = 0
			silenceRun++
			if inSpeech && silenceRun >= silenceMinFrames {
				inSpeech = false
				segEnd := off - (silenceRun-1)*frameSamples
				if segEnd > segStart {
					segments = append(segments, samples[segStart:segEnd])
				}
			}
		}
	}

	if inSpeech && len(samples) > segStart {
		segments = append(segments, samples[segStart:])
	}

	return segments, nil
}

func (s *session) Release() error { return nil }

func rms(frame []float32) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, v := range frame {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(frame)))
}
