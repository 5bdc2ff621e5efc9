package engine

import (
	"context"
	"strings"
)

// ModelVersion identifies one of the two supported on-device ASR model
// generations. The set is closed: decision points switch exhaustively
// over these two values.
type ModelVersion int

const (
	V2 ModelVersion = iota
	V3
)

// ParseModelVersion resolves a version from a model descriptor name.
// A name containing "v2" selects V2; everything else is V3.
func ParseModelVersion(name string) ModelVersion {
	if strings.Contains(strings.ToLower(name), "v2") {
		return V2
	}
	return V3
}

// String returns the canonical short name for the version.
func (v ModelVersion) String() string {
	if v == V2 {
		return "v2"
	}
	return "v3"
}

// DisplayName returns the user-facing model name for the version.
func (v ModelVersion) DisplayName() string {
	if v == V2 {
		return "Parakeet v2"
	}
	return "Parakeet v3"
}

// ModelArtifacts locates the on-disk components a session needs.
type ModelArtifacts struct {
	Version    ModelVersion
	EncoderDir string
	DecoderDir string
	VocabPath  string
}

// ComputeConfig selects execution parameters for session construction.
type ComputeConfig struct {
	Threads int
	UseGPU  bool
}

// Session is a loaded ASR model instance. Construction is expensive;
// ownership stays with the session manager.
type Session interface {
	// Transcribe converts normalized mono 16kHz samples to raw text.
	Transcribe(ctx context.Context, samples []float32) (string, error)
	// Release frees the model resources. The session is unusable afterwards.
	Release() error
}

// Provider constructs ASR sessions for a model version.
type Provider interface {
	Load(ctx context.Context, artifacts ModelArtifacts, compute ComputeConfig) (Session, error)
}

// VADSession partitions a sample buffer into speech segments.
type VADSession interface {
	// Segment returns each detected speech region's samples in temporal
	// order. An empty result means no speech was detected.
	Segment(ctx context.Context, samples []float32) ([][]float32, error)
	Release() error
}

// VADProvider constructs VAD sessions with a fixed detection threshold.
type VADProvider interface {
	Construct(threshold float32) (VADSession, error)
}
