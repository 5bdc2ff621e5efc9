package parakeet

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/dictaflow/dictaflow/internal/speech/engine"
	"github.com/dictaflow/dictaflow/internal/speech/registry"
)

func init() {
	registry.ASR.Register("parakeet", func(config map[string]string) (engine.Provider, error) {
		threads := runtime.NumCPU()
		if s := config["threads"]; s != "" {
			if v, err := strconv.Atoi(s); err == nil && v > 0 {
				threads = v
			}
		}
		return &Provider{defaultThreads: threads}, nil
	})
}

// Provider constructs Parakeet ASR sessions. This wraps the on-device
// runtime; the actual neural inference is connected through its C
// bindings when the library is available.
type Provider struct {
	defaultThreads int
}

// Load validates the artifact layout and constructs a session for the
// requested version.
func (p *Provider) Load(_ context.Context, artifacts engine.ModelArtifacts, compute engine.ComputeConfig) (engine.Session, error) {
	for _, path := range []string{artifacts.EncoderDir, artifacts.DecoderDir, artifacts.VocabPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: missing artifact %q for %s", engine.ErrEngineInit, path, artifacts.Version)
		}
	}

	threads := compute.Threads
	if threads <= 0 {
		threads = p.defaultThreads
	}

	return &session{
		version: artifacts.Version,
		threads: threads,
		useGPU:  compute.UseGPU,
	}, nil
}

type session struct {
	version engine.ModelVersion
	threads int
	useGPU  bool

	mu       sync.Mutex
	released bool
}

// Transcribe runs recognition over the sample buffer.
func (s *session) Transcribe(ctx context.Context, samples []float32) (string, error) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return "", engine.ErrModelNotLoaded
	}
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(samples) == 0 {
		return "", nil
	}

	// Inference runs through the native runtime here. Until the C
	// bindings are linked in, emit the standard placeholder so the
	// surrounding pipeline stays exercisable end to end.
	return fmt.Sprintf("[parakeet %s transcription placeholder]", s.version), nil
}

// Release frees the model resources.
func (s *session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
	return nil
}
