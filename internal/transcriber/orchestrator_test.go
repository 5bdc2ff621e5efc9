package transcriber

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dictaflow/dictaflow/internal/audio"
	"github.com/dictaflow/dictaflow/internal/history"
	"github.com/dictaflow/dictaflow/internal/speech/artifacts"
	"github.com/dictaflow/dictaflow/internal/speech/engine"
	"github.com/dictaflow/dictaflow/internal/speech/gating"
	"github.com/dictaflow/dictaflow/internal/speech/session"
	"github.com/dictaflow/dictaflow/internal/textproc"
	"github.com/dictaflow/dictaflow/pkg/events"
)

type fakeSession struct {
	text string
	err  error
	got  []float32
}

func (s *fakeSession) Transcribe(_ context.Context, samples []float32) (string, error) {
	s.got = samples
	return s.text, s.err
}

func (s *fakeSession) Release() error { return nil }

type fakeProvider struct {
	sess *fakeSession
}

func (p *fakeProvider) Load(_ context.Context, _ engine.ModelArtifacts, _ engine.ComputeConfig) (engine.Session, error) {
	return p.sess, nil
}

type fakeVADProvider struct{}

type fakeVADSession struct{}

func (fakeVADSession) Segment(_ context.Context, in []float32) ([][]float32, error) {
	return [][]float32{in}, nil
}
func (fakeVADSession) Release() error { return nil }

func (fakeVADProvider) Construct(_ float32) (engine.VADSession, error) {
	return fakeVADSession{}, nil
}

type fakeStore struct {
	inserted  []*history.Transcript
	insertErr error
}

func (s *fakeStore) Insert(_ context.Context, t *history.Transcript) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	t.ID = "tr-1"
	s.inserted = append(s.inserted, t)
	return nil
}

func installModels(t *testing.T) *artifacts.Locator {
	t.Helper()
	dir := t.TempDir()
	for _, v := range []engine.ModelVersion{engine.V2, engine.V3} {
		base := filepath.Join(dir, v.String())
		for _, sub := range []string{"encoder", "decoder"} {
			if err := os.MkdirAll(filepath.Join(base, sub), 0o755); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
		}
		if err := os.WriteFile(filepath.Join(base, "vocab.txt"), []byte("<blk>\n"), 0o644); err != nil {
			t.Fatalf("write vocab: %v", err)
		}
	}
	return artifacts.NewLocator(dir)
}

// writeWAV writes a PCM16 WAV file holding the given number of seconds
// of a quiet constant tone.
func writeWAV(t *testing.T, seconds float64) string {
	t.Helper()
	samples := int(seconds * audio.SampleRate)
	data := make([]byte, audio.HeaderSize+samples*2)
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint16(data[audio.HeaderSize+i*2:], uint16(int16(1000)))
	}
	path := filepath.Join(t.TempDir(), "recording.wav")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	return path
}

type fixture struct {
	sess  *fakeSession
	store *fakeStore
	pub   *events.Publisher
	orch  *Orchestrator
}

func newFixture(t *testing.T, useVAD bool) *fixture {
	t.Helper()
	f := &fixture{
		sess:  &fakeSession{text: "[BLANK_AUDIO] hello world "},
		store: &fakeStore{},
		pub:   events.NewPublisher(nil, "test", ""),
	}
	sessions := session.NewManager(&fakeProvider{sess: f.sess}, fakeVADProvider{}, installModels(t), session.Config{})
	pipeline := textproc.NewPipeline(textproc.Options{}, nil)
	f.orch = NewOrchestrator(sessions, gating.NewController(sessions), pipeline, f.store, f.pub, useVAD)
	return f
}

func TestTranscribeHappyPath(t *testing.T) {
	f := newFixture(t, true)
	path := writeWAV(t, 2.0)

	ch := f.pub.Subscribe("test", 4)
	defer f.pub.Unsubscribe("test")

	got, err := f.orch.Transcribe(context.Background(), path, "parakeet-v2")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}

	if got.Text != "hello world" {
		t.Errorf("Text = %q, want normalized %q", got.Text, "hello world")
	}
	if got.ModelDisplayName != "Parakeet v2" {
		t.Errorf("ModelDisplayName = %q", got.ModelDisplayName)
	}
	if got.SourceDurationSec != 2.0 {
		t.Errorf("SourceDurationSec = %v, want 2.0", got.SourceDurationSec)
	}
	if got.AudioPath != path {
		t.Errorf("AudioPath = %q, want %q", got.AudioPath, path)
	}
	if len(f.sess.got) != 2*audio.SampleRate {
		t.Errorf("engine received %d samples, want %d", len(f.sess.got), 2*audio.SampleRate)
	}

	if len(f.store.inserted) != 1 {
		t.Fatalf("inserted %d transcripts, want 1", len(f.store.inserted))
	}

	select {
	case env := <-ch:
		if env.Type != events.TranscriptCreated {
			t.Errorf("event type = %s, want %s", env.Type, events.TranscriptCreated)
		}
		if env.SubjectID != got.ID {
			t.Errorf("event subject = %q, want %q", env.SubjectID, got.ID)
		}
	default:
		t.Error("no transcript event emitted")
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.orch.Transcribe(context.Background(), filepath.Join(t.TempDir(), "absent.wav"), "v3")
	if !errors.Is(err, engine.ErrNoAudioFile) {
		t.Fatalf("err = %v, want ErrNoAudioFile", err)
	}
	if len(f.store.inserted) != 0 {
		t.Error("nothing may be persisted on failure")
	}
}

func TestTranscribeInvalidAudio(t *testing.T) {
	f := newFixture(t, true)
	path := filepath.Join(t.TempDir(), "short.wav")
	if err := os.WriteFile(path, []byte("not a wav"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := f.orch.Transcribe(context.Background(), path, "v3")
	if !errors.Is(err, engine.ErrInvalidAudioFormat) {
		t.Fatalf("err = %v, want ErrInvalidAudioFormat", err)
	}
}

func TestTranscribeEngineFailure(t *testing.T) {
	f := newFixture(t, true)
	f.sess.err = errors.New("decoder crashed")
	path := writeWAV(t, 1.0)

	_, err := f.orch.Transcribe(context.Background(), path, "v3")
	if !errors.Is(err, engine.ErrTranscriptionFailed) {
		t.Fatalf("err = %v, want ErrTranscriptionFailed", err)
	}
	if len(f.store.inserted) != 0 {
		t.Error("nothing may be persisted on engine failure")
	}
}

func TestTranscribePersistFailureStillReturnsTranscript(t *testing.T) {
	f := newFixture(t, true)
	f.store.insertErr = errors.New("database gone")
	path := writeWAV(t, 1.0)

	ch := f.pub.Subscribe("test", 4)
	defer f.pub.Unsubscribe("test")

	got, err := f.orch.Transcribe(context.Background(), path, "v3")
	if err != nil {
		t.Fatalf("persistence failure must not fail the transcription: %v", err)
	}
	if got == nil || got.Text != "hello world" {
		t.Fatalf("transcript = %+v, want the finished text", got)
	}

	select {
	case env := <-ch:
		t.Errorf("unexpected event %s: created events require successful persistence", env.Type)
	default:
	}
}

func TestTranscribeModelSelection(t *testing.T) {
	tests := []struct {
		descriptor string
		want       string
	}{
		{"v2", "Parakeet v2"},
		{"parakeet-V2-en", "Parakeet v2"},
		{"v3", "Parakeet v3"},
		{"", "Parakeet v3"},
		{"anything else", "Parakeet v3"},
	}

	for _, tc := range tests {
		t.Run(tc.descriptor, func(t *testing.T) {
			f := newFixture(t, false)
			path := writeWAV(t, 0.5)

			got, err := f.orch.Transcribe(context.Background(), path, tc.descriptor)
			if err != nil {
				t.Fatalf("Transcribe: %v", err)
			}
			if got.ModelDisplayName != tc.want {
				t.Errorf("ModelDisplayName = %q, want %q", got.ModelDisplayName, tc.want)
			}
		})
	}
}
