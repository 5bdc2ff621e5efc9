package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dictaflow/dictaflow/internal/speech/artifacts"
	"github.com/dictaflow/dictaflow/internal/speech/engine"
	"github.com/dictaflow/dictaflow/internal/speech/gating"
	"github.com/dictaflow/dictaflow/internal/speech/registry"
	"github.com/dictaflow/dictaflow/internal/speech/session"
	"github.com/dictaflow/dictaflow/internal/textproc"
	"github.com/dictaflow/dictaflow/internal/transcriber"
	"github.com/dictaflow/dictaflow/pkg/events"

	// Register speech backends via init().
	_ "github.com/dictaflow/dictaflow/internal/speech/backends/energy"
	_ "github.com/dictaflow/dictaflow/internal/speech/backends/parakeet"
)

var (
	transcribeModel      string
	transcribeNoVAD      bool
	transcribeParagraphs bool
	vadThreshold         float64
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <file.wav>",
	Short: "Transcribe a WAV recording to text",
	Long: `Transcribe a 16 kHz mono PCM16 WAV recording to text.

Recordings of twenty seconds or more are trimmed to speech segments
before recognition unless --no-vad is given.

Examples:
  dictaflow transcribe recording.wav
  dictaflow transcribe recording.wav --model v3 --paragraphs`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, cleanup, err := buildOrchestrator()
		if err != nil {
			return err
		}
		defer cleanup()

		t, err := orch.Transcribe(cmd.Context(), args[0], transcribeModel)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), t.Text)
		return nil
	},
}

func init() {
	transcribeCmd.Flags().StringVar(&transcribeModel, "model", "v3", "model version descriptor")
	transcribeCmd.Flags().BoolVar(&transcribeNoVAD, "no-vad", false, "skip speech-segment trimming")
	transcribeCmd.Flags().BoolVar(&transcribeParagraphs, "paragraphs", false, "format output into paragraphs")
	transcribeCmd.Flags().Float64Var(&vadThreshold, "vad-threshold", 0.02, "energy threshold for speech detection")
}

// buildOrchestrator wires the on-device transcription pipeline without a
// daemon: no datastore, local-only events.
func buildOrchestrator() (*transcriber.Orchestrator, func(), error) {
	asrProvider, err := registry.ASR.Create("", nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating ASR backend: %w", err)
	}
	vadProvider, err := registry.VAD.Create("", nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating VAD backend: %w", err)
	}

	locator := artifacts.NewLocator(modelsDir)
	sessions := session.NewManager(asrProvider, vadProvider, locator, session.Config{
		Compute:      engine.ComputeConfig{},
		VADThreshold: float32(vadThreshold),
	})

	var replacer textproc.Replacer
	if dictionaryPath != "" {
		dict := textproc.NewDictionary(dictionaryPath)
		if err := dict.Load(); err != nil {
			sessions.Cleanup()
			return nil, nil, fmt.Errorf("loading dictionary: %w", err)
		}
		replacer = dict
	}
	pipeline := textproc.NewPipeline(textproc.Options{
		FormatParagraphs: transcribeParagraphs,
	}, replacer)

	pub := events.NewPublisher(nil, "dictaflow-cli", "")
	orch := transcriber.NewOrchestrator(sessions, gating.NewController(sessions), pipeline, nil, pub, !transcribeNoVAD)

	return orch, func() { sessions.Cleanup() }, nil
}
