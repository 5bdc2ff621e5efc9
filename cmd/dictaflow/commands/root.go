package commands

import (
	"github.com/spf13/cobra"
)

var (
	modelsDir      string
	dictionaryPath string
	serverURL      string
)

var rootCmd = &cobra.Command{
	Use:   "dictaflow",
	Short: "Local dictation toolkit",
	Long: `dictaflow turns recorded speech into text and delivers it into the
focused application without losing whatever was on the clipboard.

Transcription runs fully on-device; the history command talks to a
running dictaflow daemon.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&modelsDir, "models-dir", "./models", "directory holding model artifacts")
	rootCmd.PersistentFlags().StringVar(&dictionaryPath, "dictionary", "", "path to a replacement dictionary YAML file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of a running dictaflow daemon")

	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(pasteCmd)
	rootCmd.AddCommand(pressEnterCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(historyCmd)
}
