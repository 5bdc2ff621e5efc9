package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dictaflow/dictaflow/internal/paste"
)

var pastePreserve bool

var pasteCmd = &cobra.Command{
	Use:   "paste [text]",
	Short: "Paste text into the focused application",
	Long: `Paste text into the focused application through the clipboard.

The previous clipboard contents are captured first and restored after
the paste keystroke unless --preserve-clipboard is given. With no
argument the text is read from stdin.

Examples:
  dictaflow paste "hello world"
  dictaflow transcribe recording.wav | dictaflow paste`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		if len(args) == 1 {
			text = args[0]
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			text = strings.TrimRight(string(data), "\n")
		}
		if text == "" {
			return fmt.Errorf("nothing to paste")
		}

		return newDeliverer().PasteAtCursor(cmd.Context(), text)
	},
}

var pressEnterCmd = &cobra.Command{
	Use:   "press-enter",
	Short: "Post a return keystroke",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newDeliverer().PressEnter(cmd.Context())
	},
}

func init() {
	pasteCmd.Flags().BoolVar(&pastePreserve, "preserve-clipboard", false, "leave the pasted text on the clipboard")
}

func newDeliverer() *paste.Deliverer {
	return paste.NewDeliverer(
		paste.SystemClipboard{},
		paste.SystemTrust{},
		paste.SystemKeyInjector{},
		paste.DesktopNotifier{},
		paste.SystemScheduler,
		nil,
		paste.Options{PreserveClipboard: pastePreserve},
	)
}
