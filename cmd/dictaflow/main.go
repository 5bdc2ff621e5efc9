// Package main provides the dictaflow command line tool.
//
// Usage:
//
//	dictaflow [flags] <command> [args]
//
// Commands:
//
//	transcribe  - Transcribe a WAV recording to text
//	paste       - Paste text into the focused application
//	press-enter - Post a return keystroke
//	models      - List model versions and their install state
//	history     - List stored transcripts from a running daemon
package main

import (
	"fmt"
	"os"

	"github.com/dictaflow/dictaflow/cmd/dictaflow/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
