package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var historyJSON bool

type transcriptItem struct {
	ID                string  `json:"id"`
	Text              string  `json:"text"`
	SourceDurationSec float64 `json:"source_duration_sec"`
	ModelDisplayName  string  `json:"model_display_name"`
	CreatedAt         string  `json:"created_at"`
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored transcripts from a running daemon",
	Long: `List stored transcripts, newest first.

Requires a running dictaflow daemon; point --server at it if it is not
listening on the default address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 10 * time.Second}
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, serverURL+"/api/v1/transcripts", nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("contacting daemon at %s: %w", serverURL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("daemon returned HTTP %d", resp.StatusCode)
		}

		var items []transcriptItem
		if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		if historyJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}

		for _, item := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %5.1fs  %s\n  %s\n",
				item.CreatedAt, item.ID, item.SourceDurationSec, item.ModelDisplayName, item.Text)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print raw JSON")
}
