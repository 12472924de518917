// drafter is the command-line client of the drafting server.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ashureev/draft-studio/internal/client"
	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/identity"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	timeout   time.Duration
	sessionID string
	verbose   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "drafter",
	Short: "Draft Korean criminal complaints from the command line",
	Long: `drafter talks to a running drafting server.

Drafts are stored as JSON files holding the document and the original input,
so they can be regenerated section by section and exported to PDF.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", envOr("DRAFTER_SERVER", "http://localhost:3001"), "Drafting server URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 120*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", "cli", "Tab session ID sent to the server")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(createCmd, regenerateCmd, chatCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() *client.Client {
	t := client.NewHTTPTransport(serverURL, timeout)
	t.SetHeader(identity.SessionHeaderName, sessionID)
	return client.New(t)
}

// draftFile is the on-disk form of a draft.
type draftFile struct {
	Document *domain.DraftDocument `json:"document"`
	Original *domain.OriginalInput `json:"original"`
}

func readDraft(path string) (*draftFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	var d draftFile
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", path, err)
	}
	if d.Document == nil {
		return nil, fmt.Errorf("draft %s has no document", path)
	}
	return &d, nil
}

func writeDraft(path string, d *draftFile) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	if path == "" || path == "-" {
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
