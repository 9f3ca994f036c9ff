package commands

import (
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/recipebox-dev/recipebox/internal/cli/userconfig"
)

// NewUseCmd creates the use command
func NewUseCmd() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "use <server-url>",
		Short: "Select the recipebox server to talk to",
		Long: `Select the recipebox server to talk to, and optionally where the session is kept.

Examples:
  $ recipebox use http://localhost:8080
  $ recipebox use https://recipes.example.com --session-backend keyring`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUse(cmd.OutOrStdout(), args[0], backend)
		},
	}

	cmd.Flags().StringVar(&backend, "session-backend", "", "Where to keep the session: file, keyring, redis or memory")

	return cmd
}

func runUse(out io.Writer, serverURL, backend string) error {
	u, err := url.Parse(serverURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL '%s' (expected http(s)://host[:port])", serverURL)
	}

	if err := userconfig.SetServer(serverURL, backend); err != nil {
		return fmt.Errorf("failed to save server: %w", err)
	}

	cfg, err := userconfig.Load()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Using server: %s (session backend: %s)\n", cfg.ServerURL, cfg.SessionBackend)
	return nil
}
