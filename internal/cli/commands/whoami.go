package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/recipebox-dev/recipebox/internal/cli/client"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(g *Globals) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), g, func(a *app) error {
				return runWhoami(cmd.Context(), cmd.OutOrStdout(), a, check)
			})
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Also ask the server whether the session is still valid")

	return cmd
}

func runWhoami(ctx context.Context, out io.Writer, a *app, check bool) error {
	state := a.store.State()
	if !state.IsLoggedIn() {
		fmt.Fprintln(out, "Not logged in.")
		return nil
	}

	fmt.Fprintf(out, "%s (%s) on %s\n", state.Name, state.Email, a.cfg.ServerURL)

	if !check {
		return nil
	}

	if _, err := a.api.Me(ctx); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			fmt.Fprintln(out, "The server no longer accepts this session. Run 'recipebox login'.")
			return nil
		}
		return fmt.Errorf("failed to check session: %w", err)
	}

	fmt.Fprintln(out, "Session is valid.")
	return nil
}
