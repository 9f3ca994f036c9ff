package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/recipebox-dev/recipebox/internal/controls"
	"github.com/recipebox-dev/recipebox/internal/nav"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), g, func(a *app) error {
				return runLogout(cmd.Context(), cmd.OutOrStdout(), a, nav.NewRouter(nav.PathHome, nil))
			})
		},
	}

	return cmd
}

// newLogoutControl wires the logout control to the app's store and API
func newLogoutControl(a *app, navigator nav.Navigator) *controls.Logout {
	ctl := controls.NewLogout(a.store, navigator, a.logger)
	if a.store.State().IsLoggedIn() {
		ctl.Revoke = a.api.Logout
	}
	return ctl
}

func runLogout(ctx context.Context, out io.Writer, a *app, router *nav.Router) error {
	wasLoggedIn := a.store.State().IsLoggedIn()

	if err := newLogoutControl(a, router).Activate(ctx); err != nil {
		fmt.Fprintf(out, "Warning: logged out, but the saved session could not be removed: %v\n", err)
	}

	if wasLoggedIn {
		fmt.Fprintln(out, "✓ Logged out.")
	} else {
		fmt.Fprintln(out, "Not logged in.")
	}
	if router.Current().Screen == nav.ScreenLogin {
		fmt.Fprintln(out, "Run 'recipebox login' to log in again.")
	}

	return nil
}
