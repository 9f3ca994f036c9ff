package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/recipebox-dev/recipebox/internal/session"
)

// intentMessage is the untyped wire shape of a session intent
type intentMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewDispatchCmd creates the dispatch command
func NewDispatchCmd(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch [file]",
		Short: "Apply a session intent given as JSON",
		Long: `Apply a session intent read from file, or stdin when no file is given.

  {"type": "LOGIN", "payload": {"token": "...", "name": "...", "email": "...", "userId": 1}}
  {"type": "LOGOUT"}

Useful in CI, where the token comes from somewhere other than 'recipebox login'.
Intents of any other type leave the session unchanged.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open intent file: %w", err)
				}
				defer f.Close()
				in = f
			}

			return withApp(cmd.Context(), g, func(a *app) error {
				return runDispatch(cmd.Context(), cmd.OutOrStdout(), a, in)
			})
		},
	}

	return cmd
}

func runDispatch(ctx context.Context, out io.Writer, a *app, in io.Reader) error {
	var msg intentMessage
	if err := json.NewDecoder(in).Decode(&msg); err != nil {
		return fmt.Errorf("invalid intent: %w", err)
	}

	switch intent := session.DecodeIntent(msg.Type, msg.Payload).(type) {
	case session.Login:
		if err := a.store.Login(ctx, intent.Payload); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		fmt.Fprintf(out, "✓ Session set for %s (%s)\n", intent.Payload.Name, intent.Payload.Email)

	case session.Logout:
		if err := a.store.Dispatch(ctx, intent); err != nil {
			fmt.Fprintf(out, "Warning: logged out, but the saved session could not be removed: %v\n", err)
		}
		fmt.Fprintln(out, "✓ Logged out.")

	default:
		if err := a.store.Dispatch(ctx, intent); err != nil {
			return err
		}
		fmt.Fprintf(out, "Ignored intent %q, session unchanged.\n", intent.Type())
	}

	return nil
}
