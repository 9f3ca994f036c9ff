package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/recipebox-dev/recipebox/internal/controls"
)

// NewLikeCmd creates the like command
func NewLikeCmd(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "like <recipe-id>",
		Short: "Like a recipe, or remove your like",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecipeID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), g, func(a *app) error {
				return runLike(cmd.Context(), cmd.OutOrStdout(), a, id)
			})
		},
	}

	return cmd
}

func runLike(ctx context.Context, out io.Writer, a *app, id int64) error {
	state, err := a.requireLogin()
	if err != nil {
		return err
	}

	result, err := controls.ActionsFor(state, a.api).Like(ctx, id)
	if err != nil {
		return err
	}

	if result.YouLike {
		fmt.Fprintf(out, "♥ Liked recipe %d (%d likes)\n", result.ID, result.Likes)
	} else {
		fmt.Fprintf(out, "Removed your like from recipe %d (%d likes)\n", result.ID, result.Likes)
	}
	return nil
}
