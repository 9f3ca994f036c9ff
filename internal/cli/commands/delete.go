package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/recipebox-dev/recipebox/internal/controls"
)

// NewDeleteCmd creates the delete command
func NewDeleteCmd(g *Globals) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <recipe-id>",
		Short: "Delete a recipe you wrote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecipeID(args[0])
			if err != nil {
				return err
			}

			var p prompter
			if !yes {
				if !isInteractive() {
					return fmt.Errorf("refusing to delete without confirmation in non-interactive mode (use --yes)")
				}
				p = promptUI{}
			}

			return withApp(cmd.Context(), g, func(a *app) error {
				return runDelete(cmd.Context(), cmd.OutOrStdout(), a, p, id)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// runDelete deletes the recipe, asking p for confirmation first when p is set
func runDelete(ctx context.Context, out io.Writer, a *app, p prompter, id int64) error {
	state, err := a.requireLogin()
	if err != nil {
		return err
	}

	if p != nil {
		recipe, err := a.api.GetRecipe(ctx, id)
		if err != nil {
			return err
		}
		ok, err := p.Confirm(fmt.Sprintf("Delete '%s'", recipe.Name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	result, err := controls.ActionsFor(state, a.api).Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	fmt.Fprintf(out, "✓ Deleted recipe %d\n", result.RecipeID)
	return nil
}
