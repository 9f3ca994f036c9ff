package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewCreateCmd creates the create command
func NewCreateCmd(g *Globals) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a recipe from a YAML file",
		Long: `Create a recipe from a YAML file.

Example recipe.yaml:
  name: Leek soup
  description: Warm and green
  instructions: |
    Sweat the leeks.
    Add stock and simmer.
  ingredients:
    - name: Leek
      quantity: 2
    - name: Stock
      quantity: 1
      unit: {name: liter, abbr: l}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), g, func(a *app) error {
				return runCreate(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), a, file)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Recipe YAML file (- for stdin)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// NewEditCmd creates the edit command
func NewEditCmd(g *Globals) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "edit <recipe-id>",
		Short: "Replace a recipe you wrote with the contents of a YAML file",
		Long: `Replace a recipe you wrote with the contents of a YAML file.

Start from the current version with:
  $ recipebox show <recipe-id> --yaml > recipe.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecipeID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), g, func(a *app) error {
				return runEdit(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), a, id, file)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Recipe YAML file (- for stdin)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runCreate(ctx context.Context, out io.Writer, in io.Reader, a *app, file string) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	input, err := loadRecipeFile(file, in)
	if err != nil {
		return err
	}

	recipe, err := a.api.CreateRecipe(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}

	fmt.Fprintf(out, "✓ Created recipe %d: %s\n", recipe.ID, recipe.Name)
	return nil
}

func runEdit(ctx context.Context, out io.Writer, in io.Reader, a *app, id int64, file string) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	input, err := loadRecipeFile(file, in)
	if err != nil {
		return err
	}

	recipe, err := a.api.UpdateRecipe(ctx, id, input)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}

	fmt.Fprintf(out, "✓ Updated recipe %d: %s\n", recipe.ID, recipe.Name)
	return nil
}
