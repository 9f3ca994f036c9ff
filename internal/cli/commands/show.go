package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/recipebox-dev/recipebox/internal/cli/client"
)

// NewShowCmd creates the show command
func NewShowCmd(g *Globals) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "show <recipe-id>",
		Short: "Show a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecipeID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), g, func(a *app) error {
				return runShow(cmd.Context(), cmd.OutOrStdout(), a, id, asYAML)
			})
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the recipe as an editable YAML file")

	return cmd
}

func parseRecipeID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid recipe id '%s'", arg)
	}
	return id, nil
}

func runShow(ctx context.Context, out io.Writer, a *app, id int64, asYAML bool) error {
	recipe, err := a.api.GetRecipe(ctx, id)
	if err != nil {
		return err
	}

	if asYAML {
		data, err := yaml.Marshal(toRecipeInput(recipe))
		if err != nil {
			return fmt.Errorf("failed to encode recipe: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	printRecipe(out, recipe)
	return nil
}

func toRecipeInput(recipe *client.Recipe) client.RecipeInput {
	return client.RecipeInput{
		Name:         recipe.Name,
		Description:  recipe.Description,
		ImageURL:     recipe.ImageURL,
		Instructions: recipe.Instructions,
		Ingredients:  recipe.Ingredients,
	}
}

func printRecipe(out io.Writer, recipe *client.Recipe) {
	fmt.Fprintf(out, "%s (#%d)\n", recipe.Name, recipe.ID)
	fmt.Fprintf(out, "by %s · %d likes", recipe.Author, recipe.Likes)
	if recipe.YouLike {
		fmt.Fprint(out, " · you like this")
	}
	fmt.Fprintln(out)

	if recipe.Description != "" {
		fmt.Fprintf(out, "\n%s\n", recipe.Description)
	}
	if recipe.ImageURL != "" {
		fmt.Fprintf(out, "Image: %s\n", recipe.ImageURL)
	}

	if len(recipe.Ingredients) > 0 {
		fmt.Fprintln(out, "\nIngredients:")
		for _, ing := range recipe.Ingredients {
			fmt.Fprintf(out, "  - %s\n", formatIngredient(ing))
		}
	}

	fmt.Fprintln(out, "\nInstructions:")
	for _, line := range strings.Split(strings.TrimSpace(recipe.Instructions), "\n") {
		fmt.Fprintf(out, "  %s\n", line)
	}
}

func formatIngredient(ing client.Ingredient) string {
	var parts []string
	if ing.Quantity > 0 {
		parts = append(parts, strconv.FormatFloat(ing.Quantity, 'f', -1, 64))
	}
	switch {
	case ing.Unit.Abbr != "":
		parts = append(parts, ing.Unit.Abbr)
	case ing.Unit.Name != "":
		parts = append(parts, ing.Unit.Name)
	}
	parts = append(parts, ing.Name)
	return strings.Join(parts, " ")
}
