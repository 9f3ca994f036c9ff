package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewListCmd creates the ls command
func NewListCmd(g *Globals) *cobra.Command {
	var search string
	var limit, offset int

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List recipes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), g, func(a *app) error {
				return runList(cmd.Context(), cmd.OutOrStdout(), a, search, limit, offset)
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only recipes whose name, description or ingredients contain this text")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of recipes to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of recipes to skip")

	return cmd
}

func runList(ctx context.Context, out io.Writer, a *app, search string, limit, offset int) error {
	list, err := a.api.ListRecipes(ctx, search, limit, offset)
	if err != nil {
		return err
	}

	if len(list.Recipes) == 0 {
		fmt.Fprintln(out, "No recipes found.")
		if a.store.State().IsLoggedIn() {
			fmt.Fprintln(out, "\nAdd one with: recipebox create -f recipe.yaml")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tAUTHOR\tLIKES")
	fmt.Fprintln(w, "──\t────\t──────\t─────")

	for _, recipe := range list.Recipes {
		likes := fmt.Sprintf("%d", recipe.Likes)
		if recipe.YouLike {
			likes += " ♥"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			recipe.ID,
			recipe.Name,
			recipe.Author,
			likes,
		)
	}

	w.Flush()

	if shown := int64(offset + len(list.Recipes)); shown < list.Total {
		fmt.Fprintf(out, "\nShowing %d-%d of %d. Use --offset %d for more.\n", offset+1, shown, list.Total, shown)
	}

	return nil
}
