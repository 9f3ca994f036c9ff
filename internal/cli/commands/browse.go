package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recipebox-dev/recipebox/internal/cli/client"
	"github.com/recipebox-dev/recipebox/internal/controls"
	"github.com/recipebox-dev/recipebox/internal/nav"
	"github.com/recipebox-dev/recipebox/internal/session"
)

// NewBrowseCmd creates the browse command
func NewBrowseCmd(g *Globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse recipes interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isInteractive() {
				return fmt.Errorf("browse needs an interactive terminal")
			}
			return withApp(cmd.Context(), g, func(a *app) error {
				return runBrowse(cmd.Context(), cmd.OutOrStdout(), a, promptUI{})
			})
		},
	}

	return cmd
}

// shell renders one screen per step, picked by the router's current route
type shell struct {
	a      *app
	out    io.Writer
	p      prompter
	router *nav.Router
	query  string
}

type menuItem struct {
	label string
	run   func() (quit bool, err error)
}

func runBrowse(ctx context.Context, out io.Writer, a *app, p prompter) error {
	s := &shell{a: a, out: out, p: p}
	s.router = nav.NewRouter(nav.PathHome, func(r nav.Route) {
		a.logger.Debug().Str("path", r.Path).Str("screen", string(r.Screen)).Msg("Navigated")
	})

	unsubscribe := a.store.Subscribe(func(state session.State) {
		if state.IsLoggedIn() {
			fmt.Fprintf(out, "Logged in as %s.\n", state.Name)
		} else {
			fmt.Fprintln(out, "Logged out.")
		}
	})
	defer unsubscribe()

	for {
		quit, err := s.step(ctx)
		if err != nil {
			if isQuit(err) {
				return nil
			}
			return err
		}
		if quit {
			return nil
		}
	}
}

func (s *shell) step(ctx context.Context) (bool, error) {
	route := s.router.Current()
	switch route.Screen {
	case nav.ScreenLogin:
		return s.loginScreen(ctx)
	case nav.ScreenDetail:
		return s.detailScreen(ctx, route)
	case nav.ScreenNewRecipe:
		return s.writeScreen(ctx, 0)
	case nav.ScreenEdit:
		id, err := strconv.ParseInt(route.Params["recipeId"], 10, 64)
		if err != nil {
			s.router.Navigate(nav.PathHome)
			return false, nil
		}
		return s.writeScreen(ctx, id)
	default:
		return s.searchScreen(ctx)
	}
}

func (s *shell) choose(label string, items []menuItem) (bool, error) {
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.label
	}

	idx, err := s.p.Select(label, labels)
	if err != nil {
		return false, err
	}
	return items[idx].run()
}

func (s *shell) fail(err error) {
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

func (s *shell) navigate(path string) func() (bool, error) {
	return func() (bool, error) {
		s.router.Navigate(path)
		return false, nil
	}
}

func quit() (bool, error) {
	return true, nil
}

// sessionItems are the log in / log out entries every screen offers
func (s *shell) sessionItems(ctx context.Context) []menuItem {
	if s.a.store.State().IsLoggedIn() {
		return []menuItem{{label: "Log out", run: func() (bool, error) {
			s.logout(ctx)
			return false, nil
		}}}
	}
	return []menuItem{{label: "Log in", run: s.navigate(nav.PathLogin)}}
}

func (s *shell) logout(ctx context.Context) {
	if err := newLogoutControl(s.a, s.router).Activate(ctx); err != nil {
		fmt.Fprintf(s.out, "Warning: logged out, but the saved session could not be removed: %v\n", err)
	}
}

func (s *shell) searchScreen(ctx context.Context) (bool, error) {
	list, err := s.a.api.ListRecipes(ctx, s.query, 20, 0)
	if err != nil {
		s.fail(err)
		list = &client.RecipeList{}
	}

	var items []menuItem
	for _, recipe := range list.Recipes {
		items = append(items, menuItem{
			label: fmt.Sprintf("#%d %s (by %s, %d likes)", recipe.ID, recipe.Name, recipe.Author, recipe.Likes),
			run:   s.navigate(fmt.Sprintf("/recipe/%d", recipe.ID)),
		})
	}

	items = append(items, menuItem{label: "Search...", run: func() (bool, error) {
		q, err := s.p.Input("Search", false)
		if err != nil {
			return false, err
		}
		s.query = strings.TrimSpace(q)
		return false, nil
	}})
	if s.a.store.State().IsLoggedIn() {
		items = append(items, menuItem{label: "New recipe", run: s.navigate("/recipe/new")})
	}
	items = append(items, s.sessionItems(ctx)...)
	items = append(items, menuItem{label: "Quit", run: quit})

	label := "Recipes"
	if s.query != "" {
		label = fmt.Sprintf("Recipes matching %q", s.query)
	}
	return s.choose(label, items)
}

func (s *shell) detailScreen(ctx context.Context, route nav.Route) (bool, error) {
	id, err := strconv.ParseInt(route.Params["recipeId"], 10, 64)
	if err != nil {
		s.router.Navigate(nav.PathHome)
		return false, nil
	}

	recipe, err := s.a.api.GetRecipe(ctx, id)
	if err != nil {
		s.fail(err)
		s.router.Navigate(nav.PathHome)
		return false, nil
	}

	fmt.Fprintln(s.out)
	printRecipe(s.out, recipe)
	fmt.Fprintln(s.out)

	state := s.a.store.State()
	actions := controls.ActionsFor(state, s.a.api)

	var items []menuItem
	if state.IsLoggedIn() {
		label := "Like"
		if recipe.YouLike {
			label = "Unlike"
		}
		items = append(items, menuItem{label: label, run: func() (bool, error) {
			result, err := actions.Like(ctx, id)
			if err != nil {
				s.fail(err)
			} else if result != nil {
				fmt.Fprintf(s.out, "%d likes\n", result.Likes)
			}
			return false, nil
		}})
	}
	if state.IsLoggedIn() && recipe.AuthorID == state.UserID {
		items = append(items,
			menuItem{label: "Edit", run: s.navigate(fmt.Sprintf("/recipe/%d/edit", id))},
			menuItem{label: "Delete", run: func() (bool, error) {
				ok, err := s.p.Confirm(fmt.Sprintf("Delete '%s'", recipe.Name))
				if err != nil || !ok {
					return false, err
				}
				if _, err := actions.Delete(ctx, id); err != nil {
					s.fail(err)
					return false, nil
				}
				fmt.Fprintf(s.out, "Deleted '%s'.\n", recipe.Name)
				s.router.Navigate(nav.PathHome)
				return false, nil
			}},
		)
	}
	items = append(items, menuItem{label: "Back", run: func() (bool, error) {
		if !s.router.Back() {
			s.router.Navigate(nav.PathHome)
		}
		return false, nil
	}})
	items = append(items, s.sessionItems(ctx)...)
	items = append(items, menuItem{label: "Quit", run: quit})

	return s.choose(recipe.Name, items)
}

// writeScreen creates a recipe (id 0) or edits one from a YAML file the user names
func (s *shell) writeScreen(ctx context.Context, id int64) (bool, error) {
	if !s.a.store.State().IsLoggedIn() {
		s.router.Navigate(nav.PathLogin)
		return false, nil
	}

	if id != 0 {
		fmt.Fprintf(s.out, "Export the current version with: recipebox show %d --yaml > recipe.yaml\n", id)
	}
	path, err := s.p.Input("Recipe YAML file (empty to go back)", false)
	if err != nil {
		return false, err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		if !s.router.Back() {
			s.router.Navigate(nav.PathHome)
		}
		return false, nil
	}

	input, err := loadRecipeFile(path, strings.NewReader(""))
	if err != nil {
		s.fail(err)
		return false, nil
	}

	var recipe *client.Recipe
	if id == 0 {
		recipe, err = s.a.api.CreateRecipe(ctx, input)
	} else {
		recipe, err = s.a.api.UpdateRecipe(ctx, id, input)
	}
	if err != nil {
		s.fail(err)
		return false, nil
	}

	fmt.Fprintf(s.out, "Saved '%s'.\n", recipe.Name)
	s.router.Navigate(fmt.Sprintf("/recipe/%d", recipe.ID))
	return false, nil
}

func (s *shell) loginScreen(ctx context.Context) (bool, error) {
	if s.a.store.State().IsLoggedIn() {
		s.router.Navigate(nav.PathHome)
		return false, nil
	}

	email, err := s.p.Input("Email (empty to go back)", false)
	if err != nil {
		return false, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		if !s.router.Back() {
			s.router.Navigate(nav.PathHome)
		}
		return false, nil
	}

	password, err := s.p.Input("Password", true)
	if err != nil {
		return false, err
	}

	resp, err := s.a.api.Login(ctx, email, password)
	if err != nil {
		s.fail(err)
		return false, nil
	}
	if err := completeLogin(ctx, io.Discard, s.a, resp); err != nil {
		s.fail(err)
		return false, nil
	}

	s.router.Navigate(nav.PathHome)
	return false, nil
}
