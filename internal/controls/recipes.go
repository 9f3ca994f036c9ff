package controls

import (
	"context"

	"github.com/recipebox-dev/recipebox/internal/cli/client"
	"github.com/recipebox-dev/recipebox/internal/session"
)

// RecipeActions are the recipe mutations a recipe screen can trigger
type RecipeActions interface {
	Like(ctx context.Context, recipeID int64) (*client.LikeResult, error)
	Delete(ctx context.Context, recipeID int64) (*client.DeleteResult, error)
}

// NoopRecipeActions is used for screens that offer no recipe actions, e.g. when logged
// out. Every call succeeds without doing anything and returns a nil result.
type NoopRecipeActions struct{}

func (NoopRecipeActions) Like(ctx context.Context, recipeID int64) (*client.LikeResult, error) {
	return nil, nil
}

func (NoopRecipeActions) Delete(ctx context.Context, recipeID int64) (*client.DeleteResult, error) {
	return nil, nil
}

// ClientRecipeActions performs recipe actions against the API
type ClientRecipeActions struct {
	API *client.Client
}

func (a ClientRecipeActions) Like(ctx context.Context, recipeID int64) (*client.LikeResult, error) {
	return a.API.LikeRecipe(ctx, recipeID)
}

func (a ClientRecipeActions) Delete(ctx context.Context, recipeID int64) (*client.DeleteResult, error) {
	return a.API.DeleteRecipe(ctx, recipeID)
}

// ActionsFor picks the actions available for the current session
func ActionsFor(state session.State, api *client.Client) RecipeActions {
	if !state.IsLoggedIn() {
		return NoopRecipeActions{}
	}
	return ClientRecipeActions{API: api}
}
