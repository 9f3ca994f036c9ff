package recipes

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/recipebox-dev/recipebox/internal/database"
	"github.com/recipebox-dev/recipebox/internal/models"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "recipes.sqlite"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	return NewService(db, zerolog.Nop()), db
}

func createUser(t *testing.T, db *gorm.DB, name, email string) int64 {
	t.Helper()
	user := &models.User{Name: name, Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	return user.ID
}

func soup() Input {
	return Input{
		Name:         "Leek soup",
		Description:  "Warm and green",
		Instructions: "Sweat the leeks.\nAdd stock.",
		Ingredients: []IngredientInput{
			{Name: "Leek", Quantity: 2},
			{Name: "Stock", Quantity: 1, Unit: Unit{Name: "liter", Abbr: "l"}},
		},
	}
}

func TestCreateAndGet(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	ada := createUser(t, db, "Ada", "ada@example.com")

	created, err := svc.Create(ctx, ada, soup())
	require.NoError(t, err)
	assert.Equal(t, "Ada", created.Author)
	assert.Equal(t, ada, created.AuthorID)
	require.Len(t, created.Ingredients, 2)
	assert.Equal(t, "Leek", created.Ingredients[0].Name)
	assert.Equal(t, Unit{Name: "liter", Abbr: "l"}, created.Ingredients[1].Unit)

	got, err := svc.Get(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)

	_, err = svc.Get(ctx, created.ID+100, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc, db := setupService(t)
	ada := createUser(t, db, "Ada", "ada@example.com")

	tests := []struct {
		name  string
		input Input
	}{
		{name: "missing name", input: Input{Instructions: "x"}},
		{name: "missing instructions", input: Input{Name: "x"}},
		{name: "bad image url", input: Input{Name: "x", Instructions: "y", ImageURL: "not a url"}},
		{name: "negative quantity", input: Input{Name: "x", Instructions: "y", Ingredients: []IngredientInput{{Name: "salt", Quantity: -1}}}},
		{name: "unnamed ingredient", input: Input{Name: "x", Instructions: "y", Ingredients: []IngredientInput{{Quantity: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), ada, tt.input)
			assert.Error(t, err)
		})
	}
}

func TestListSearch(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	ada := createUser(t, db, "Ada", "ada@example.com")

	_, err := svc.Create(ctx, ada, soup())
	require.NoError(t, err)
	_, err = svc.Create(ctx, ada, Input{Name: "Pancakes", Description: "Sunday breakfast", Instructions: "Flip.",
		Ingredients: []IngredientInput{{Name: "Flour", Quantity: 200, Unit: Unit{Name: "gram", Abbr: "g"}}}})
	require.NoError(t, err)

	all, err := svc.List(ctx, "", 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Equal(t, "Pancakes", all.Recipes[0].Name, "newest first")

	byName, err := svc.List(ctx, "SOUP", 0, 0, 0)
	require.NoError(t, err)
	require.Len(t, byName.Recipes, 1)
	assert.Equal(t, "Leek soup", byName.Recipes[0].Name)

	byIngredient, err := svc.List(ctx, "flour", 0, 0, 0)
	require.NoError(t, err)
	require.Len(t, byIngredient.Recipes, 1)
	assert.Equal(t, "Pancakes", byIngredient.Recipes[0].Name)

	paged, err := svc.List(ctx, "", 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), paged.Total)
	require.Len(t, paged.Recipes, 1)
	assert.Equal(t, "Leek soup", paged.Recipes[0].Name)
}

func TestListSearchMatchesWildcardsLiterally(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	ada := createUser(t, db, "Ada", "ada@example.com")

	_, err := svc.Create(ctx, ada, soup())
	require.NoError(t, err)
	_, err = svc.Create(ctx, ada, Input{Name: "100% rye bread", Instructions: "Bake.",
		Ingredients: []IngredientInput{{Name: "Rye flour", Quantity: 500, Unit: Unit{Name: "gram", Abbr: "g"}}}})
	require.NoError(t, err)

	tests := []struct {
		search string
		want   []string
	}{
		{search: "%", want: []string{"100% rye bread"}},
		{search: "0% r", want: []string{"100% rye bread"}},
		{search: "_", want: nil},
		{search: `\`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			result, err := svc.List(ctx, tt.search, 0, 0, 0)
			require.NoError(t, err)

			var names []string
			for _, r := range result.Recipes {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestUpdateAndDeleteAuthorOnly(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	ada := createUser(t, db, "Ada", "ada@example.com")
	bob := createUser(t, db, "Bob", "bob@example.com")

	created, err := svc.Create(ctx, ada, soup())
	require.NoError(t, err)

	edit := soup()
	edit.Name = "Potato leek soup"
	edit.Ingredients = append([]IngredientInput{{Name: "Potato", Quantity: 3}}, edit.Ingredients...)

	_, err = svc.Update(ctx, created.ID, bob, edit)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, created.ID, ada, edit)
	require.NoError(t, err)
	assert.Equal(t, "Potato leek soup", updated.Name)
	require.Len(t, updated.Ingredients, 3)
	assert.Equal(t, "Potato", updated.Ingredients[0].Name)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID, bob), ErrForbidden)

	_, err = svc.ToggleLike(ctx, created.ID, bob)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID, ada))
	_, err = svc.Get(ctx, created.ID, ada)
	assert.ErrorIs(t, err, ErrNotFound)

	var likes int64
	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	assert.Zero(t, likes)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID, ada), ErrNotFound)
}

func TestToggleLike(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	ada := createUser(t, db, "Ada", "ada@example.com")
	bob := createUser(t, db, "Bob", "bob@example.com")

	created, err := svc.Create(ctx, ada, soup())
	require.NoError(t, err)

	res, err := svc.ToggleLike(ctx, created.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, &LikeResult{ID: created.ID, Likes: 1, YouLike: true}, res)

	res, err = svc.ToggleLike(ctx, created.ID, ada)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Likes)

	viewed, err := svc.Get(ctx, created.ID, bob)
	require.NoError(t, err)
	assert.True(t, viewed.YouLike)
	assert.Equal(t, int64(2), viewed.Likes)

	anonymous, err := svc.Get(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.False(t, anonymous.YouLike)

	res, err = svc.ToggleLike(ctx, created.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, &LikeResult{ID: created.ID, Likes: 1, YouLike: false}, res)

	_, err = svc.ToggleLike(ctx, created.ID+1, bob)
	assert.ErrorIs(t, err, ErrNotFound)
}
