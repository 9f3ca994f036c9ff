package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/recipebox-dev/recipebox/internal/models"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var (
	ErrNotFound  = errors.New("recipe not found")
	ErrForbidden = errors.New("only the author can change this recipe")
)

// Unit is a measuring unit
type Unit struct {
	Name string `json:"name" validate:"required_with=Abbr"`
	Abbr string `json:"abbr"`
}

// IngredientInput is one ingredient line
type IngredientInput struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Unit     Unit    `json:"unit"`
}

// Input is the editable part of a recipe
type Input struct {
	Name         string            `json:"name" validate:"required,max=200"`
	Description  string            `json:"description" validate:"max=2000"`
	ImageURL     string            `json:"image_url" validate:"omitempty,url"`
	Instructions string            `json:"instructions" validate:"required"`
	Ingredients  []IngredientInput `json:"ingredients" validate:"dive"`
}

// Recipe is the API view of a recipe
type Recipe struct {
	ID           int64             `json:"id"`
	Author       string            `json:"author"`
	AuthorID     int64             `json:"author_id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	ImageURL     string            `json:"image_url"`
	Instructions string            `json:"instructions"`
	Ingredients  []IngredientInput `json:"ingredients"`
	Likes        int64             `json:"likes"`
	YouLike      bool              `json:"you_like"`
}

// ListResult is one page of recipes
type ListResult struct {
	Recipes []Recipe `json:"recipes"`
	Total   int64    `json:"total"`
}

// LikeResult is the like state of a recipe for one user
type LikeResult struct {
	ID      int64 `json:"id"`
	Likes   int64 `json:"likes"`
	YouLike bool  `json:"you_like"`
}

// Service handles recipe persistence
type Service struct {
	db       *gorm.DB
	logger   zerolog.Logger
	validate *validator.Validate
}

// NewService creates a new recipes service
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:       db,
		logger:   logger,
		validate: validator.New(),
	}
}

// Validate checks an input before it is stored
func (s *Service) Validate(input Input) error {
	return s.validate.Struct(input)
}

// likeEscaper makes LIKE wildcards in a search term match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns recipes whose name, description or ingredients contain search,
// newest first. viewerID (0 for anonymous) is used to fill YouLike.
func (s *Service) List(ctx context.Context, search string, limit, offset int, viewerID int64) (*ListResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	search = strings.TrimSpace(search)
	filtered := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Recipe{})
		if search == "" {
			return query
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		return query.Where(
			`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR id IN (?)`,
			pattern, pattern,
			s.db.Model(&models.Ingredient{}).Select("recipe_id").Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern),
		)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	var rows []models.Recipe
	err := filtered().
		Preload("Author").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	result := &ListResult{Recipes: make([]Recipe, 0, len(rows)), Total: total}
	for i := range rows {
		view, err := s.toView(ctx, &rows[i], viewerID)
		if err != nil {
			return nil, err
		}
		result.Recipes = append(result.Recipes, *view)
	}
	return result, nil
}

// Get returns one recipe
func (s *Service) Get(ctx context.Context, id, viewerID int64) (*Recipe, error) {
	recipe, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toView(ctx, recipe, viewerID)
}

// Create stores a new recipe owned by authorID
func (s *Service) Create(ctx context.Context, authorID int64, input Input) (*Recipe, error) {
	if err := s.Validate(input); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:     authorID,
		Name:         input.Name,
		Description:  input.Description,
		ImageURL:     input.ImageURL,
		Instructions: input.Instructions,
		Ingredients:  toIngredients(input.Ingredients),
	}

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	s.logger.Info().
		Int64("recipe_id", recipe.ID).
		Int64("author_id", authorID).
		Msg("Recipe created")

	return s.Get(ctx, recipe.ID, authorID)
}

// Update replaces the recipe's fields and ingredient list. Only the author may update.
func (s *Service) Update(ctx context.Context, id, userID int64, input Input) (*Recipe, error) {
	if err := s.Validate(input); err != nil {
		return nil, err
	}

	recipe, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(map[string]any{
			"name":         input.Name,
			"description":  input.Description,
			"image_url":    input.ImageURL,
			"instructions": input.Instructions,
		}).Error; err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&models.Ingredient{}).Error; err != nil {
			return err
		}

		ingredients := toIngredients(input.Ingredients)
		for i := range ingredients {
			ingredients[i].RecipeID = id
		}
		if len(ingredients) > 0 {
			if err := tx.Create(&ingredients).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	s.logger.Info().Int64("recipe_id", id).Int64("user_id", userID).Msg("Recipe updated")

	return s.Get(ctx, id, userID)
}

// Delete removes a recipe with its ingredients and likes. Only the author may delete.
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	recipe, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != userID {
		return ErrForbidden
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Ingredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	s.logger.Info().Int64("recipe_id", id).Int64("user_id", userID).Msg("Recipe deleted")
	return nil
}

// ToggleLike likes the recipe for userID, or removes the like if it already exists
func (s *Service) ToggleLike(ctx context.Context, id, userID int64) (*LikeResult, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	var youLike bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND recipe_id = ?", userID, id).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			youLike = false
			return nil
		}
		youLike = true
		return tx.Create(&models.Like{UserID: userID, RecipeID: id}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}

	likes, err := s.countLikes(ctx, id)
	if err != nil {
		return nil, err
	}

	return &LikeResult{ID: id, Likes: likes, YouLike: youLike}, nil
}

func (s *Service) find(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}
	return &recipe, nil
}

func (s *Service) countLikes(ctx context.Context, id int64) (int64, error) {
	var likes int64
	if err := s.db.WithContext(ctx).Model(&models.Like{}).Where("recipe_id = ?", id).Count(&likes).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return likes, nil
}

func (s *Service) toView(ctx context.Context, recipe *models.Recipe, viewerID int64) (*Recipe, error) {
	likes, err := s.countLikes(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}

	var youLike bool
	if viewerID != 0 {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Like{}).
			Where("recipe_id = ? AND user_id = ?", recipe.ID, viewerID).
			Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to check like: %w", err)
		}
		youLike = n > 0
	}

	ingredients := make([]IngredientInput, len(recipe.Ingredients))
	for i, ing := range recipe.Ingredients {
		ingredients[i] = IngredientInput{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     Unit{Name: ing.UnitName, Abbr: ing.UnitAbbr},
		}
	}

	return &Recipe{
		ID:           recipe.ID,
		Author:       recipe.Author.Name,
		AuthorID:     recipe.AuthorID,
		Name:         recipe.Name,
		Description:  recipe.Description,
		ImageURL:     recipe.ImageURL,
		Instructions: recipe.Instructions,
		Ingredients:  ingredients,
		Likes:        likes,
		YouLike:      youLike,
	}, nil
}

func toIngredients(inputs []IngredientInput) []models.Ingredient {
	ingredients := make([]models.Ingredient, len(inputs))
	for i, in := range inputs {
		ingredients[i] = models.Ingredient{
			Position: i,
			Name:     in.Name,
			Quantity: in.Quantity,
			UnitName: in.Unit.Name,
			UnitAbbr: in.Unit.Abbr,
		}
	}
	return ingredients
}
