package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/recipebox-dev/recipebox/internal/recipes"
)

// ListRecipesQuery holds the search and paging parameters
type ListRecipesQuery struct {
	Search string `form:"search"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

// DeleteRecipeResponse confirms a deletion
type DeleteRecipeResponse struct {
	RecipeID int64 `json:"recipe_id"`
	Deleted  bool  `json:"deleted"`
}

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
		return 0, false
	}
	return id, true
}

// respondRecipeError maps service errors onto HTTP statuses
func (s *Server) respondRecipeError(c *gin.Context, err error, action string) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, recipes.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
	case errors.Is(err, recipes.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can change this recipe"})
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": validationErrs.Error()})
	default:
		s.logger.Error().Err(err).Msg("Failed to " + action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// @Router /api/recipes [get]
// @Param search query string false "Text to search for"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} recipes.ListResult
func (s *Server) listRecipes(c *gin.Context) {
	var query ListRecipesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query", "details": err.Error()})
		return
	}

	result, err := s.recipesService.List(c.Request.Context(), query.Search, query.Limit, query.Offset, viewerID(c))
	if err != nil {
		s.respondRecipeError(c, err, "list recipes")
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Router /api/recipes/{id} [get]
// @Param id path int true "Recipe ID"
// @Success 200 {object} recipes.Recipe
func (s *Server) getRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := s.recipesService.Get(c.Request.Context(), id, viewerID(c))
	if err != nil {
		s.respondRecipeError(c, err, "get recipe")
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// @Router /api/recipes [post]
// @Param body body recipes.Input true "Recipe"
// @Success 201 {object} recipes.Recipe
func (s *Server) createRecipe(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var input recipes.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	recipe, err := s.recipesService.Create(c.Request.Context(), sessionData.UserID, input)
	if err != nil {
		s.respondRecipeError(c, err, "create recipe")
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

// @Router /api/recipes/{id} [put]
// @Param id path int true "Recipe ID"
// @Param body body recipes.Input true "Recipe"
// @Success 200 {object} recipes.Recipe
func (s *Server) updateRecipe(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var input recipes.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	recipe, err := s.recipesService.Update(c.Request.Context(), id, sessionData.UserID, input)
	if err != nil {
		s.respondRecipeError(c, err, "update recipe")
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// @Router /api/recipes/{id} [delete]
// @Param id path int true "Recipe ID"
// @Success 200 {object} DeleteRecipeResponse
func (s *Server) deleteRecipe(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := s.recipesService.Delete(c.Request.Context(), id, sessionData.UserID); err != nil {
		s.respondRecipeError(c, err, "delete recipe")
		return
	}

	c.JSON(http.StatusOK, DeleteRecipeResponse{RecipeID: id, Deleted: true})
}

// @Router /api/recipes/{id}/like [post]
// @Param id path int true "Recipe ID"
// @Success 200 {object} recipes.LikeResult
func (s *Server) likeRecipe(c *gin.Context) {
	sessionData, _ := GetSessionData(c)
	id, ok := recipeID(c)
	if !ok {
		return
	}

	result, err := s.recipesService.ToggleLike(c.Request.Context(), id, sessionData.UserID)
	if err != nil {
		s.respondRecipeError(c, err, "like recipe")
		return
	}

	c.JSON(http.StatusOK, result)
}
