package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated. Please run 'recipebox login' first")
)

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// Client represents an HTTP client for the recipebox API
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      func() string
}

// New creates a new API client. token is called for every authenticated request and
// may return "" when logged out.
func New(baseURL string, token func() string) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		token: token,
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// BaseURL returns the server the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a JSON request and decodes the JSON response into out (if non-nil)
func (c *Client) do(ctx context.Context, method, path string, authenticated bool, body, out any, expected int) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token := c.token(); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	} else if authenticated {
		return ErrNotAuthenticated
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expected {
		data, _ := io.ReadAll(resp.Body)
		var errBody struct {
			Error string `json:"error"`
		}
		message := string(data)
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
			message = errBody.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the sign-up request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the identity returned by the auth endpoints
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login authenticates the user and returns a token
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var loginResp LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", false, LoginRequest{
		Email:    email,
		Password: password,
	}, &loginResp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &loginResp, nil
}

// Register creates an account and returns a token for it
func (c *Client) Register(ctx context.Context, name, email, password string) (*LoginResponse, error) {
	var loginResp LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", false, RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, &loginResp, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &loginResp, nil
}

// Logout revokes the current token on the server
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", true, nil, nil, http.StatusNoContent)
}

// Me returns the authenticated user
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", true, nil, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// Unit is a measuring unit
type Unit struct {
	Name string `json:"name" yaml:"name,omitempty" validate:"required_with=Abbr"`
	Abbr string `json:"abbr" yaml:"abbr,omitempty"`
}

// Ingredient is one line of a recipe's ingredient list
type Ingredient struct {
	Name     string  `json:"name" yaml:"name" validate:"required"`
	Quantity float64 `json:"quantity" yaml:"quantity,omitempty" validate:"gte=0"`
	Unit     Unit    `json:"unit" yaml:"unit,omitempty"`
}

// Recipe is a recipe as returned by the API
type Recipe struct {
	ID           int64        `json:"id"`
	Author       string       `json:"author"`
	AuthorID     int64        `json:"author_id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	ImageURL     string       `json:"image_url"`
	Instructions string       `json:"instructions"`
	Ingredients  []Ingredient `json:"ingredients"`
	Likes        int64        `json:"likes"`
	YouLike      bool         `json:"you_like"`
}

// RecipeInput is the body for creating or editing a recipe
type RecipeInput struct {
	Name         string       `json:"name" yaml:"name" validate:"required,max=200"`
	Description  string       `json:"description" yaml:"description,omitempty" validate:"max=2000"`
	ImageURL     string       `json:"image_url" yaml:"image_url,omitempty" validate:"omitempty,url"`
	Instructions string       `json:"instructions" yaml:"instructions" validate:"required"`
	Ingredients  []Ingredient `json:"ingredients" yaml:"ingredients" validate:"dive"`
}

// RecipeList is one page of recipes
type RecipeList struct {
	Recipes []Recipe `json:"recipes"`
	Total   int64    `json:"total"`
}

// ListRecipes returns recipes matching search (all recipes when empty)
func (c *Client) ListRecipes(ctx context.Context, search string, limit, offset int) (*RecipeList, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	path := "/api/recipes"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var list RecipeList
	if err := c.do(ctx, http.MethodGet, path, false, nil, &list, http.StatusOK); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return &list, nil
}

// GetRecipe returns one recipe by ID
func (c *Client) GetRecipe(ctx context.Context, id int64) (*Recipe, error) {
	var recipe Recipe
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/recipes/%d", id), false, nil, &recipe, http.StatusOK); err != nil {
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	return &recipe, nil
}

// CreateRecipe creates a recipe owned by the current user
func (c *Client) CreateRecipe(ctx context.Context, input RecipeInput) (*Recipe, error) {
	var recipe Recipe
	if err := c.do(ctx, http.MethodPost, "/api/recipes", true, input, &recipe, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	return &recipe, nil
}

// UpdateRecipe replaces a recipe the current user owns
func (c *Client) UpdateRecipe(ctx context.Context, id int64, input RecipeInput) (*Recipe, error) {
	var recipe Recipe
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/recipes/%d", id), true, input, &recipe, http.StatusOK); err != nil {
		return nil, fmt.Errorf("failed to update recipe %d: %w", id, err)
	}
	return &recipe, nil
}

// DeleteResult mirrors the server's delete response
type DeleteResult struct {
	RecipeID int64 `json:"recipe_id"`
	Deleted  bool  `json:"deleted"`
}

// DeleteRecipe deletes a recipe the current user owns
func (c *Client) DeleteRecipe(ctx context.Context, id int64) (*DeleteResult, error) {
	var result DeleteResult
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/recipes/%d", id), true, nil, &result, http.StatusOK); err != nil {
		return nil, fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	return &result, nil
}

// LikeResult is the like state after toggling
type LikeResult struct {
	ID      int64 `json:"id"`
	Likes   int64 `json:"likes"`
	YouLike bool  `json:"you_like"`
}

// LikeRecipe toggles the current user's like on a recipe
func (c *Client) LikeRecipe(ctx context.Context, id int64) (*LikeResult, error) {
	var result LikeResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/recipes/%d/like", id), true, nil, &result, http.StatusOK); err != nil {
		return nil, fmt.Errorf("failed to like recipe %d: %w", id, err)
	}
	return &result, nil
}

// Health is the server's /health response
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// Health reports whether the server is up and which version it runs
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.do(ctx, http.MethodGet, "/health", false, nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
