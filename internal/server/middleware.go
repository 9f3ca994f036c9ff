package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/recipebox-dev/recipebox/internal/auth"
	"github.com/recipebox-dev/recipebox/internal/models"
)

const (
	bearerPrefix = "Bearer "
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrRevokedToken      = errors.New("revoked token")
	ErrUserNotFound      = errors.New("user not found")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set("session", sessionData)
}

// GetSessionData returns the authenticated session, if the request has one
func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get("session")
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

// viewerID is the authenticated user's ID, or 0 for anonymous requests
func viewerID(c *gin.Context) int64 {
	if sessionData, ok := GetSessionData(c); ok {
		return sessionData.UserID
	}
	return 0
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
	c.Abort()
}

// authenticate resolves a bearer header into session data
func authenticate(c *gin.Context, tokens *auth.TokenManager, db *gorm.DB) (*auth.SessionData, error) {
	token, err := extractBearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return nil, err
	}

	claims, err := tokens.ValidateToken(token)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	var revoked int64
	if err := db.WithContext(c.Request.Context()).Model(&models.RevokedToken{}).
		Where("token_id = ?", claims.ID).
		Count(&revoked).Error; err != nil {
		return nil, err
	}
	if revoked > 0 {
		return nil, ErrRevokedToken
	}

	var user models.User
	if err := db.WithContext(c.Request.Context()).Where("id = ?", claims.UserID).First(&user).Error; err != nil {
		return nil, errors.Join(ErrUserNotFound, err)
	}

	return &auth.SessionData{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

// JWTAuthMiddleware requires a valid, unrevoked token for an existing user
func JWTAuthMiddleware(tokens *auth.TokenManager, db *gorm.DB, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData, err := authenticate(c, tokens, db)
		if err != nil {
			var message string
			switch {
			case errors.Is(err, ErrMissingAuthHeader):
				message = "Missing authorization header"
			case errors.Is(err, ErrInvalidAuthFormat):
				message = "Invalid authorization header format"
			case errors.Is(err, ErrEmptyToken):
				message = "Empty token"
			case errors.Is(err, ErrRevokedToken):
				message = "Token has been revoked"
			case errors.Is(err, ErrUserNotFound):
				message = "User not found"
			case errors.Is(err, ErrInvalidToken):
				message = "Invalid or expired token"
			default:
				respondWithError(c, log, http.StatusInternalServerError, err, "Internal server error")
				return
			}
			respondWithError(c, log, http.StatusUnauthorized, err, message)
			return
		}

		setSession(c, sessionData)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches a session when the request carries a usable token and
// otherwise lets the request through as anonymous
func OptionalAuthMiddleware(tokens *auth.TokenManager, db *gorm.DB, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		sessionData, err := authenticate(c, tokens, db)
		if err != nil {
			log.Debug().Err(err).Msg("Ignoring unusable token on public route")
			c.Next()
			return
		}

		setSession(c, sessionData)
		c.Next()
	}
}
