package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides an auto-generated ULID primary key for internal records
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Config is the singleton server configuration row
type Config struct {
	BaseModel
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"` // Generated on first start unless JWT_SECRET is set
}

// User is a recipebox account. IDs are numeric because clients carry them as userId.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Recipe is a user's recipe
type Recipe struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	AuthorID     int64     `json:"author_id" gorm:"not null;index"`
	Name         string    `json:"name" gorm:"not null"`
	Description  string    `json:"description" gorm:"type:text"`
	ImageURL     string    `json:"image_url"`
	Instructions string    `json:"instructions" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Author      User         `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Ingredients []Ingredient `json:"ingredients" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// Ingredient is one line of a recipe, kept in insertion order by Position
type Ingredient struct {
	ID       int64   `json:"-" gorm:"primaryKey;autoIncrement"`
	RecipeID int64   `json:"-" gorm:"not null;index"`
	Position int     `json:"-" gorm:"not null"`
	Name     string  `json:"name" gorm:"not null"`
	Quantity float64 `json:"quantity"`
	UnitName string  `json:"unit_name"`
	UnitAbbr string  `json:"unit_abbr"`
}

// Like records that a user likes a recipe
type Like struct {
	UserID    int64     `gorm:"primaryKey"`
	RecipeID  int64     `gorm:"primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// RevokedToken is a logged-out token ID, kept until the token would have expired anyway
type RevokedToken struct {
	TokenID   string    `gorm:"primaryKey;type:varchar(26)"`
	UserID    int64     `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// BeforeCreate stores the expiry in UTC. SQLite keeps times as text, so the purge
// cutoff comparison only orders correctly when every row shares one zone.
func (r *RevokedToken) BeforeCreate(tx *gorm.DB) error {
	r.ExpiresAt = r.ExpiresAt.UTC()
	return nil
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&Config{}, &User{}, &Recipe{}, &Ingredient{}, &Like{}, &RevokedToken{},
	}

	return db.AutoMigrate(models...)
}
