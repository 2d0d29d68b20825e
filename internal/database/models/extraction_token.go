package models

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionToken caches the OAuth access token for the external extraction
// service. Exactly one row per user: a refresh upserts in place instead of
// appending history.
type ExtractionToken struct {
	Base
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	AccessToken string    `gorm:"not null" json:"-"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"` // seconds
	Scope       string    `json:"scope"`
	JTI         string    `json:"jti"`
	IssuedAt    time.Time `gorm:"not null" json:"issued_at"`
}

func (ExtractionToken) TableName() string {
	return "extraction_tokens"
}

// Expired reports whether the token's lifetime has elapsed.
func (t *ExtractionToken) Expired(now time.Time) bool {
	return !t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second).After(now)
}
