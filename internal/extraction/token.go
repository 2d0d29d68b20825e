package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mhalder/docshare/internal/database/models"
	"github.com/mhalder/docshare/pkg/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrExternalService covers any failure talking to the identity provider or
// the extraction API: HTTP errors, bad responses, timeouts.
var ErrExternalService = errors.New("external service failure")

// TokenService caches client-credentials access tokens per user. A cached
// token is reused until issued_at + expires_in elapses; a refresh upserts
// the single row for that user.
type TokenService struct {
	db     *gorm.DB
	oauth  clientcredentials.Config
	client *http.Client
	logger *slog.Logger
}

func NewTokenService(db *gorm.DB, cfg *config.ExtractionConfig, logger *slog.Logger) *TokenService {
	return &TokenService{
		db: db,
		oauth: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.AuthURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		client: &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
	}
}

// GetToken returns a non-expired access token for the user, fetching and
// persisting a fresh one when the cached token has expired or none exists.
func (t *TokenService) GetToken(ctx context.Context, userID uuid.UUID) (string, error) {
	var cached models.ExtractionToken
	err := t.db.WithContext(ctx).Where("user_id = ?", userID).First(&cached).Error
	if err == nil && !cached.Expired(time.Now()) {
		return cached.AccessToken, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	t.logger.Debug("fetching fresh extraction token", "user", userID)

	// The form-encoded client-credentials exchange enforces the configured
	// timeout through the injected HTTP client.
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, t.client)
	tk, err := t.oauth.Token(tokenCtx)
	if err != nil {
		return "", fmt.Errorf("%w: token exchange: %v", ErrExternalService, err)
	}

	row := models.ExtractionToken{
		UserID:      userID,
		AccessToken: tk.AccessToken,
		TokenType:   tk.TokenType,
		ExpiresIn:   expiresIn(tk),
		Scope:       extraString(tk, "scope"),
		JTI:         extraString(tk, "jti"),
		IssuedAt:    time.Now(),
	}

	err = t.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "token_type", "expires_in", "scope", "jti", "issued_at", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return "", fmt.Errorf("persisting token: %w", err)
	}

	return tk.AccessToken, nil
}

func expiresIn(tk *oauth2.Token) int64 {
	if v, ok := tk.Extra("expires_in").(float64); ok && v > 0 {
		return int64(v)
	}
	if tk.Expiry.IsZero() {
		return 0
	}
	return int64(time.Until(tk.Expiry).Seconds())
}

func extraString(tk *oauth2.Token, key string) string {
	if v, ok := tk.Extra(key).(string); ok {
		return v
	}
	return ""
}
