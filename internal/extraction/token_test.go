package extraction_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mhalder/docshare/internal/database/models"
	"github.com/mhalder/docshare/internal/extraction"
	"github.com/mhalder/docshare/internal/testutil"
	"github.com/mhalder/docshare/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenEndpoint(t *testing.T, calls *atomic.Int64, status int) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "fresh-token",
			"token_type": "Bearer",
			"expires_in": 3600,
			"scope": "extraction",
			"jti": "jti-1"
		}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTokenService_GetToken(t *testing.T) {
	t.Run("fetches and persists a fresh token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
		user := testutil.CreateTestUser(t, db)

		var calls atomic.Int64
		server := tokenEndpoint(t, &calls, http.StatusOK)

		cfg := &config.ExtractionConfig{
			AuthURL:        server.URL,
			ClientID:       "cid",
			ClientSecret:   "secret",
			DocURL:         "http://unused",
			TimeoutSeconds: 5,
		}
		service := extraction.NewTokenService(db, cfg, slog.Default())

		token, err := service.GetToken(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "fresh-token", token)
		assert.Equal(t, int64(1), calls.Load())

		var row models.ExtractionToken
		require.NoError(t, db.Where("user_id = ?", user.ID).First(&row).Error)
		assert.Equal(t, "fresh-token", row.AccessToken)
		assert.Equal(t, int64(3600), row.ExpiresIn)
		assert.Equal(t, "extraction", row.Scope)
	})

	t.Run("reuses cached token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
		user := testutil.CreateTestUser(t, db)

		var calls atomic.Int64
		server := tokenEndpoint(t, &calls, http.StatusOK)

		cfg := &config.ExtractionConfig{
			AuthURL:        server.URL,
			ClientID:       "cid",
			ClientSecret:   "secret",
			DocURL:         "http://unused",
			TimeoutSeconds: 5,
		}
		service := extraction.NewTokenService(db, cfg, slog.Default())

		_, err := service.GetToken(context.Background(), user.ID)
		require.NoError(t, err)
		_, err = service.GetToken(context.Background(), user.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("expired token triggers refresh and keeps one row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
		user := testutil.CreateTestUser(t, db)

		stale := models.ExtractionToken{
			UserID:      user.ID,
			AccessToken: "stale-token",
			TokenType:   "Bearer",
			ExpiresIn:   60,
			IssuedAt:    time.Now().Add(-2 * time.Minute),
		}
		require.NoError(t, db.Create(&stale).Error)

		var calls atomic.Int64
		server := tokenEndpoint(t, &calls, http.StatusOK)

		cfg := &config.ExtractionConfig{
			AuthURL:        server.URL,
			ClientID:       "cid",
			ClientSecret:   "secret",
			DocURL:         "http://unused",
			TimeoutSeconds: 5,
		}
		service := extraction.NewTokenService(db, cfg, slog.Default())

		token, err := service.GetToken(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "fresh-token", token)
		assert.Equal(t, int64(1), calls.Load())

		var count int64
		db.Model(&models.ExtractionToken{}).Where("user_id = ?", user.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("identity provider failure surfaces as external error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
		user := testutil.CreateTestUser(t, db)

		var calls atomic.Int64
		server := tokenEndpoint(t, &calls, http.StatusInternalServerError)

		cfg := &config.ExtractionConfig{
			AuthURL:        server.URL,
			ClientID:       "cid",
			ClientSecret:   "secret",
			DocURL:         "http://unused",
			TimeoutSeconds: 5,
		}
		service := extraction.NewTokenService(db, cfg, slog.Default())

		_, err := service.GetToken(context.Background(), user.ID)
		assert.ErrorIs(t, err, extraction.ErrExternalService)
	})
}

func TestExtractionToken_Expired(t *testing.T) {
	now := time.Now()

	t.Run("fresh token", func(t *testing.T) {
		tok := models.ExtractionToken{IssuedAt: now, ExpiresIn: 3600}
		assert.False(t, tok.Expired(now))
	})

	t.Run("past expiry", func(t *testing.T) {
		tok := models.ExtractionToken{IssuedAt: now.Add(-2 * time.Hour), ExpiresIn: 3600}
		assert.True(t, tok.Expired(now))
	})

	t.Run("zero expiry means already expired", func(t *testing.T) {
		tok := models.ExtractionToken{IssuedAt: now, ExpiresIn: 0}
		assert.True(t, tok.Expired(now))
	})
}
