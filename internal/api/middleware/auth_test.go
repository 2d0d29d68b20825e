package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mhalder/docshare/internal/api/middleware"
	"github.com/mhalder/docshare/internal/auth"
	"github.com/mhalder/docshare/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()

	var gotUserID uuid.UUID
	var gotEmail, gotRole string
	handler := middleware.Auth(tc.JWTService, tc.AuthService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = middleware.GetUserID(r.Context())
		gotEmail = middleware.GetUserEmail(r.Context())
		gotRole = middleware.GetUserRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("accepts valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+tc.Token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, tc.User.ID, gotUserID)
		assert.Equal(t, tc.User.Email, gotEmail)
		assert.Equal(t, tc.User.Role, gotRole)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects malformed header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Token abc")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects token from different secret", func(t *testing.T) {
		other := auth.NewJWTService("other-secret", time.Hour)
		token, err := other.GenerateToken(tc.User.ID, tc.User.Email, tc.User.Role)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := auth.NewJWTService("test-secret-key-for-testing", -time.Hour)
		token, err := expired.GenerateToken(tc.User.ID, tc.User.Email, tc.User.Role)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects token for unknown user", func(t *testing.T) {
		token, err := tc.JWTService.GenerateToken(uuid.New(), "ghost@example.com", "user")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects token for deactivated user", func(t *testing.T) {
		victim := testutil.CreateTestUser(t, tc.DB)
		token := testutil.GenerateTestToken(t, tc.JWTService, victim)

		require.NoError(t, tc.DB.Model(victim).Update("is_active", false).Error)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("uses stored role over token claims", func(t *testing.T) {
		promoted := testutil.CreateTestUser(t, tc.DB)
		token := testutil.GenerateTestToken(t, tc.JWTService, promoted)

		require.NoError(t, tc.DB.Model(promoted).Update("role", "admin").Error)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "admin", gotRole)
	})
}

func TestRequireRole(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()

	wrap := func(roles ...string) http.Handler {
		inner := middleware.RequireRole(roles...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		return middleware.Auth(tc.JWTService, tc.AuthService)(inner)
	}

	request := func(t *testing.T, handler http.Handler, token string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	t.Run("allows matching role", func(t *testing.T) {
		rr := request(t, wrap("admin"), tc.AdminToken)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("forbids other roles", func(t *testing.T) {
		rr := request(t, wrap("admin"), tc.Token)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("allows any of several roles", func(t *testing.T) {
		rr := request(t, wrap("admin", "user"), tc.Token)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
