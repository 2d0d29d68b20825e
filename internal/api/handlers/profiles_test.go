package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mhalder/docshare/internal/api/dto"
	"github.com/mhalder/docshare/internal/api/handlers"
	"github.com/mhalder/docshare/internal/api/middleware"
	"github.com/mhalder/docshare/internal/database/models"
	"github.com/mhalder/docshare/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProfileTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	handler := handlers.NewProfileHandler(tc.DB)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService, tc.AuthService))
		r.Route("/api/v1/environment-profiles", func(r chi.Router) {
			r.Get("/", handler.List)
			r.Post("/", handler.Create)
			r.Put("/{id}", handler.Update)
			r.Delete("/{id}", handler.Delete)
		})
	})

	return r, tc
}

func createProfile(t *testing.T, router *chi.Mux, token, name string) dto.ProfileResponse {
	t.Helper()

	body := map[string]string{
		"name":      name,
		"client_id": "client-123",
		"url":       "https://api.example.com",
	}
	req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/environment-profiles/", body, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusCreated)

	var resp dto.ProfileResponse
	testutil.ParseJSONResponse(t, rr, &resp)
	return resp
}

func TestProfileHandler_Create(t *testing.T) {
	router, tc := setupProfileTestRouter(t)
	defer tc.Cleanup()

	t.Run("creates a profile", func(t *testing.T) {
		resp := createProfile(t, router, tc.Token, "Production")
		assert.Equal(t, "Production", resp.Name)
		assert.Equal(t, "client-123", resp.ClientID)
		assert.NotEmpty(t, resp.ID)
	})

	t.Run("duplicate name for same user conflicts", func(t *testing.T) {
		body := map[string]string{
			"name":      "Production",
			"client_id": "client-456",
			"url":       "https://other.example.com",
		}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/environment-profiles/", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusConflict)
	})

	t.Run("same name allowed for a different user", func(t *testing.T) {
		resp := createProfile(t, router, tc.AdminToken, "Production")
		assert.Equal(t, "Production", resp.Name)
	})

	t.Run("rejects invalid url", func(t *testing.T) {
		body := map[string]string{
			"name":      "Broken",
			"client_id": "client-123",
			"url":       "not a url",
		}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/environment-profiles/", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestProfileHandler_List(t *testing.T) {
	router, tc := setupProfileTestRouter(t)
	defer tc.Cleanup()

	createProfile(t, router, tc.Token, "Mine")
	createProfile(t, router, tc.AdminToken, "Theirs")

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/environment-profiles/", nil, tc.Token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp dto.ProfileListResponse
	testutil.ParseJSONResponse(t, rr, &resp)
	require.Len(t, resp.Profiles, 1)
	assert.Equal(t, "Mine", resp.Profiles[0].Name)
}

func TestProfileHandler_Update(t *testing.T) {
	router, tc := setupProfileTestRouter(t)
	defer tc.Cleanup()

	profile := createProfile(t, router, tc.Token, "Staging")

	t.Run("updates fields", func(t *testing.T) {
		body := map[string]string{"name": "Staging EU", "url": "https://eu.example.com"}
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/environment-profiles/"+profile.ID, body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp dto.ProfileResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Staging EU", resp.Name)
		assert.Equal(t, "https://eu.example.com", resp.URL)
	})

	t.Run("rename onto an existing name conflicts", func(t *testing.T) {
		createProfile(t, router, tc.Token, "Production")

		body := map[string]string{"name": "Production"}
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/environment-profiles/"+profile.ID, body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusConflict)
	})

	t.Run("cannot touch another user's profile", func(t *testing.T) {
		body := map[string]string{"name": "Hijacked"}
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/environment-profiles/"+profile.ID, body, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/v1/environment-profiles/"+profile.ID, map[string]string{}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestProfileHandler_Delete(t *testing.T) {
	router, tc := setupProfileTestRouter(t)
	defer tc.Cleanup()

	profile := createProfile(t, router, tc.Token, "Doomed")

	t.Run("soft deletes", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/environment-profiles/"+profile.ID, nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)

		// The row survives but is inactive
		var stored models.EnvironmentProfile
		require.NoError(t, tc.DB.Where("id = ?", profile.ID).First(&stored).Error)
		assert.False(t, stored.IsActive)
	})

	t.Run("deleted profile is gone from the listing", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/environment-profiles/", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		var resp dto.ProfileListResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Empty(t, resp.Profiles)
	})

	t.Run("name is reusable after deletion", func(t *testing.T) {
		resp := createProfile(t, router, tc.Token, "Doomed")
		assert.Equal(t, "Doomed", resp.Name)
	})

	t.Run("double delete returns not found", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/environment-profiles/"+profile.ID, nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}
