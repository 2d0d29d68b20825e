package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mhalder/docshare/internal/api/dto"
	"github.com/mhalder/docshare/internal/api/middleware"
	"github.com/mhalder/docshare/internal/database/models"
	"gorm.io/gorm"
)

// ProfileHandler manages a user's environment profiles. Every operation is
// scoped to the authenticated caller; profiles are never visible across
// accounts.
type ProfileHandler struct {
	db *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

func profileToResponse(p *models.EnvironmentProfile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		ClientID:  p.ClientID,
		URL:       p.URL,
		CreatedBy: p.CreatedByID.String(),
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

// List handles GET /api/v1/environment-profiles
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var profiles []models.EnvironmentProfile
	if err := h.db.WithContext(r.Context()).
		Where("created_by_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&profiles).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list profiles"})
		return
	}

	resp := dto.ProfileListResponse{Profiles: make([]dto.ProfileResponse, len(profiles))}
	for i := range profiles {
		resp.Profiles[i] = profileToResponse(&profiles[i])
	}

	writeJSON(w, http.StatusOK, resp)
}

// nameTaken reports whether another active profile of the same creator
// already uses the name. excludeID skips the profile being updated.
func (h *ProfileHandler) nameTaken(r *http.Request, userID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := h.db.WithContext(r.Context()).
		Model(&models.EnvironmentProfile{}).
		Where("created_by_id = ? AND name = ? AND is_active = ?", userID, name, true)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create handles POST /api/v1/environment-profiles
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req dto.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	name := strings.TrimSpace(req.Name)

	taken, err := h.nameTaken(r, userID, name, uuid.Nil)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create profile"})
		return
	}
	if taken {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "A profile with this name already exists"})
		return
	}

	profile := models.EnvironmentProfile{
		Name:        name,
		ClientID:    strings.TrimSpace(req.ClientID),
		URL:         req.URL,
		CreatedByID: userID,
		IsActive:    true,
	}
	if err := h.db.WithContext(r.Context()).Create(&profile).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create profile"})
		return
	}

	writeJSON(w, http.StatusCreated, profileToResponse(&profile))
}

func (h *ProfileHandler) getOwnedProfile(r *http.Request, userID uuid.UUID) (*models.EnvironmentProfile, int, string) {
	profileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid profile ID"
	}

	var profile models.EnvironmentProfile
	if err := h.db.WithContext(r.Context()).
		Where("id = ? AND created_by_id = ? AND is_active = ?", profileID, userID, true).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusNotFound, "Profile not found"
		}
		return nil, http.StatusInternalServerError, "Server error"
	}
	return &profile, 0, ""
}

// Update handles PUT /api/v1/environment-profiles/:id
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, status, msg := h.getOwnedProfile(r, userID)
	if profile == nil {
		writeJSON(w, status, dto.ErrorResponse{Error: msg})
		return
	}

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != profile.Name {
			taken, err := h.nameTaken(r, userID, name, profile.ID)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update profile"})
				return
			}
			if taken {
				writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "A profile with this name already exists"})
				return
			}
		}
		updates["name"] = name
	}
	if req.ClientID != nil {
		updates["client_id"] = strings.TrimSpace(*req.ClientID)
	}
	if req.URL != nil {
		updates["url"] = *req.URL
	}

	if err := h.db.WithContext(r.Context()).Model(profile).Updates(updates).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update profile"})
		return
	}

	writeJSON(w, http.StatusOK, profileToResponse(profile))
}

// Delete handles DELETE /api/v1/environment-profiles/:id. Deletion is soft:
// the row stays for audit but drops out of listings and name checks.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, status, msg := h.getOwnedProfile(r, userID)
	if profile == nil {
		writeJSON(w, status, dto.ErrorResponse{Error: msg})
		return
	}

	if err := h.db.WithContext(r.Context()).Model(profile).Update("is_active", false).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete profile"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Profile deleted successfully"})
}
