package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mhalder/docshare/internal/api/dto"
	"github.com/mhalder/docshare/internal/api/middleware"
	"github.com/mhalder/docshare/internal/auth"
	"github.com/mhalder/docshare/internal/database/models"
	"gorm.io/gorm"
)

// UserHandler implements the admin account management surface. All routes
// sit behind RequireRole(admin).
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := h.db.WithContext(r.Context()).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list users"})
		return
	}

	resp := dto.UserListResponse{Users: make([]dto.UserDTO, len(users))}
	for i := range users {
		resp.Users[i] = userToDTO(&users[i])
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	email := auth.NormalizeEmail(req.Email)

	var existing models.User
	if err := h.db.WithContext(r.Context()).Where("email = ?", email).First(&existing).Error; err == nil {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "A user with this email already exists"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create user"})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}

	if err := h.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create user"})
		return
	}

	writeJSON(w, http.StatusCreated, userToDTO(&user))
}

// Update handles PUT /api/v1/users/:id
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	var user models.User
	if err := h.db.WithContext(r.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load user"})
		return
	}

	if req.Email != nil {
		email := auth.NormalizeEmail(*req.Email)
		if email != user.Email {
			var existing models.User
			if err := h.db.WithContext(r.Context()).
				Where("email = ? AND id <> ?", email, userID).
				First(&existing).Error; err == nil {
				writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "A user with this email already exists"})
				return
			}
		}
		user.Email = email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.db.WithContext(r.Context()).Save(&user).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update user"})
		return
	}

	writeJSON(w, http.StatusOK, userToDTO(&user))
}

// Delete handles DELETE /api/v1/users/:id. Accounts are deactivated, never
// removed: documents keep a valid owner reference.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	if userID == middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Cannot deactivate your own account"})
		return
	}

	result := h.db.WithContext(r.Context()).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_active", false)

	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to deactivate user"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "User deactivated"})
}
