package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mhalder/docshare/internal/api/dto"
	"github.com/mhalder/docshare/internal/database/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func userToDTO(u *models.User) dto.UserDTO {
	return dto.UserDTO{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}
