package dto

import "strings"

func validRole(role string) bool {
	return role == "user" || role == "admin"
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (r CreateUserRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if len(strings.TrimSpace(r.Name)) < 2 {
		errors["name"] = "Name must be at least 2 characters"
	}
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		errors["email"] = "A valid email is required"
	}
	if len(r.Password) < 6 {
		errors["password"] = "Password must be at least 6 characters"
	}
	if r.Role != "" && !validRole(r.Role) {
		errors["role"] = "Role must be user or admin"
	}

	return errors
}

type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (r UpdateUserRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == nil && r.Email == nil && r.Role == nil && r.IsActive == nil {
		errors["body"] = "At least one field is required"
	}
	if r.Name != nil && len(strings.TrimSpace(*r.Name)) < 2 {
		errors["name"] = "Name must be at least 2 characters"
	}
	if r.Email != nil && (*r.Email == "" || !strings.Contains(*r.Email, "@")) {
		errors["email"] = "A valid email is required"
	}
	if r.Role != nil && !validRole(*r.Role) {
		errors["role"] = "Role must be user or admin"
	}

	return errors
}

type UserListResponse struct {
	Users []UserDTO `json:"users"`
}
