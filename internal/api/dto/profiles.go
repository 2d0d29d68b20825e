package dto

import (
	"net/url"
	"strings"
)

type CreateProfileRequest struct {
	Name     string `json:"name"`
	ClientID string `json:"client_id"`
	URL      string `json:"url"`
}

func (r CreateProfileRequest) Validate() map[string]string {
	errors := make(map[string]string)

	name := strings.TrimSpace(r.Name)
	if name == "" {
		errors["name"] = "Name is required"
	} else if len(name) > 100 {
		errors["name"] = "Name cannot exceed 100 characters"
	}
	if strings.TrimSpace(r.ClientID) == "" {
		errors["client_id"] = "Client ID is required"
	} else if len(r.ClientID) > 255 {
		errors["client_id"] = "Client ID cannot exceed 255 characters"
	}
	if !isValidURL(r.URL) {
		errors["url"] = "A valid URL is required"
	}

	return errors
}

type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	ClientID *string `json:"client_id,omitempty"`
	URL      *string `json:"url,omitempty"`
}

func (r UpdateProfileRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == nil && r.ClientID == nil && r.URL == nil {
		errors["body"] = "At least one field is required"
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		errors["name"] = "Name cannot be empty"
	}
	if r.ClientID != nil && strings.TrimSpace(*r.ClientID) == "" {
		errors["client_id"] = "Client ID cannot be empty"
	}
	if r.URL != nil && !isValidURL(*r.URL) {
		errors["url"] = "A valid URL is required"
	}

	return errors
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

type ProfileResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ClientID  string `json:"client_id"`
	URL       string `json:"url"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
}

type ProfileListResponse struct {
	Profiles []ProfileResponse `json:"profiles"`
}
