package models

import "github.com/google/uuid"

// EnvironmentProfile stores a user's connection target for the external
// extraction API. Name is unique among a creator's active profiles; the
// check happens in the handler because soft-deleted rows keep their name.
type EnvironmentProfile struct {
	Base
	Name        string    `gorm:"not null" json:"name"`
	ClientID    string    `gorm:"not null" json:"client_id"`
	URL         string    `gorm:"not null" json:"url"`
	CreatedByID uuid.UUID `gorm:"type:uuid;index;not null" json:"created_by_id"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

func (EnvironmentProfile) TableName() string {
	return "environment_profiles"
}
