package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is the metadata record for an uploaded file. The raw bytes live
// in the blob store under BlobName; the two are linked only by that opaque
// locator.
//
// The personal-share and team-share facets are independent: a document can
// carry both at once. A document has at most one active share token; calling
// share again overwrites the previous token, which implicitly revokes it.
type Document struct {
	Base
	Name         string    `gorm:"not null" json:"name"`
	OriginalName string    `gorm:"not null" json:"original_name"`
	Size         int64     `gorm:"not null" json:"size"`
	ContentType  string    `gorm:"not null" json:"type"`
	UploadedByID uuid.UUID `gorm:"type:uuid;index;not null" json:"uploaded_by_id"`
	BlobName     string    `gorm:"uniqueIndex;not null" json:"-"`
	DownloadURL  string    `json:"download_url,omitempty"`

	// External extraction enrichment, populated by the worker.
	Status      string `json:"status,omitempty"`
	ExtJobID    string `gorm:"index" json:"ext_job_id,omitempty"`
	ExtClientID string `json:"ext_client_id,omitempty"`
	ExtCreated  string `json:"ext_created,omitempty"`
	ExtFinished string `json:"ext_finished,omitempty"`

	// Personal share facet.
	IsShared   bool       `gorm:"default:false" json:"is_shared"`
	ShareToken string     `gorm:"index" json:"-"`
	ShareLink  string     `json:"share_link,omitempty"`
	SharedAt   *time.Time `json:"shared_at,omitempty"`

	// Team share facet.
	IsTeamShared   bool       `gorm:"default:false;index" json:"is_team_shared"`
	TeamSharedByID *uuid.UUID `gorm:"type:uuid" json:"team_shared_by_id,omitempty"`
	TeamSharedAt   *time.Time `json:"team_shared_at,omitempty"`

	// Relationships
	UploadedBy   *User `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
	TeamSharedBy *User `gorm:"foreignKey:TeamSharedByID" json:"team_shared_by,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}
