package dto

// DocumentResponse is the owner-facing view of a document.
type DocumentResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
	UploadedBy   string `json:"uploaded_by"`
	UploadedAt   string `json:"uploaded_at"`
	IsShared     bool   `json:"is_shared"`
	ShareLink    string `json:"share_link,omitempty"`
	IsTeamShared bool   `json:"is_team_shared"`
	TeamSharedAt string `json:"team_shared_at,omitempty"`
	Status       string `json:"status,omitempty"`
	DownloadURL  string `json:"download_url,omitempty"`
}

type DocumentListResponse struct {
	Documents   []DocumentResponse `json:"documents"`
	Total       int64              `json:"total"`
	TotalPages  int                `json:"total_pages"`
	CurrentPage int                `json:"current_page"`
}

type UploadResponse struct {
	Message  string           `json:"message"`
	Document DocumentResponse `json:"document"`
}

type ShareResponse struct {
	Message   string `json:"message"`
	ShareLink string `json:"share_link"`
}

// SharedDocumentResponse is the public view returned by the share-token
// resolver: the uploader appears by display name only.
type SharedDocumentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	Type        string `json:"type"`
	UploadedBy  string `json:"uploaded_by"`
	UploadedAt  string `json:"uploaded_at"`
	DownloadURL string `json:"download_url"`
}
