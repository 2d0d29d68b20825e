package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mhalder/docshare/internal/api/dto"
	"github.com/mhalder/docshare/internal/api/middleware"
	"github.com/mhalder/docshare/internal/database/models"
	"github.com/mhalder/docshare/internal/files"
)

type FileHandler struct {
	service *files.Service
}

func NewFileHandler(service *files.Service) *FileHandler {
	return &FileHandler{service: service}
}

func docToResponse(doc *models.Document) dto.DocumentResponse {
	resp := dto.DocumentResponse{
		ID:           doc.ID.String(),
		Name:         doc.Name,
		Size:         doc.Size,
		Type:         doc.ContentType,
		UploadedAt:   doc.CreatedAt.Format(time.RFC3339),
		IsShared:     doc.IsShared,
		ShareLink:    doc.ShareLink,
		IsTeamShared: doc.IsTeamShared,
		Status:       doc.Status,
		DownloadURL:  downloadPath(doc.BlobName),
	}
	if doc.UploadedBy != nil {
		resp.UploadedBy = doc.UploadedBy.Email
	}
	if doc.TeamSharedAt != nil {
		resp.TeamSharedAt = doc.TeamSharedAt.Format(time.RFC3339)
	}
	return resp
}

func downloadPath(blobName string) string {
	return "/api/v1/files/download/" + url.PathEscape(blobName)
}

func writeFileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, files.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Document not found"})
	case errors.Is(err, files.ErrForbidden):
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Access denied"})
	case errors.Is(err, files.ErrUnsupportedType):
		writeJSON(w, http.StatusUnsupportedMediaType, dto.ErrorResponse{Error: "File type is not allowed"})
	case errors.Is(err, files.ErrTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "File exceeds the size limit"})
	case errors.Is(err, files.ErrEmptyFile):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "File is empty"})
	case errors.Is(err, files.ErrStorage):
		writeJSON(w, http.StatusBadGateway, dto.ErrorResponse{Error: "Storage backend failure"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Server error"})
	}
}

// Upload handles POST /api/v1/files/upload (multipart form, field "file").
// Extension and size are checked against the configured limits before the
// file content is read.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "No file uploaded"})
		return
	}
	defer file.Close()

	if err := h.service.ValidateUpload(header.Filename, header.Size); err != nil {
		writeFileError(w, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Failed to read file"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.service.Upload(r.Context(), files.UploadInput{
		OwnerID:     userID,
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		writeFileError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UploadResponse{
		Message:  "File uploaded successfully",
		Document: docToResponse(doc),
	})
}

func parsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	p := dto.PaginationParams{Page: page, PageSize: pageSize}
	p.Normalize()
	return p.Page, p.PageSize
}

// ListMine handles GET /api/v1/files/my-files
func (h *FileHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	page, pageSize := parsePagination(r)

	result, err := h.service.ListOwned(r.Context(), userID, page, pageSize)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list files"})
		return
	}

	writeListResponse(w, result)
}

// ListTeam handles GET /api/v1/files/team-files
func (h *FileHandler) ListTeam(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	result, err := h.service.ListTeam(r.Context(), page, pageSize)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list files"})
		return
	}

	writeListResponse(w, result)
}

func writeListResponse(w http.ResponseWriter, result *files.Page) {
	docs := make([]dto.DocumentResponse, len(result.Items))
	for i := range result.Items {
		docs[i] = docToResponse(&result.Items[i])
	}

	writeJSON(w, http.StatusOK, dto.DocumentListResponse{
		Documents:   docs,
		Total:       result.Total,
		TotalPages:  result.TotalPages,
		CurrentPage: result.Page,
	})
}

// Share handles POST /api/v1/files/:id/share
func (h *FileHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	docID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid document ID"})
		return
	}

	link, err := h.service.Share(r.Context(), docID, userID)
	if err != nil {
		writeFileError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ShareResponse{
		Message:   "Share link generated successfully",
		ShareLink: link,
	})
}

// ShareTeam handles POST /api/v1/files/:id/share-team (admin only).
func (h *FileHandler) ShareTeam(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetUserID(r.Context())

	docID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid document ID"})
		return
	}

	if err := h.service.ShareTeam(r.Context(), docID, adminID); err != nil {
		writeFileError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "File shared with team successfully"})
}

// Delete handles DELETE /api/v1/files/:id
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetUserRole(r.Context())

	docID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid document ID"})
		return
	}

	if err := h.service.Delete(r.Context(), docID, userID, role); err != nil {
		writeFileError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "File deleted successfully"})
}

// Download handles GET /api/v1/files/download/:blobName (public). The
// memory backend serves bytes directly; signing backends redirect to a
// time-limited URL.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	blobName, err := url.PathUnescape(chi.URLParam(r, "blobName"))
	if err != nil || blobName == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid blob name"})
		return
	}

	obj, redirectURL, err := h.service.Download(r.Context(), blobName)
	if err != nil {
		writeFileError(w, err)
		return
	}

	if redirectURL != "" {
		http.Redirect(w, r, redirectURL, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", obj.OriginalName))
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	_, _ = w.Write(obj.Data)
}

// Shared handles GET /api/v1/files/shared/:token (public resolver).
func (h *FileHandler) Shared(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	doc, err := h.service.ResolveShared(r.Context(), token)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Shared file not found or link expired"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Server error"})
		return
	}

	resp := dto.SharedDocumentResponse{
		ID:          doc.ID.String(),
		Name:        doc.Name,
		Size:        doc.Size,
		Type:        doc.ContentType,
		UploadedAt:  doc.CreatedAt.Format(time.RFC3339),
		DownloadURL: downloadPath(doc.BlobName),
	}
	if doc.UploadedBy != nil {
		resp.UploadedBy = doc.UploadedBy.Name
	}

	writeJSON(w, http.StatusOK, resp)
}
