package files

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/mhalder/docshare/internal/database/models"
	"github.com/mhalder/docshare/internal/storage"
	"github.com/mhalder/docshare/internal/tasks"
	"github.com/mhalder/docshare/pkg/config"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrForbidden       = errors.New("access denied")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrTooLarge        = errors.New("file exceeds the size limit")
	ErrEmptyFile       = errors.New("file is empty")
	ErrStorage         = errors.New("blob storage failure")
)

// Service orchestrates the document lifecycle: upload, listing, sharing,
// deletion and download resolution. All state lives in the metadata store
// and the blob store; the service itself is stateless.
type Service struct {
	db      *gorm.DB
	blobs   storage.BlobStore
	cfg     *config.Config
	logger  *slog.Logger
	queue   *asynq.Client // nil when no job queue is configured
	allowed map[string]bool
}

func NewService(db *gorm.DB, blobs storage.BlobStore, cfg *config.Config, logger *slog.Logger, queue *asynq.Client) *Service {
	allowed := make(map[string]bool, len(cfg.Upload.AllowedTypes))
	for _, ext := range cfg.Upload.AllowedTypes {
		allowed[ext] = true
	}
	return &Service{
		db:      db,
		blobs:   blobs,
		cfg:     cfg,
		logger:  logger,
		queue:   queue,
		allowed: allowed,
	}
}

type UploadInput struct {
	OwnerID     uuid.UUID
	FileName    string
	ContentType string
	Data        []byte
}

// ValidateUpload applies the extension allow-list and the size ceiling.
// Callers run it before reading the request body so rejected uploads never
// touch the blob store.
func (s *Service) ValidateUpload(fileName string, size int64) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" || !s.allowed[ext] {
		return fmt.Errorf("%w: .%s", ErrUnsupportedType, ext)
	}
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > s.cfg.Upload.MaxBytes {
		return ErrTooLarge
	}
	return nil
}

// Upload stores the file bytes under a fresh locator, then persists the
// metadata record. If the metadata write fails the blob is removed again, so
// at most one of the two writes survives a partial failure.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.Document, error) {
	if err := s.ValidateUpload(in.FileName, int64(len(in.Data))); err != nil {
		return nil, err
	}

	blobName := uuid.NewString()

	if err := s.blobs.Put(ctx, blobName, in.ContentType, in.FileName, in.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	doc := models.Document{
		Name:         in.FileName,
		OriginalName: in.FileName,
		Size:         int64(len(in.Data)),
		ContentType:  in.ContentType,
		UploadedByID: in.OwnerID,
		BlobName:     blobName,
	}

	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		if delErr := s.blobs.Delete(ctx, blobName); delErr != nil {
			s.logger.Error("orphaned blob after failed metadata write",
				"blob", blobName, "error", delErr)
		}
		return nil, fmt.Errorf("persisting document: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Preload("UploadedBy").
		First(&doc, doc.ID).Error; err != nil {
		return nil, err
	}

	s.enqueueExtraction(&doc)

	return &doc, nil
}

// enqueueExtraction hands the document to the background extraction
// pipeline. Enrichment is best-effort: a missing queue or a failed enqueue
// never fails the upload.
func (s *Service) enqueueExtraction(doc *models.Document) {
	if s.queue == nil || !s.cfg.Extraction.Enabled() {
		return
	}

	task, err := tasks.NewExtractDocumentTask(tasks.ExtractDocumentPayload{
		DocumentID: doc.ID,
		UserID:     doc.UploadedByID,
	})
	if err != nil {
		s.logger.Error("building extraction task", "document", doc.ID, "error", err)
		return
	}

	if _, err := s.queue.Enqueue(task); err != nil {
		s.logger.Warn("failed to enqueue extraction task", "document", doc.ID, "error", err)
		return
	}

	s.logger.Debug("extraction task enqueued", "document", doc.ID)
}

type Page struct {
	Items      []models.Document
	Total      int64
	TotalPages int
	Page       int
	PageSize   int
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}

// ListOwned returns the caller's documents, newest first.
func (s *Service) ListOwned(ctx context.Context, ownerID uuid.UUID, page, pageSize int) (*Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&models.Document{}).Where("uploaded_by_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var docs []models.Document
	if err := query.
		Preload("UploadedBy").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&docs).Error; err != nil {
		return nil, err
	}

	return &Page{
		Items:      docs,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// ListTeam returns every team-shared document, most recently shared first.
// Visible to any authenticated user regardless of ownership.
func (s *Service) ListTeam(ctx context.Context, page, pageSize int) (*Page, error) {
	page, pageSize = normalizePage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&models.Document{}).Where("is_team_shared = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var docs []models.Document
	if err := query.
		Preload("UploadedBy").
		Preload("TeamSharedBy").
		Order("team_shared_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&docs).Error; err != nil {
		return nil, err
	}

	return &Page{
		Items:      docs,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (s *Service) getDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Delete removes the blob and then the metadata record. Only the owner or
// an admin may delete. Blob deletion is idempotent, so a retry after a
// partial failure cannot strand metadata pointing at a live blob.
func (s *Service) Delete(ctx context.Context, docID, callerID uuid.UUID, callerRole string) error {
	doc, err := s.getDocument(ctx, docID)
	if err != nil {
		return err
	}

	if doc.UploadedByID != callerID && callerRole != models.RoleAdmin {
		return ErrForbidden
	}

	if err := s.blobs.Delete(ctx, doc.BlobName); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := s.db.WithContext(ctx).Delete(&models.Document{}, docID).Error; err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	return nil
}

// Share issues a fresh share token for the owner and returns the share URL.
// A second call overwrites the previous token, implicitly revoking it.
func (s *Service) Share(ctx context.Context, docID, callerID uuid.UUID) (string, error) {
	doc, err := s.getDocument(ctx, docID)
	if err != nil {
		return "", err
	}

	if doc.UploadedByID != callerID {
		return "", ErrForbidden
	}

	token := uuid.NewString()
	link := fmt.Sprintf("%s/shared/%s", s.cfg.Server.FrontendURL, token)
	now := time.Now()

	updates := map[string]interface{}{
		"is_shared":   true,
		"share_token": token,
		"share_link":  link,
		"shared_at":   now,
	}
	if err := s.db.WithContext(ctx).Model(doc).Updates(updates).Error; err != nil {
		return "", fmt.Errorf("saving share token: %w", err)
	}

	return link, nil
}

// ShareTeam flags the document as visible to the whole team. Admin only;
// the authorization check lives at the route. There is no unshare-team
// operation, matching the one-way transition of the original system.
func (s *Service) ShareTeam(ctx context.Context, docID, adminID uuid.UUID) error {
	doc, err := s.getDocument(ctx, docID)
	if err != nil {
		return err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"is_team_shared":    true,
		"team_shared_by_id": adminID,
		"team_shared_at":    now,
	}
	if err := s.db.WithContext(ctx).Model(doc).Updates(updates).Error; err != nil {
		return fmt.Errorf("saving team share: %w", err)
	}

	return nil
}

// ResolveShared looks a document up by share token. Unauthenticated access:
// the token is the capability. A cleared share flag hides the document even
// while the token value is still stored.
func (s *Service) ResolveShared(ctx context.Context, token string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).
		Preload("UploadedBy").
		Where("share_token = ? AND is_shared = ?", token, true).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// Download resolves a blob locator. Backends that can sign URLs return a
// redirect target; otherwise the object itself is returned for inline
// serving.
func (s *Service) Download(ctx context.Context, blobName string) (*storage.Object, string, error) {
	if signer, ok := s.blobs.(storage.URLSigner); ok {
		url, err := signer.SignedURL(ctx, blobName, s.cfg.Storage.DownloadTTL())
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrStorage, err)
		}
		return nil, url, nil
	}

	obj, err := s.blobs.Get(ctx, blobName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return obj, "", nil
}
