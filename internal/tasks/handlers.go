package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/mhalder/docshare/internal/database/models"
	"github.com/mhalder/docshare/internal/extraction"
	"github.com/mhalder/docshare/internal/storage"
	"gorm.io/gorm"
)

type Handler struct {
	db      *gorm.DB
	blobs   storage.BlobStore
	tokens  *extraction.TokenService
	extract *extraction.Client
	logger  *slog.Logger
}

func NewHandler(db *gorm.DB, blobs storage.BlobStore, tokens *extraction.TokenService, extract *extraction.Client, logger *slog.Logger) *Handler {
	return &Handler{
		db:      db,
		blobs:   blobs,
		tokens:  tokens,
		extract: extract,
		logger:  logger,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeExtractDocument, h.HandleExtractDocument)
}

// HandleExtractDocument forwards an uploaded document to the external
// extraction service. Local state is only advanced after the submission
// succeeds; an external failure returns the error so asynq retries.
func (h *Handler) HandleExtractDocument(ctx context.Context, t *asynq.Task) error {
	var payload ExtractDocumentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	var doc models.Document
	if err := h.db.WithContext(ctx).First(&doc, payload.DocumentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted before the worker got to it; nothing to do.
			h.logger.Info("document gone before extraction", "document", payload.DocumentID)
			return nil
		}
		return err
	}

	if doc.ExtJobID != "" {
		h.logger.Debug("document already submitted", "document", doc.ID, "job", doc.ExtJobID)
		return nil
	}

	obj, err := h.blobs.Get(ctx, doc.BlobName)
	if err != nil {
		return fmt.Errorf("reading blob %s: %w", doc.BlobName, err)
	}

	token, err := h.tokens.GetToken(ctx, payload.UserID)
	if err != nil {
		return err
	}

	job, err := h.extract.SubmitJob(ctx, obj.Data, doc.OriginalName, doc.ContentType, token)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"status":        job.Status,
		"ext_job_id":    job.ID,
		"ext_client_id": job.ClientID,
		"ext_created":   job.Created,
		"ext_finished":  job.Finished,
	}
	if err := h.db.WithContext(ctx).Model(&doc).Updates(updates).Error; err != nil {
		return fmt.Errorf("recording extraction job: %w", err)
	}

	h.logger.Info("extraction job submitted",
		"document", doc.ID,
		"job", job.ID,
		"status", job.Status,
	)

	return nil
}
