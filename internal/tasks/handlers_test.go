package tasks

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/mhalder/docshare/internal/database/models"
	"github.com/mhalder/docshare/internal/extraction"
	"github.com/mhalder/docshare/internal/storage"
	"github.com/mhalder/docshare/internal/testutil"
	"github.com/mhalder/docshare/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type taskTestEnv struct {
	db      *gorm.DB
	blobs   *storage.MemoryStore
	handler *Handler
	user    *models.User
}

// setupTaskEnv wires a handler against in-memory storage and stubbed
// identity and extraction endpoints.
func setupTaskEnv(t *testing.T, extractionStatus int) *taskTestEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "worker-token", "token_type": "Bearer", "expires_in": 3600}`))
	}))
	t.Cleanup(authServer.Close)

	docServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer worker-token", r.Header.Get("Authorization"))

		if extractionStatus != http.StatusOK {
			w.WriteHeader(extractionStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "job-42", "status": "PENDING", "clientId": "default", "created": "2026-01-01T00:00:00Z"}`))
	}))
	t.Cleanup(docServer.Close)

	cfg := &config.ExtractionConfig{
		AuthURL:        authServer.URL,
		ClientID:       "cid",
		ClientSecret:   "secret",
		DocURL:         docServer.URL,
		TimeoutSeconds: 5,
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	blobs := storage.NewMemoryStore()
	tokens := extraction.NewTokenService(db, cfg, logger)
	client := extraction.NewClient(cfg)

	return &taskTestEnv{
		db:      db,
		blobs:   blobs,
		handler: NewHandler(db, blobs, tokens, client, logger),
		user:    testutil.CreateTestUser(t, db),
	}
}

func makeTask(t *testing.T, docID, userID uuid.UUID) *asynq.Task {
	t.Helper()

	task, err := NewExtractDocumentTask(ExtractDocumentPayload{
		DocumentID: docID,
		UserID:     userID,
	})
	require.NoError(t, err)
	return task
}

func TestHandleExtractDocument(t *testing.T) {
	t.Run("submits blob and records job", func(t *testing.T) {
		env := setupTaskEnv(t, http.StatusOK)

		doc := testutil.CreateTestDocument(t, env.db, env.user.ID)
		require.NoError(t, env.blobs.Put(context.Background(), doc.BlobName, doc.ContentType, doc.OriginalName, []byte("pdf bytes")))

		err := env.handler.HandleExtractDocument(context.Background(), makeTask(t, doc.ID, env.user.ID))
		require.NoError(t, err)

		var stored models.Document
		require.NoError(t, env.db.First(&stored, doc.ID).Error)
		assert.Equal(t, "job-42", stored.ExtJobID)
		assert.Equal(t, "PENDING", stored.Status)
		assert.Equal(t, "default", stored.ExtClientID)
	})

	t.Run("invalid payload", func(t *testing.T) {
		env := setupTaskEnv(t, http.StatusOK)

		task := asynq.NewTask(TypeExtractDocument, []byte("invalid json"))
		err := env.handler.HandleExtractDocument(context.Background(), task)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unmarshal payload")
	})

	t.Run("deleted document is a no-op", func(t *testing.T) {
		env := setupTaskEnv(t, http.StatusOK)

		err := env.handler.HandleExtractDocument(context.Background(), makeTask(t, uuid.New(), env.user.ID))
		assert.NoError(t, err)
	})

	t.Run("already submitted document is not resubmitted", func(t *testing.T) {
		env := setupTaskEnv(t, http.StatusOK)

		doc := testutil.CreateTestDocument(t, env.db, env.user.ID)
		require.NoError(t, env.db.Model(doc).Update("ext_job_id", "job-earlier").Error)

		err := env.handler.HandleExtractDocument(context.Background(), makeTask(t, doc.ID, env.user.ID))
		require.NoError(t, err)

		var stored models.Document
		require.NoError(t, env.db.First(&stored, doc.ID).Error)
		assert.Equal(t, "job-earlier", stored.ExtJobID)
	})

	t.Run("missing blob fails for retry", func(t *testing.T) {
		env := setupTaskEnv(t, http.StatusOK)

		doc := testutil.CreateTestDocument(t, env.db, env.user.ID)

		err := env.handler.HandleExtractDocument(context.Background(), makeTask(t, doc.ID, env.user.ID))
		assert.Error(t, err)
	})

	t.Run("external failure leaves document untouched", func(t *testing.T) {
		env := setupTaskEnv(t, http.StatusBadGateway)

		doc := testutil.CreateTestDocument(t, env.db, env.user.ID)
		require.NoError(t, env.blobs.Put(context.Background(), doc.BlobName, doc.ContentType, doc.OriginalName, []byte("pdf bytes")))

		err := env.handler.HandleExtractDocument(context.Background(), makeTask(t, doc.ID, env.user.ID))
		assert.ErrorIs(t, err, extraction.ErrExternalService)

		var stored models.Document
		require.NoError(t, env.db.First(&stored, doc.ID).Error)
		assert.Empty(t, stored.ExtJobID)
	})
}

func TestNewExtractDocumentTask(t *testing.T) {
	payload := ExtractDocumentPayload{DocumentID: uuid.New(), UserID: uuid.New()}

	task, err := NewExtractDocumentTask(payload)
	require.NoError(t, err)
	assert.Equal(t, TypeExtractDocument, task.Type())

	var decoded ExtractDocumentPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, payload, decoded)
}
