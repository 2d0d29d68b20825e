package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeExtractDocument = "extraction:process"
)

// ExtractDocumentPayload identifies the uploaded document to forward to the
// external extraction service and the user whose token pays for the call.
type ExtractDocumentPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
	UserID     uuid.UUID `json:"user_id"`
}

func NewExtractDocumentTask(payload ExtractDocumentPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeExtractDocument, data, asynq.MaxRetry(3)), nil
}
