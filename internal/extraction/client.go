package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/mhalder/docshare/pkg/config"
)

// jobOptions is the fixed classification schema descriptor sent with every
// submission, mirroring what the extraction service expects.
type jobOptions struct {
	SchemaName    string         `json:"schemaName"`
	ClientID      string         `json:"clientId"`
	DocumentType  string         `json:"documentType"`
	SchemaVersion string         `json:"schemaVersion"`
	Enrichment    map[string]any `json:"enrichment"`
}

func defaultJobOptions() jobOptions {
	return jobOptions{
		SchemaName:    "Common_Schema",
		ClientID:      "default",
		DocumentType:  "invoice",
		SchemaVersion: "2",
		Enrichment: map[string]any{
			"sender": map[string]any{
				"top":     5,
				"type":    "businessEntity",
				"subtype": "supplier",
			},
			"employee": map[string]any{
				"type": "employee",
			},
		},
	}
}

// Job is the external service's view of a submitted document.
type Job struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	ClientID   string          `json:"clientId"`
	FileName   string          `json:"fileName,omitempty"`
	Created    string          `json:"created,omitempty"`
	Finished   string          `json:"finished,omitempty"`
	Extraction json.RawMessage `json:"extraction,omitempty"`
}

type jobList struct {
	Results []Job `json:"results"`
}

// Client talks to the external document-extraction API. Every request
// carries a bearer token and the configured timeout; failures surface as
// ErrExternalService and never touch local document state.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg *config.ExtractionConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		baseURL:    strings.TrimRight(cfg.DocURL, "/"),
	}
}

// SubmitJob uploads the file plus the schema descriptor as multipart form
// data and returns the job the service created.
func (c *Client) SubmitJob(ctx context.Context, data []byte, fileName, contentType, accessToken string) (*Job, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}

	opts, err := json.Marshal(defaultJobOptions())
	if err != nil {
		return nil, fmt.Errorf("marshaling job options: %w", err)
	}
	if err := writer.WriteField("options", string(opts)); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var job Job
	if err := c.do(req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJob fetches status and extracted fields for a submitted job.
func (c *Client) GetJob(ctx context.Context, jobID, accessToken string) (*Job, error) {
	url := fmt.Sprintf("%s/%s?returnNullValues=false&extractedValues=true", c.baseURL, jobID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var job Job
	if err := c.do(req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs fetches all jobs visible to the default client scope.
func (c *Client) ListJobs(ctx context.Context, accessToken string) ([]Job, error) {
	url := c.baseURL + "?clientId=default"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var list jobList
	if err := c.do(req, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrExternalService, resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrExternalService, err)
	}
	return nil
}
