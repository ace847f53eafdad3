package credentials

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClient is an interface for making HTTP requests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// UploadRequest is the body accepted by the worker's POST /admin/tokens
type UploadRequest struct {
	RefreshToken string `json:"refresh_token"`
	AccessToken  string `json:"access_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// WorkerUploader seeds a deployed worker with the new tokens so it can keep
// serving without the refresh token being copied by hand.
type WorkerUploader struct {
	baseURL  string
	adminKey string
	client   HTTPClient
}

func NewWorkerUploader(baseURL, adminKey string, client HTTPClient) *WorkerUploader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &WorkerUploader{
		baseURL:  strings.TrimRight(baseURL, "/"),
		adminKey: adminKey,
		client:   client,
	}
}

func (w *WorkerUploader) Name() string {
	return "worker"
}

func (w *WorkerUploader) Save(ctx context.Context, tokens *Tokens) error {
	body, err := json.Marshal(UploadRequest{
		RefreshToken: tokens.RefreshToken,
		AccessToken:  tokens.AccessToken,
		ExpiresIn:    tokens.ExpiresIn,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/admin/tokens", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.adminKey)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach worker: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("worker upload failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}
