// Package certificate calls the external certificate-generation function.
// The service is a thin stateless collaborator: it takes a name and a
// credit amount and returns a download reference for the generated PDF.
package certificate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GenerateRequest is the payload sent to the certificate service.
type GenerateRequest struct {
	FullName       string  `json:"fullName"`
	CreditsToClaim float64 `json:"creditsToClaim"`
}

// GenerateResult is a successful certificate generation.
type GenerateResult struct {
	DownloadURL string
	FileName    string
}

// GenerateError indicates the service did not produce a certificate.
// Callers treat it as recoverable: the claim the certificate belongs to
// is already committed and must not be rolled back.
type GenerateError struct {
	StatusCode int
	Message    string
}

func (e *GenerateError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("certificate generation failed: %s", e.Message)
	}
	return fmt.Sprintf("certificate generation failed with status %d", e.StatusCode)
}

// Client talks to the certificate generation endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a Client for the given endpoint URL.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// generateResponse is the service's wire format.
type generateResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
	Error       string `json:"error"`
}

// Generate requests a certificate. Any non-2xx status, success flag other
// than true, or missing download URL is a *GenerateError.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode certificate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build certificate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call certificate service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read certificate response: %w", err)
	}

	var decoded generateResponse
	if len(raw) > 0 {
		// A non-JSON error body still maps to a GenerateError below.
		_ = json.Unmarshal(raw, &decoded)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GenerateError{StatusCode: resp.StatusCode, Message: decoded.Error}
	}
	if !decoded.Success || decoded.DownloadURL == "" {
		return nil, &GenerateError{StatusCode: resp.StatusCode, Message: decoded.Error}
	}

	return &GenerateResult{
		DownloadURL: decoded.DownloadURL,
		FileName:    decoded.FileName,
	}, nil
}
