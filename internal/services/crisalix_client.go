package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// CrisalixUpstreamError wraps a non-2xx answer from the Crisalix API. The
// upstream status and body are preserved so handlers can attach them to the
// 502 envelope.
type CrisalixUpstreamError struct {
	StatusCode int
	Body       string
}

func (e *CrisalixUpstreamError) Error() string {
	return fmt.Sprintf("crisalix upstream returned %d", e.StatusCode)
}

// CrisalixClient forwards patient-creation requests to the Crisalix 3D
// imaging API on behalf of an authenticated staff member.
type CrisalixClient struct {
	baseURL string
	client  *http.Client
}

// NewCrisalixClient creates a new CrisalixClient rooted at baseURL.
func NewCrisalixClient(baseURL string) *CrisalixClient {
	return &CrisalixClient{baseURL: baseURL, client: http.DefaultClient}
}

// CreatePatient forwards the multipart form body verbatim to the upstream
// patients endpoint using the staff member's access token. contentType must
// be the original multipart content type including its boundary.
func (c *CrisalixClient) CreatePatient(ctx context.Context, accessToken, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/patients", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &CrisalixUpstreamError{StatusCode: resp.StatusCode, Body: string(payload)}
	}
	return payload, nil
}
