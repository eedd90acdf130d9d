// Package sheets pulls transaction rows out of a published Google Sheet via
// its public CSV export endpoint. No API key is needed: the sheet must be
// shared as "anyone with the link".
package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrSheetNotFound   = errors.New("sheet not found: check the sheet id")
	ErrSheetNotPublic  = errors.New("sheet is not public: share it as 'anyone with the link can view'")
	ErrSheetIDRequired = errors.New("sheet id is not configured")
)

const exportURL = "https://docs.google.com/spreadsheets/d/%s/export?format=csv"

type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchCSV downloads the sheet's first tab as CSV text.
func (c *Client) FetchCSV(ctx context.Context, sheetID string) (string, error) {
	if sheetID == "" {
		return "", ErrSheetIDRequired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(exportURL, sheetID), nil)
	if err != nil {
		return "", fmt.Errorf("build sheet request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", ErrSheetNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return "", ErrSheetNotPublic
	default:
		return "", fmt.Errorf("fetch sheet: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read sheet body: %w", err)
	}
	return string(body), nil
}
