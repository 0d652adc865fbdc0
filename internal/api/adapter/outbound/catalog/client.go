// Package catalog talks to the external file catalog service that owns
// FileRecord persistence. Records arrive loosely typed (legacy rows carry
// `algorithm_used`/`algorithm_config`, sometimes JSON-in-a-string); the
// client normalizes them once, at ingestion, so nothing downstream ever
// re-interprets raw rows.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/domain"
)

const serviceName = "file catalog"

// Client is the HTTP adapter for the catalog service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Ensure Client implements port.FileCatalog.
var _ port.FileCatalog = (*Client)(nil)

// NewClient creates a catalog client with a bounded per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListFiles returns every catalog record, dropping rows too malformed to
// normalize rather than failing the whole listing.
func (c *Client) ListFiles(ctx context.Context) ([]domain.FileRecord, error) {
	var rows []catalogRow
	if err := c.getJSON(ctx, "/files", &rows); err != nil {
		return nil, err
	}

	records := make([]domain.FileRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.normalize()
		if err != nil {
			logger.Warnw("Skipping malformed catalog row", "file_id", row.ID, "error", err.Error())
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// GetFile returns one normalized record.
func (c *Client) GetFile(ctx context.Context, fileID string) (*domain.FileRecord, error) {
	var row catalogRow
	if err := c.getJSON(ctx, "/files/"+fileID, &row); err != nil {
		return nil, err
	}
	rec, err := row.normalize()
	if err != nil {
		return nil, fmt.Errorf("catalog row %s: %w", fileID, err)
	}
	return &rec, nil
}

// SaveFile persists a new record.
func (c *Client) SaveFile(ctx context.Context, record *domain.FileRecord) error {
	body, err := json.Marshal(rowFromRecord(record))
	if err != nil {
		return fmt.Errorf("encode catalog record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", serviceName, err)
	}
	defer resp.Body.Close()
	return c.checkStatus(resp, "")
}

// DeleteFile removes a record.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/files/"+fileID, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", serviceName, err)
	}
	defer resp.Body.Close()
	return c.checkStatus(resp, fileID)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", serviceName, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, strings.TrimPrefix(path, "/files/")); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", serviceName, err)
	}
	return nil
}

func (c *Client) checkStatus(resp *http.Response, fileID string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound && fileID != "" {
		return fmt.Errorf("%w: %s", port.ErrFileNotFound, fileID)
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &port.UpstreamError{
		Service: serviceName,
		Status:  resp.StatusCode,
		Detail:  strings.TrimSpace(string(detail)),
	}
}
