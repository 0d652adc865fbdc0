package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/domain"
)

// Client is the typed HTTP client for the storage control API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a client with a bounded per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// NodesStatus fetches the registry view.
func (c *Client) NodesStatus(ctx context.Context) (*port.NodesStatus, error) {
	var out port.NodesStatus
	if err := c.getJSON(ctx, "/nodes/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClusterHealth fetches the fleet-wide classification.
func (c *Client) ClusterHealth(ctx context.Context) (*domain.ClusterHealthSummary, error) {
	var out domain.ClusterHealthSummary
	if err := c.getJSON(ctx, "/cluster/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFiles fetches every catalog record.
func (c *Client) ListFiles(ctx context.Context) ([]domain.FileRecord, error) {
	var out []domain.FileRecord
	if err := c.getJSON(ctx, "/files", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FileStatus fetches the derived redundancy view of one file.
func (c *Client) FileStatus(ctx context.Context, fileID string) (*port.FileStatus, error) {
	var out port.FileStatus
	if err := c.getJSON(ctx, "/file/"+url.PathEscape(fileID)+"/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReconstructInfo fetches the feasibility descriptor of one file.
func (c *Client) ReconstructInfo(ctx context.Context, fileID string) (*port.ReconstructInfo, error) {
	var out port.ReconstructInfo
	if err := c.getJSON(ctx, "/file/"+url.PathEscape(fileID)+"/reconstruct-info", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reconstruct downloads the rebuilt payload into w and reports its size.
func (c *Client) Reconstruct(ctx context.Context, fileID string, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, "/file/"+url.PathEscape(fileID)+"/reconstruct", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp); err != nil {
		return 0, err
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &ConnectionError{URL: c.baseURL, Err: err}
	}
	return n, nil
}

// SimulateFailure toggles a node into simulated failure.
func (c *Client) SimulateFailure(ctx context.Context, nodeID string) (*port.ToggleResult, error) {
	return c.toggle(ctx, nodeID, "simulate-failure")
}

// Restore brings a node back online.
func (c *Client) Restore(ctx context.Context, nodeID string) (*port.ToggleResult, error) {
	return c.toggle(ctx, nodeID, "restore")
}

func (c *Client) toggle(ctx context.Context, nodeID, action string) (*port.ToggleResult, error) {
	var out port.ToggleResult
	path := "/nodes/" + url.PathEscape(nodeID) + "/" + action
	if err := c.postJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Failures fetches the current simulation info.
func (c *Client) Failures(ctx context.Context) (*port.FailureInfo, error) {
	var out port.FailureInfo
	if err := c.getJSON(ctx, "/nodes/failures", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearFailures restores every simulated-failed node.
func (c *Client) ClearFailures(ctx context.Context) (int, error) {
	var out struct {
		Restored int `json:"restored"`
	}
	if err := c.postJSON(ctx, "/nodes/failures/clear", &out); err != nil {
		return 0, err
	}
	return out.Restored, nil
}

// DeleteFile removes one file.
func (c *Client) DeleteFile(ctx context.Context, fileID string) (*port.DeleteReport, error) {
	var out port.DeleteReport
	if err := c.requestJSON(ctx, http.MethodDelete, "/file/"+url.PathEscape(fileID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAllFiles purges the whole catalog.
func (c *Client) DeleteAllFiles(ctx context.Context) (*port.PurgeReport, error) {
	var out port.PurgeReport
	if err := c.requestJSON(ctx, http.MethodDelete, "/files", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.requestJSON(ctx, http.MethodGet, path, out)
}

func (c *Client) postJSON(ctx context.Context, path string, out any) error {
	return c.requestJSON(ctx, http.MethodPost, path, out)
}

func (c *Client) requestJSON(ctx context.Context, method, path string, out any) error {
	resp, err := c.do(ctx, method, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ServerError{Status: resp.StatusCode, Detail: fmt.Sprintf("malformed response body: %v", err)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &ConnectionError{URL: c.baseURL + path, Err: err}
	}
	return resp, nil
}

// checkStatus maps non-2xx answers to the error taxonomy; the body's detail
// message travels verbatim.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	detail := resp.Status
	var payload struct {
		Error string `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil && json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		detail = payload.Error
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{Status: resp.StatusCode, Detail: detail}
	}
	return &ServerError{Status: resp.StatusCode, Detail: detail}
}
