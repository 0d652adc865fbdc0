// Package encoder talks to the external encoding service that owns the
// replication and erasure-coding arithmetic. Shard payloads travel as JSON
// base64; a missing shard is null so the decoder knows which indices to
// repair around.
package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/domain"
)

const serviceName = "encoding service"

// Client is the HTTP adapter for the encoding service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ port.Encoder = (*Client)(nil)

// NewClient creates an encoder client with a bounded per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type encodeRequest struct {
	Scheme  domain.EncodingScheme `json:"scheme"`
	Payload []byte                `json:"payload"`
}

type encodeResponse struct {
	Shards [][]byte `json:"shards"`
}

// Encode asks the service to split a payload per the scheme.
func (c *Client) Encode(ctx context.Context, scheme domain.EncodingScheme, payload []byte) ([][]byte, error) {
	var resp encodeResponse
	if err := c.post(ctx, "/encode", encodeRequest{Scheme: scheme, Payload: payload}, &resp); err != nil {
		return nil, err
	}
	if want := scheme.TotalShards(); len(resp.Shards) != want {
		return nil, fmt.Errorf("%s produced %d shards, scheme declares %d", serviceName, len(resp.Shards), want)
	}
	return resp.Shards, nil
}

type decodeShard struct {
	Index int    `json:"index"`
	Data  []byte `json:"data,omitempty"`
}

type decodeRequest struct {
	Scheme       domain.EncodingScheme `json:"scheme"`
	OriginalSize int64                 `json:"original_size"`
	Shards       []decodeShard         `json:"shards"`
}

type decodeResponse struct {
	Payload []byte `json:"payload"`
}

// Decode asks the service to rebuild the payload from a shard quorum.
func (c *Client) Decode(ctx context.Context, scheme domain.EncodingScheme, originalSize int64, shards []port.EncodedShard) ([]byte, error) {
	req := decodeRequest{Scheme: scheme, OriginalSize: originalSize}
	for _, s := range shards {
		req.Shards = append(req.Shards, decodeShard{Index: s.Index, Data: s.Data})
	}

	var resp decodeResponse
	if err := c.post(ctx, "/decode", req, &resp); err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", serviceName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &port.UpstreamError{
			Service: serviceName,
			Status:  resp.StatusCode,
			Detail:  strings.TrimSpace(string(detail)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", serviceName, err)
	}
	return nil
}
