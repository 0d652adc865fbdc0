// Package nodestore talks to the external blob store backing the storage
// fleet: one bucket per node, shard blobs under a per-file key prefix.
package nodestore

import (
	"bytes"
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

const serviceName = "node store"

// shardKey is the canonical blob key for one shard.
func shardKey(fileID string, index int) string {
	return fmt.Sprintf("shards/%s_shard_%03d.cosm", fileID, index)
}

// shardKeyPrefix matches every shard blob of one file.
func shardKeyPrefix(fileID string) string {
	return fmt.Sprintf("shards/%s_shard_", fileID)
}

// Client is the HTTP adapter for the bucket store.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ port.NodeStore = (*Client)(nil)

// NewClient creates a node store client with a bounded per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ProbeNode lists a bucket with limit 1 to learn whether the node answers.
// An unreachable or erroring bucket is an offline probe result, not an error:
// one dead node must never abort a fleet-wide snapshot.
func (c *Client) ProbeNode(ctx context.Context, nodeID string) (*port.NodeProbe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectsURL(nodeID, "", 1), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &port.NodeProbe{NodeID: nodeID, Reachable: false, Detail: err.Error()}, nil
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &port.NodeProbe{
			NodeID:    nodeID,
			Reachable: false,
			Detail:    fmt.Sprintf("bucket list returned %d", resp.StatusCode),
		}, nil
	}
	return &port.NodeProbe{NodeID: nodeID, Reachable: true}, nil
}

// HeadShard verifies a shard blob without transferring it.
func (c *Client) HeadShard(ctx context.Context, shard domain.ShardRef) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.shardURL(shard), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", serviceName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &port.UpstreamError{Service: serviceName, Status: resp.StatusCode, Detail: "shard head failed"}
	}
	return nil
}

// DownloadShard fetches one shard blob.
func (c *Client) DownloadShard(ctx context.Context, shard domain.ShardRef) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.shardURL(shard), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s unreachable: %w", serviceName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &port.UpstreamError{
			Service: serviceName,
			Status:  resp.StatusCode,
			Detail:  strings.TrimSpace(string(detail)),
		}
	}
	return io.ReadAll(resp.Body)
}

// UploadShard writes one shard blob into a node's bucket.
func (c *Client) UploadShard(ctx context.Context, nodeID, fileID string, index int, data []byte) (*domain.ShardRef, error) {
	key := shardKey(fileID, index)
	target := c.objectURL(nodeID, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s unreachable: %w", serviceName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &port.UpstreamError{
			Service: serviceName,
			Status:  resp.StatusCode,
			Detail:  strings.TrimSpace(string(detail)),
		}
	}

	return &domain.ShardRef{
		Index:     index,
		NodeID:    nodeID,
		SizeBytes: int64(len(data)),
		ObjectKey: key,
		URL:       target,
	}, nil
}

// DeleteShard removes one shard blob. A 404 counts as already deleted.
func (c *Client) DeleteShard(ctx context.Context, shard domain.ShardRef) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.shardURL(shard), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", serviceName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 || resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return &port.UpstreamError{Service: serviceName, Status: resp.StatusCode, Detail: "shard delete failed"}
}

// SweepFileShards lists a node's bucket under the file's key prefix and
// deletes every match, catching blobs a record-driven delete missed.
func (c *Client) SweepFileShards(ctx context.Context, nodeID, fileID string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectsURL(nodeID, shardKeyPrefix(fileID), 0), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s unreachable: %w", serviceName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, &port.UpstreamError{Service: serviceName, Status: resp.StatusCode, Detail: "bucket list failed"}
	}

	var listing struct {
		Objects []struct {
			Key string `json:"key"`
		} `json:"objects"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return 0, fmt.Errorf("decode bucket listing: %w", err)
	}

	deleted := 0
	for _, obj := range listing.Objects {
		err := c.DeleteShard(ctx, domain.ShardRef{NodeID: nodeID, ObjectKey: obj.Key})
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// shardURL prefers the stored blob URL and falls back to bucket+key.
func (c *Client) shardURL(shard domain.ShardRef) string {
	if shard.URL != "" {
		return shard.URL
	}
	return c.objectURL(shard.NodeID, shard.ObjectKey)
}

func (c *Client) objectURL(nodeID, key string) string {
	return fmt.Sprintf("%s/buckets/%s/objects/%s", c.baseURL, url.PathEscape(nodeID), key)
}

func (c *Client) objectsURL(nodeID, prefix string, limit int) string {
	q := url.Values{}
	if prefix != "" {
		q.Set("prefix", prefix)
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	u := fmt.Sprintf("%s/buckets/%s/objects", c.baseURL, url.PathEscape(nodeID))
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}
