package domain

import "time"

// ShardRef points one encoded fragment at the node holding it. NodeID is a
// weak reference into the registry; the shard does not own the node and its
// online-ness is always derived, never stored.
type ShardRef struct {
	Index     int    `json:"shard_index"`
	NodeID    string `json:"node_id"`
	SizeBytes int64  `json:"size_bytes"`
	ObjectKey string `json:"object_key,omitempty"`
	URL       string `json:"url,omitempty"`
}

// FileRecord is the catalog entry for one stored file. Immutable except for
// deletion. Shard order is significant for reconstruction, not for health.
type FileRecord struct {
	ID                string         `json:"id"`
	Filename          string         `json:"filename"`
	OriginalSizeBytes int64          `json:"original_size_bytes"`
	Scheme            EncodingScheme `json:"scheme"`
	Shards            []ShardRef     `json:"shards"`
	CostEstimate      float64        `json:"cost_estimate"`
	UploadedAt        time.Time      `json:"uploaded_at,omitempty"`
}

// ShardOnNode reports whether any shard of the file lives on the given node.
func (f FileRecord) ShardOnNode(nodeID string) bool {
	for _, s := range f.Shards {
		if s.NodeID == nodeID {
			return true
		}
	}
	return false
}
