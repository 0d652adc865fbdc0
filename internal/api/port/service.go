package port

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cosmeon/cosmeon/internal/domain"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrNodeNotFound = errors.New("node not found")
	ErrFileTooLarge = errors.New("file exceeds the configured size limit")

	// ErrOperationInFlight rejects a second concurrent operation on the
	// same entity id. The caller may retry once the first one finishes.
	ErrOperationInFlight = errors.New("operation already in flight")

	// ErrNotReconstructable blocks a reconstruction whose available shards
	// fall short of the quorum.
	ErrNotReconstructable = errors.New("not enough shards to reconstruct")
)

// UpstreamError carries a non-2xx answer from an external service. Detail is
// the server-supplied message, surfaced verbatim to the operator.
type UpstreamError struct {
	Service string
	Status  int
	Detail  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Service, e.Status, e.Detail)
}

// ToggleResult is the typed outcome of one simulation transition. Changed is
// false for the benign already-in-state case.
type ToggleResult struct {
	NodeID  string           `json:"node_id"`
	State   domain.NodeState `json:"state"`
	Changed bool             `json:"changed"`
}

// FailureInfo describes the current simulated outages.
type FailureInfo struct {
	FailedNodes  []string             `json:"failed_nodes"`
	FailureCount int                  `json:"failure_count"`
	History      map[string]time.Time `json:"failure_history"`
}

// NodesStatus is the registry view served to operators.
type NodesStatus struct {
	TotalNodes  int                  `json:"total_nodes"`
	OnlineNodes int                  `json:"online_nodes"`
	Nodes       []domain.StorageNode `json:"nodes"`
}

// ShardStatus is the per-shard detail inside a file status.
type ShardStatus struct {
	Index            int    `json:"shard_index"`
	NodeID           string `json:"node_id"`
	Online           bool   `json:"online"`
	SizeBytes        int64  `json:"size_bytes"`
	SimulatedFailure bool   `json:"simulated_failure"`
}

// FileStatus is the derived redundancy view of one file.
type FileStatus struct {
	FileID   string                  `json:"file_id"`
	Filename string                  `json:"filename"`
	Scheme   domain.EncodingScheme   `json:"scheme"`
	Shards   []ShardStatus           `json:"shard_status"`
	Status   domain.FileHealthStatus `json:"status"`
}

// ReconstructInfo is the feasibility descriptor computed before any download.
type ReconstructInfo struct {
	FileID              string `json:"file_id"`
	Filename            string `json:"filename"`
	TotalShards         int    `json:"total_shards"`
	AvailableShards     int    `json:"available_shards"`
	NeededShards        int    `json:"needed_shards"`
	MissingShardIndices []int  `json:"missing_shards"`
	CanReconstruct      bool   `json:"can_reconstruct"`
	Shortfall           int    `json:"shortfall,omitempty"`
	OriginalSizeBytes   int64  `json:"original_size_bytes"`
}

// UploadResult reports a finished upload.
type UploadResult struct {
	FileID             string                `json:"file_id"`
	Scheme             domain.EncodingScheme `json:"scheme"`
	Shards             []domain.ShardRef     `json:"shards"`
	CostEstimate       float64               `json:"cost_estimate"`
	CanSurviveFailures int                   `json:"can_survive_failures"`
}

// DeleteReport reports a file deletion, including shard-level failures that
// did not abort the whole operation.
type DeleteReport struct {
	FileID        string   `json:"file_id"`
	ShardsDeleted int      `json:"shards_deleted"`
	Errors        []string `json:"errors,omitempty"`
}

// PurgeReport reports a delete-all sweep.
type PurgeReport struct {
	TotalFiles    int      `json:"total_files"`
	DeletedFiles  int      `json:"deleted_files"`
	ShardsDeleted int      `json:"shards_deleted"`
	Errors        []string `json:"errors,omitempty"`
}

// ClusterService builds registry snapshots and fleet-level health.
type ClusterService interface {
	// Snapshot probes every configured node and returns the point-in-time
	// registry view, with simulated failures applied.
	Snapshot(ctx context.Context) (domain.Snapshot, error)

	// NodesStatus is the operator-facing shape of Snapshot.
	NodesStatus(ctx context.Context) (*NodesStatus, error)

	// Summary rolls the current snapshot into the fleet classification.
	Summary(ctx context.Context) (domain.ClusterHealthSummary, error)

	// KnownNode reports whether the id belongs to the configured fleet.
	KnownNode(nodeID string) bool

	// Invalidate drops any cached snapshot so the next read re-probes.
	Invalidate()
}

// SimulationService drives the per-node failure simulation state machine.
type SimulationService interface {
	SimulateFailure(ctx context.Context, nodeID string) (*ToggleResult, error)
	Restore(ctx context.Context, nodeID string) (*ToggleResult, error)
	FailureInfo() *FailureInfo
	ClearAll() int
}

// FileService covers catalog reads and the per-file operations.
type FileService interface {
	ListFiles(ctx context.Context) ([]domain.FileRecord, error)
	FileStatus(ctx context.Context, fileID string) (*FileStatus, error)
	ReconstructInfo(ctx context.Context, fileID string) (*ReconstructInfo, error)

	// Reconstruct streams the rebuilt payload. It refuses with
	// ErrNotReconstructable before any shard download when the quorum
	// cannot be met, and with ErrOperationInFlight when another
	// reconstruct/delete for the same file is running.
	Reconstruct(ctx context.Context, fileID string, w io.Writer) (*domain.FileRecord, error)

	Upload(ctx context.Context, filename string, scheme domain.EncodingScheme, r io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, fileID string) (*DeleteReport, error)
	DeleteAll(ctx context.Context) (*PurgeReport, error)
}
