package port

import (
	"context"

	"github.com/cosmeon/cosmeon/internal/domain"
)

//go:generate mockgen -destination=../service/mocks/outbound_mock.go -package=mocks -source=repository.go

// NodeProbe is the raw result of checking one storage node's bucket.
type NodeProbe struct {
	NodeID    string
	Reachable bool
	Detail    string
}

// FileCatalog is the external catalog service owning FileRecord persistence.
type FileCatalog interface {
	// ListFiles returns every catalog record, normalized on ingestion.
	ListFiles(ctx context.Context) ([]domain.FileRecord, error)

	// GetFile returns one record, or ErrFileNotFound.
	GetFile(ctx context.Context, fileID string) (*domain.FileRecord, error)

	// SaveFile persists a new record.
	SaveFile(ctx context.Context, record *domain.FileRecord) error

	// DeleteFile removes a record; the id must be treated as absent afterwards.
	DeleteFile(ctx context.Context, fileID string) error
}

// NodeStore is the external blob store holding one bucket per storage node.
type NodeStore interface {
	// ProbeNode checks whether a node's bucket answers.
	ProbeNode(ctx context.Context, nodeID string) (*NodeProbe, error)

	// HeadShard verifies a shard blob is reachable without fetching it.
	HeadShard(ctx context.Context, shard domain.ShardRef) error

	// DownloadShard fetches a shard blob.
	DownloadShard(ctx context.Context, shard domain.ShardRef) ([]byte, error)

	// UploadShard writes a shard blob into a node's bucket and returns the
	// stored reference.
	UploadShard(ctx context.Context, nodeID, fileID string, index int, data []byte) (*domain.ShardRef, error)

	// DeleteShard removes one shard blob.
	DeleteShard(ctx context.Context, shard domain.ShardRef) error

	// SweepFileShards removes every leftover blob of a file from a node's
	// bucket and reports how many were deleted.
	SweepFileShards(ctx context.Context, nodeID, fileID string) (int, error)
}

// EncodedShard is one shard handed to or received from the encoding service.
// Nil Data marks a shard that is missing (its node is offline).
type EncodedShard struct {
	Index int
	Data  []byte
}

// Encoder is the external encoding service doing the erasure/replication
// arithmetic. This core never implements the math itself.
type Encoder interface {
	// Encode splits a payload into scheme.TotalShards() fragments.
	Encode(ctx context.Context, scheme domain.EncodingScheme, payload []byte) ([][]byte, error)

	// Decode rebuilds the original payload from a quorum of fragments.
	Decode(ctx context.Context, scheme domain.EncodingScheme, originalSize int64, shards []EncodedShard) ([]byte, error)
}
