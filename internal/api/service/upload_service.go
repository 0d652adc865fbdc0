package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/anthanhphan/gosdk/logger"

	"github.com/cosmeon/cosmeon/internal/api/metrics"
	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/domain"
	"github.com/cosmeon/cosmeon/pkg/placement"
	"github.com/cosmeon/cosmeon/pkg/resilience"
)

// uploadService encodes a payload through the external encoding service and
// spreads the shards across online nodes.
type uploadService struct {
	parent *FileServiceImpl
}

func newUploadService(parent *FileServiceImpl) *uploadService {
	return &uploadService{parent: parent}
}

func (u *uploadService) upload(ctx context.Context, filename string, scheme domain.EncodingScheme, r io.Reader) (*port.UploadResult, error) {
	if err := scheme.Validate(); err != nil {
		metrics.Uploads.WithLabelValues("invalid").Inc()
		return nil, err
	}

	payload, err := u.readLimited(r)
	if err != nil {
		metrics.Uploads.WithLabelValues("invalid").Inc()
		return nil, err
	}

	fileID, err := u.parent.idGen.NextString()
	if err != nil {
		metrics.Uploads.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("allocate file id: %w", err)
	}

	fragments, err := u.parent.encoder.Encode(ctx, scheme, payload)
	if err != nil {
		metrics.Uploads.WithLabelValues("failed").Inc()
		return nil, err
	}

	targets, err := u.placeShards(ctx, fileID, len(fragments))
	if err != nil {
		metrics.Uploads.WithLabelValues("failed").Inc()
		return nil, err
	}

	shards := make([]domain.ShardRef, len(fragments))
	errs := resilience.ForEach(ctx, len(fragments), u.parent.cfg.App.ParallelFetch, func(i int) error {
		ref, err := u.parent.nodeStore.UploadShard(ctx, targets[i], fileID, i, fragments[i])
		if err != nil {
			return fmt.Errorf("upload shard %d to %s: %w", i, targets[i], err)
		}
		shards[i] = *ref
		return nil
	})
	for _, err := range errs {
		if err != nil {
			u.cleanup(shards)
			metrics.Uploads.WithLabelValues("failed").Inc()
			return nil, err
		}
	}

	record := &domain.FileRecord{
		ID:                fileID,
		Filename:          filename,
		OriginalSizeBytes: int64(len(payload)),
		Scheme:            scheme,
		Shards:            shards,
		CostEstimate:      costEstimate(scheme),
		UploadedAt:        time.Now().UTC(),
	}
	if err := u.parent.catalog.SaveFile(ctx, record); err != nil {
		u.cleanup(shards)
		metrics.Uploads.WithLabelValues("failed").Inc()
		return nil, err
	}

	u.parent.cluster.Invalidate()

	survivable, _ := scheme.SurvivableFailures()
	metrics.Uploads.WithLabelValues("saved").Inc()
	logger.Infow("File uploaded", "file_id", fileID, "filename", filename,
		"algorithm", scheme.Algorithm, "shards", len(shards))

	return &port.UploadResult{
		FileID:             fileID,
		Scheme:             scheme,
		Shards:             shards,
		CostEstimate:       record.CostEstimate,
		CanSurviveFailures: survivable,
	}, nil
}

func (u *uploadService) readLimited(r io.Reader) ([]byte, error) {
	limit := u.parent.cfg.App.MaxFileSize
	payload, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload payload: %w", err)
	}
	if int64(len(payload)) > limit {
		return nil, port.ErrFileTooLarge
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty upload payload")
	}
	return payload, nil
}

// placeShards picks one node per shard, restricted to currently online nodes.
// With fewer online nodes than shards the ring walk reuses nodes in order.
func (u *uploadService) placeShards(ctx context.Context, fileID string, count int) ([]string, error) {
	snap, err := u.parent.cluster.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	online := make([]string, 0, len(u.parent.cfg.Fleet.Nodes))
	for _, id := range u.parent.cfg.Fleet.Nodes {
		if snap.NodeOnline(id) {
			online = append(online, id)
		}
	}
	if len(online) == 0 {
		return nil, fmt.Errorf("no online nodes available for placement")
	}

	ring := u.parent.ring
	if len(online) != ring.Size() {
		ring = placement.NewRing(placement.DefaultVirtualNodes)
		ring.SetNodes(online)
	}

	targets := ring.Place(fileID, count)
	if len(targets) != count {
		return nil, fmt.Errorf("placement produced %d targets for %d shards", len(targets), count)
	}
	return targets, nil
}

// cleanup best-effort deletes blobs written before a failed upload. Errors
// are logged and dropped; leftover blobs are also swept on delete.
func (u *uploadService) cleanup(shards []domain.ShardRef) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, shard := range shards {
		if shard.NodeID == "" {
			continue
		}
		if err := u.parent.nodeStore.DeleteShard(ctx, shard); err != nil {
			logger.Warnw("Orphan shard cleanup failed",
				"node_id", shard.NodeID, "key", shard.ObjectKey, "err", err)
		}
	}
}

// costEstimate converts the scheme's storage overhead into the catalog's
// two-decimal cost figure. Unknown schemes cost zero.
func costEstimate(scheme domain.EncodingScheme) float64 {
	overhead, ok := scheme.StorageOverhead()
	if !ok {
		return 0
	}
	return math.Round(overhead*100) / 100
}
