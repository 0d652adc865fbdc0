package service

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/anthanhphan/gosdk/logger"

	"github.com/cosmeon/cosmeon/internal/api/metrics"
	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/domain"
	"github.com/cosmeon/cosmeon/pkg/resilience"
)

// reconstructService rebuilds file payloads from surviving shards. The
// feasibility check always runs first: a blocked reconstruction never touches
// the node store.
type reconstructService struct {
	parent *FileServiceImpl
	status *statusService
}

func newReconstructService(parent *FileServiceImpl, status *statusService) *reconstructService {
	return &reconstructService{parent: parent, status: status}
}

// reconstructInfo computes the feasibility descriptor for one file without
// downloading anything.
func (s *reconstructService) reconstructInfo(ctx context.Context, fileID string) (*port.ReconstructInfo, error) {
	file, snap, err := s.status.load(ctx, fileID)
	if err != nil {
		return nil, err
	}
	info := buildReconstructInfo(file, s.availableShards(ctx, file, snap))
	if !info.CanReconstruct {
		logger.Infow("Reconstruction currently blocked",
			"file_id", fileID, "available", info.AvailableShards, "needed", info.NeededShards)
	}
	return info, nil
}

// availableShards checks every shard in parallel. A shard counts as available
// only when its node is online in the snapshot and the blob answers a HEAD;
// a live node that lost the blob is as missing as an offline one.
func (s *reconstructService) availableShards(ctx context.Context, file *domain.FileRecord, snap domain.Snapshot) []bool {
	avail := make([]bool, len(file.Shards))
	resilience.ForEach(ctx, len(file.Shards), s.parent.cfg.App.ParallelFetch, func(i int) error {
		shard := file.Shards[i]
		if !snap.NodeOnline(shard.NodeID) {
			return nil
		}
		if err := s.parent.nodeStore.HeadShard(ctx, shard); err != nil {
			logger.Warnw("Shard blob unreachable on live node",
				"file_id", file.ID, "shard_index", shard.Index, "node_id", shard.NodeID, "err", err)
			return nil
		}
		avail[i] = true
		return nil
	})
	return avail
}

func buildReconstructInfo(file *domain.FileRecord, avail []bool) *port.ReconstructInfo {
	info := &port.ReconstructInfo{
		FileID:            file.ID,
		Filename:          file.Filename,
		TotalShards:       len(file.Shards),
		OriginalSizeBytes: file.OriginalSizeBytes,
	}
	for i, shard := range file.Shards {
		if avail[i] {
			info.AvailableShards++
		} else {
			info.MissingShardIndices = append(info.MissingShardIndices, shard.Index)
		}
	}
	sort.Ints(info.MissingShardIndices)

	needed, ok := file.Scheme.NeededShards()
	if !ok {
		// Quorum unknowable without scheme config; refuse rather than guess.
		return info
	}
	info.NeededShards = needed
	info.CanReconstruct = info.AvailableShards >= needed
	if !info.CanReconstruct {
		info.Shortfall = needed - info.AvailableShards
	}
	return info
}

// reconstruct streams the rebuilt payload to w. At most one reconstruct or
// delete runs per file id; a concurrent request is rejected, not queued.
func (s *reconstructService) reconstruct(ctx context.Context, fileID string, w io.Writer) (*domain.FileRecord, error) {
	if !s.parent.inflight.acquire(fileID) {
		metrics.Reconstructions.WithLabelValues("rejected").Inc()
		return nil, port.ErrOperationInFlight
	}
	defer s.parent.inflight.release(fileID)

	file, snap, err := s.status.load(ctx, fileID)
	if err != nil {
		metrics.Reconstructions.WithLabelValues("failed").Inc()
		return nil, err
	}

	avail := s.availableShards(ctx, file, snap)
	info := buildReconstructInfo(file, avail)
	if !info.CanReconstruct {
		metrics.Reconstructions.WithLabelValues("blocked").Inc()
		return nil, fmt.Errorf("%w: have %d of %d needed shards",
			port.ErrNotReconstructable, info.AvailableShards, info.NeededShards)
	}

	var payload []byte
	switch file.Scheme.Algorithm {
	case domain.AlgorithmReplication:
		payload, err = s.fetchAnyReplica(ctx, file, avail)
	default:
		payload, err = s.decodeFromShards(ctx, file, avail)
	}
	if err != nil {
		metrics.Reconstructions.WithLabelValues("failed").Inc()
		return nil, err
	}

	if _, err := w.Write(payload); err != nil {
		metrics.Reconstructions.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("write reconstructed payload: %w", err)
	}

	metrics.Reconstructions.WithLabelValues("saved").Inc()
	logger.Infow("File reconstructed", "file_id", fileID, "bytes", len(payload))
	return file, nil
}

// fetchAnyReplica returns the first replica that downloads successfully.
// Every replica holds the full payload under replication.
func (s *reconstructService) fetchAnyReplica(ctx context.Context, file *domain.FileRecord, avail []bool) ([]byte, error) {
	var lastErr error
	for i, shard := range file.Shards {
		if !avail[i] {
			continue
		}
		data, err := s.parent.nodeStore.DownloadShard(ctx, shard)
		if err != nil {
			lastErr = err
			logger.Warnw("Replica download failed, trying next",
				"file_id", file.ID, "shard_index", shard.Index, "node_id", shard.NodeID, "err", err)
			continue
		}
		return data, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("all replicas failed: %w", lastErr)
	}
	return nil, port.ErrNotReconstructable
}

// decodeFromShards downloads every reachable shard in parallel and hands the
// set to the encoding service. Missing shards travel as nil so the decoder
// knows their positions.
func (s *reconstructService) decodeFromShards(ctx context.Context, file *domain.FileRecord, avail []bool) ([]byte, error) {
	shards := make([]port.EncodedShard, len(file.Shards))
	errs := resilience.ForEach(ctx, len(file.Shards), s.parent.cfg.App.ParallelFetch, func(i int) error {
		shard := file.Shards[i]
		shards[i] = port.EncodedShard{Index: shard.Index}
		if !avail[i] {
			return nil
		}
		data, err := s.parent.nodeStore.DownloadShard(ctx, shard)
		if err != nil {
			// One lost shard may still leave a quorum; the decoder decides.
			logger.Warnw("Shard download failed",
				"file_id", file.ID, "shard_index", shard.Index, "node_id", shard.NodeID, "err", err)
			return nil
		}
		shards[i].Data = data
		return nil
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return s.parent.encoder.Decode(ctx, file.Scheme, file.OriginalSizeBytes, shards)
}
