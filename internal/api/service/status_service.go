package service

import (
	"context"

	"github.com/anthanhphan/gosdk/logger"

	"github.com/cosmeon/cosmeon/internal/api/metrics"
	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/domain"
)

// statusService derives the redundancy view of one file. It never persists
// anything: status is recomputed on every read from a fresh snapshot.
type statusService struct {
	parent *FileServiceImpl
}

func newStatusService(parent *FileServiceImpl) *statusService {
	return &statusService{parent: parent}
}

// load fetches the record and a registry snapshot for one file.
func (s *statusService) load(ctx context.Context, fileID string) (*domain.FileRecord, domain.Snapshot, error) {
	file, err := s.parent.catalog.GetFile(ctx, fileID)
	if err != nil {
		return nil, domain.Snapshot{}, err
	}
	snap, err := s.parent.cluster.Snapshot(ctx)
	if err != nil {
		return nil, domain.Snapshot{}, err
	}
	return file, snap, nil
}

func (s *statusService) fileStatus(ctx context.Context, fileID string) (*port.FileStatus, error) {
	file, snap, err := s.load(ctx, fileID)
	if err != nil {
		return nil, err
	}

	health := domain.Evaluate(*file, snap)
	if health.SchemeIncomplete {
		metrics.UnknownHealth.Inc()
		logger.Warnw("File scheme configuration incomplete, health reported unknown",
			"file_id", fileID, "algorithm", file.Scheme.Algorithm)
	}

	status := &port.FileStatus{
		FileID:   file.ID,
		Filename: file.Filename,
		Scheme:   file.Scheme,
		Shards:   make([]port.ShardStatus, 0, len(file.Shards)),
		Status:   health,
	}
	for _, shard := range file.Shards {
		status.Shards = append(status.Shards, port.ShardStatus{
			Index:            shard.Index,
			NodeID:           shard.NodeID,
			Online:           snap.NodeOnline(shard.NodeID),
			SizeBytes:        shard.SizeBytes,
			SimulatedFailure: s.parent.sim.Failed(shard.NodeID),
		})
	}
	return status, nil
}
