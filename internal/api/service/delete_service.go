package service

import (
	"context"
	"fmt"

	"github.com/anthanhphan/gosdk/logger"

	"github.com/cosmeon/cosmeon/internal/api/metrics"
	"github.com/cosmeon/cosmeon/internal/api/port"
)

// deleteService removes a file's blobs and its catalog record. Shard-level
// failures are collected, not fatal: the catalog record still goes away so
// the id reads as absent afterwards.
type deleteService struct {
	parent *FileServiceImpl
}

func newDeleteService(parent *FileServiceImpl) *deleteService {
	return &deleteService{parent: parent}
}

func (d *deleteService) deleteFile(ctx context.Context, fileID string) (*port.DeleteReport, error) {
	if !d.parent.inflight.acquire(fileID) {
		metrics.Deletes.WithLabelValues("rejected").Inc()
		return nil, port.ErrOperationInFlight
	}
	defer d.parent.inflight.release(fileID)

	report, err := d.deleteLocked(ctx, fileID)
	if err != nil {
		metrics.Deletes.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.Deletes.WithLabelValues("deleted").Inc()
	return report, nil
}

// deleteLocked runs the actual removal; the caller holds the in-flight claim.
func (d *deleteService) deleteLocked(ctx context.Context, fileID string) (*port.DeleteReport, error) {
	file, err := d.parent.catalog.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	report := &port.DeleteReport{FileID: fileID}
	swept := make(map[string]struct{}, len(file.Shards))
	for _, shard := range file.Shards {
		if err := d.parent.nodeStore.DeleteShard(ctx, shard); err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("shard %d on %s: %v", shard.Index, shard.NodeID, err))
			continue
		}
		report.ShardsDeleted++
		swept[shard.NodeID] = struct{}{}
	}

	// Sweep leftover blobs by prefix, covering shards the catalog lost
	// track of. Nodes already visited may still hold orphans.
	for _, nodeID := range d.parent.cfg.Fleet.Nodes {
		n, err := d.parent.nodeStore.SweepFileShards(ctx, nodeID, fileID)
		if err != nil {
			if _, visited := swept[nodeID]; !visited {
				report.Errors = append(report.Errors,
					fmt.Sprintf("sweep %s: %v", nodeID, err))
			}
			continue
		}
		report.ShardsDeleted += n
	}

	if err := d.parent.catalog.DeleteFile(ctx, fileID); err != nil {
		return nil, err
	}
	d.parent.cluster.Invalidate()

	logger.Infow("File deleted", "file_id", fileID,
		"shards_deleted", report.ShardsDeleted, "errors", len(report.Errors))
	return report, nil
}

// deleteAll sweeps the whole catalog, one file at a time, collecting per-file
// failures instead of aborting.
func (d *deleteService) deleteAll(ctx context.Context) (*port.PurgeReport, error) {
	files, err := d.parent.catalog.ListFiles(ctx)
	if err != nil {
		return nil, err
	}

	report := &port.PurgeReport{TotalFiles: len(files)}
	for _, file := range files {
		sub, err := d.deleteFile(ctx, file.ID)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", file.ID, err))
			continue
		}
		report.DeletedFiles++
		report.ShardsDeleted += sub.ShardsDeleted
		report.Errors = append(report.Errors, sub.Errors...)
	}

	logger.Infow("Catalog purge finished", "total", report.TotalFiles,
		"deleted", report.DeletedFiles, "errors", len(report.Errors))
	return report, nil
}
