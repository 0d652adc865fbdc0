package service

import (
	"context"
	"io"

	"github.com/cosmeon/cosmeon/internal/api/config"
	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/domain"
	"github.com/cosmeon/cosmeon/pkg/idgen"
	"github.com/cosmeon/cosmeon/pkg/placement"
)

// FileServiceImpl is the facade that wires use-case services for file
// operations. Reconstruct and Delete share one in-flight registry so the two
// cannot race on the same file.
type FileServiceImpl struct {
	cfg       *config.Config
	catalog   port.FileCatalog
	nodeStore port.NodeStore
	encoder   port.Encoder
	cluster   port.ClusterService
	sim       *SimulationServiceImpl
	ring      *placement.Ring
	idGen     *idgen.Generator
	inflight  *inflightRegistry

	statusUseCase      *statusService
	reconstructUseCase *reconstructService
	uploadUseCase      *uploadService
	deleteUseCase      *deleteService
}

// Ensure FileServiceImpl implements port.FileService.
var _ port.FileService = (*FileServiceImpl)(nil)

// NewFileService builds the file service facade and all use-case services.
func NewFileService(cfg *config.Config, catalog port.FileCatalog, nodeStore port.NodeStore, encoder port.Encoder, cluster port.ClusterService, sim *SimulationServiceImpl, ring *placement.Ring, idGen *idgen.Generator) *FileServiceImpl {
	svc := &FileServiceImpl{
		cfg:       cfg,
		catalog:   catalog,
		nodeStore: nodeStore,
		encoder:   encoder,
		cluster:   cluster,
		sim:       sim,
		ring:      ring,
		idGen:     idGen,
		inflight:  newInflightRegistry(),
	}

	svc.statusUseCase = newStatusService(svc)
	svc.reconstructUseCase = newReconstructService(svc, svc.statusUseCase)
	svc.uploadUseCase = newUploadService(svc)
	svc.deleteUseCase = newDeleteService(svc)

	return svc
}

// ListFiles returns every catalog record.
func (s *FileServiceImpl) ListFiles(ctx context.Context) ([]domain.FileRecord, error) {
	return s.catalog.ListFiles(ctx)
}

// FileStatus delegates to the status use-case service.
func (s *FileServiceImpl) FileStatus(ctx context.Context, fileID string) (*port.FileStatus, error) {
	return s.statusUseCase.fileStatus(ctx, fileID)
}

// ReconstructInfo delegates feasibility computation to the reconstruct
// use-case service.
func (s *FileServiceImpl) ReconstructInfo(ctx context.Context, fileID string) (*port.ReconstructInfo, error) {
	return s.reconstructUseCase.reconstructInfo(ctx, fileID)
}

// Reconstruct delegates the rebuild to the reconstruct use-case service.
func (s *FileServiceImpl) Reconstruct(ctx context.Context, fileID string, w io.Writer) (*domain.FileRecord, error) {
	return s.reconstructUseCase.reconstruct(ctx, fileID, w)
}

// Upload delegates to the upload use-case service.
func (s *FileServiceImpl) Upload(ctx context.Context, filename string, scheme domain.EncodingScheme, r io.Reader) (*port.UploadResult, error) {
	return s.uploadUseCase.upload(ctx, filename, scheme, r)
}

// Delete delegates to the delete use-case service.
func (s *FileServiceImpl) Delete(ctx context.Context, fileID string) (*port.DeleteReport, error) {
	return s.deleteUseCase.deleteFile(ctx, fileID)
}

// DeleteAll delegates the full catalog sweep to the delete use-case service.
func (s *FileServiceImpl) DeleteAll(ctx context.Context) (*port.PurgeReport, error) {
	return s.deleteUseCase.deleteAll(ctx)
}
