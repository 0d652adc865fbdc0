package http_handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	sdklogger "github.com/anthanhphan/gosdk/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cosmeon/cosmeon/internal/api/config"
	"github.com/cosmeon/cosmeon/internal/api/port"
	"github.com/cosmeon/cosmeon/internal/domain"
)

type Server struct {
	app     *fiber.App
	cfg     *config.Config
	cluster port.ClusterService
	sim     port.SimulationService
	files   port.FileService
}

func NewServer(cfg *config.Config, cluster port.ClusterService, sim port.SimulationService, files port.FileService) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:         int(cfg.App.MaxFileSize),
		StreamRequestBody: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	s := &Server{
		app:     app,
		cfg:     cfg,
		cluster: cluster,
		sim:     sim,
		files:   files,
	}

	// Routes
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/", s.handleInfo)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	s.app.Get("/nodes/status", s.handleNodesStatus)
	s.app.Get("/nodes/failures", s.handleFailures)
	s.app.Post("/nodes/failures/clear", s.handleClearFailures)
	s.app.Post("/nodes/:id/simulate-failure", s.handleSimulateFailure)
	s.app.Post("/nodes/:id/restore", s.handleRestore)

	s.app.Get("/cluster/health", s.handleClusterHealth)

	s.app.Get("/files", s.handleListFiles)
	s.app.Post("/files", s.handleUpload)
	s.app.Delete("/files", s.handleDeleteAll)

	s.app.Get("/file/:id/status", s.handleFileStatus)
	s.app.Get("/file/:id/reconstruct-info", s.handleReconstructInfo)
	s.app.Get("/file/:id/reconstruct", s.handleReconstruct)
	s.app.Delete("/file/:id", s.handleDelete)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Addr)
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.Shutdown()
}

func (s *Server) sendJSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// sendError maps service errors onto the HTTP surface: 404 unknown ids,
// 409 in-flight conflicts and blocked reconstructions, 502 upstream failures
// with the upstream detail surfaced verbatim.
func (s *Server) sendError(c *fiber.Ctx, err error) error {
	var upstream *port.UpstreamError
	switch {
	case errors.Is(err, port.ErrFileNotFound), errors.Is(err, port.ErrNodeNotFound):
		return s.sendJSONError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, port.ErrOperationInFlight):
		return s.sendJSONError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, port.ErrNotReconstructable):
		return s.sendJSONError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, port.ErrFileTooLarge):
		return s.sendJSONError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.As(err, &upstream):
		return s.sendJSONError(c, fiber.StatusBadGateway, upstream.Error())
	default:
		return s.sendJSONError(c, fiber.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "cosmeon",
		"status":  "running",
	})
}

func (s *Server) handleNodesStatus(c *fiber.Ctx) error {
	status, err := s.cluster.NodesStatus(c.Context())
	if err != nil {
		sdklogger.Errorw("Nodes status failed", "error", err.Error())
		return s.sendError(c, err)
	}
	return c.JSON(status)
}

func (s *Server) handleClusterHealth(c *fiber.Ctx) error {
	summary, err := s.cluster.Summary(c.Context())
	if err != nil {
		sdklogger.Errorw("Cluster health failed", "error", err.Error())
		return s.sendError(c, err)
	}
	return c.JSON(summary)
}

func (s *Server) handleFailures(c *fiber.Ctx) error {
	return c.JSON(s.sim.FailureInfo())
}

func (s *Server) handleClearFailures(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"restored": s.sim.ClearAll(),
	})
}

func (s *Server) handleSimulateFailure(c *fiber.Ctx) error {
	res, err := s.sim.SimulateFailure(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(res)
}

func (s *Server) handleRestore(c *fiber.Ctx) error {
	res, err := s.sim.Restore(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(res)
}

func (s *Server) handleListFiles(c *fiber.Ctx) error {
	files, err := s.files.ListFiles(c.Context())
	if err != nil {
		sdklogger.Errorw("File listing failed", "error", err.Error())
		return s.sendError(c, err)
	}
	if files == nil {
		files = []domain.FileRecord{}
	}
	return c.JSON(files)
}

func (s *Server) handleFileStatus(c *fiber.Ctx) error {
	status, err := s.files.FileStatus(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(status)
}

func (s *Server) handleReconstructInfo(c *fiber.Ctx) error {
	info, err := s.files.ReconstructInfo(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(info)
}

func (s *Server) handleReconstruct(c *fiber.Ctx) error {
	fileID := c.Params("id")

	var buf bytes.Buffer
	record, err := s.files.Reconstruct(c.Context(), fileID, &buf)
	if err != nil {
		sdklogger.Warnw("Reconstruction failed", "file_id", fileID, "error", err.Error())
		return s.sendError(c, err)
	}

	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Filename))
	c.Set("Content-Type", "application/octet-stream")
	return c.Send(buf.Bytes())
}

func (s *Server) handleDelete(c *fiber.Ctx) error {
	report, err := s.files.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(report)
}

func (s *Server) handleDeleteAll(c *fiber.Ctx) error {
	report, err := s.files.DeleteAll(c.Context())
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(report)
}

func (s *Server) handleUpload(c *fiber.Ctx) error {
	contentType := c.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Content-Type must be multipart/form-data")
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid Content-Type")
	}
	boundary, ok := params["boundary"]
	if !ok {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Missing boundary in Content-Type")
	}

	// Use raw request body stream
	bodyStream := c.Context().RequestBodyStream()
	if bodyStream == nil {
		bodyStream = bytes.NewReader(c.Body())
	}
	mr := multipart.NewReader(bodyStream, boundary)

	var fileName string
	var src io.Reader
	scheme := domain.EncodingScheme{}

	// The scheme field must precede the file part so the payload can stream
	// straight into the service.
	for src == nil {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return s.sendJSONError(c, fiber.StatusBadRequest, fmt.Sprintf("Failed to read multipart: %v", err))
		}

		if part.FileName() != "" {
			fileName = part.FileName()
			src = part
			break
		}

		if part.FormName() == "scheme" {
			if err := json.NewDecoder(part).Decode(&scheme); err != nil {
				_ = part.Close()
				return s.sendJSONError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid scheme field: %v", err))
			}
		}
		_ = part.Close()
	}

	if src == nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Missing 'file' part")
	}
	if scheme.Algorithm == "" {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Missing 'scheme' field")
	}

	result, err := s.files.Upload(c.Context(), fileName, scheme, src)
	if err != nil {
		sdklogger.Errorw("Upload failed", "file_name", fileName, "error", err.Error())
		if errors.Is(err, domain.ErrInvalidScheme) {
			return s.sendJSONError(c, fiber.StatusBadRequest, err.Error())
		}
		return s.sendError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}
