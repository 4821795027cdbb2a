package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/koreklar/koreskole-api/internal/models"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
	"github.com/koreklar/koreskole-api/pkg/export"
	"github.com/koreklar/koreskole-api/pkg/jobs"
	"github.com/koreklar/koreskole-api/pkg/storage"
)

const exportJobType = "request_export"

var exportHeaders = []string{"id", "kind", "name", "email", "phone", "message", "language", "status", "created_at"}

// ExportService renders customer requests to CSV or PDF in the background
// and hands out signed download links. Job state lives in memory alongside
// the in-memory queue, so exports do not survive a restart.
type ExportService struct {
	requests RequestRepository
	store    *storage.LocalStorage
	signer   *storage.SignedURLSigner
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	queue    *jobs.Queue
	logger   *zap.Logger

	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewExportService wires the export pipeline. Start must be called before
// exports are accepted.
func NewExportService(requests RequestRepository, store *storage.LocalStorage, signer *storage.SignedURLSigner, workers int, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		requests: requests,
		store:    store,
		signer:   signer,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		jobs:     make(map[string]*models.ExportJob),
	}
	s.queue = jobs.NewQueue(exportJobType, s.process, jobs.QueueConfig{
		Workers: workers,
		Logger:  logger,
	})
	return s
}

// Start launches the background workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the background workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Create enqueues a new export job for the given filter.
func (s *ExportService) Create(ctx context.Context, requestedBy string, format models.ExportFormat, filter models.RequestFilter) (*models.ExportJob, error) {
	if requestedBy == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "requester identity required")
	}
	if format != models.ExportFormatCSV && format != models.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	job := &models.ExportJob{
		ID:          uuid.NewString(),
		Format:      format,
		Filter:      filter,
		Status:      models.ExportStatusPending,
		RequestedBy: requestedBy,
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: exportJobType, Payload: job.ID}); err != nil {
		s.mu.Lock()
		delete(s.jobs, job.ID)
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.snapshot(job.ID), nil
}

// Get returns the current state of an export job.
func (s *ExportService) Get(ctx context.Context, id string) (*models.ExportJob, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return job, nil
}

// ResolveDownload validates a signed token and returns the stored file path.
func (s *ExportService) ResolveDownload(token string) (string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	return relPath, nil
}

// FilePath exposes the absolute path of a stored export.
func (s *ExportService) FilePath(relPath string) string {
	return s.store.Path(relPath)
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	id, _ := job.Payload.(string)
	state := s.snapshot(id)
	if state == nil {
		return fmt.Errorf("export job %s not tracked", id)
	}
	s.setStatus(id, models.ExportStatusRunning, "", "")

	requests, err := s.collect(ctx, state.Filter)
	if err != nil {
		s.setStatus(id, models.ExportStatusFailed, "", "failed to load requests")
		return fmt.Errorf("load requests for export %s: %w", id, err)
	}

	dataset := buildDataset(requests)
	var rendered []byte
	switch state.Format {
	case models.ExportFormatPDF:
		rendered, err = s.pdf.Render(dataset, "Customer requests")
	default:
		rendered, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.setStatus(id, models.ExportStatusFailed, "", "failed to render export")
		return fmt.Errorf("render export %s: %w", id, err)
	}

	relPath := fmt.Sprintf("requests/%s.%s", id, state.Format)
	if _, err := s.store.Save(relPath, rendered); err != nil {
		s.setStatus(id, models.ExportStatusFailed, "", "failed to store export")
		return fmt.Errorf("store export %s: %w", id, err)
	}

	token, _, err := s.signer.Generate(id, relPath)
	if err != nil {
		s.setStatus(id, models.ExportStatusFailed, "", "failed to sign download")
		return fmt.Errorf("sign export %s: %w", id, err)
	}

	s.setStatus(id, models.ExportStatusCompleted, token, "")
	s.logger.Info("export completed",
		zap.String("export_id", id),
		zap.String("format", string(state.Format)),
		zap.Int("rows", len(requests)))
	return nil
}

func (s *ExportService) snapshot(id string) *models.ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	clone := *job
	return &clone
}

func (s *ExportService) setStatus(id string, status models.ExportStatus, downloadToken, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.Status = status
	job.Error = errMsg
	if downloadToken != "" {
		job.DownloadURL = downloadToken
	}
	if status == models.ExportStatusCompleted || status == models.ExportStatusFailed {
		now := time.Now().UTC()
		job.CompletedAt = &now
	}
}

// collect pages through the repository until the filter is exhausted.
func (s *ExportService) collect(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	const pageSize = 100
	filter.PageSize = pageSize
	all := make([]models.Request, 0)
	for page := 1; ; page++ {
		filter.Page = page
		batch, _, err := s.requests.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			return all, nil
		}
	}
}

func buildDataset(requests []models.Request) export.Dataset {
	rows := make([]map[string]string, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, map[string]string{
			"id":         r.ID,
			"kind":       string(r.Kind),
			"name":       r.Name,
			"email":      r.Email,
			"phone":      phoneOrDash(r.Phone),
			"message":    r.Message,
			"language":   r.Language,
			"status":     string(r.Status),
			"created_at": r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}
