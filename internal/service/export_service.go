package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classbook/classbook-api/internal/models"
	"github.com/classbook/classbook-api/internal/repository"
	"github.com/classbook/classbook-api/internal/schedule"
	appErrors "github.com/classbook/classbook-api/pkg/errors"
	"github.com/classbook/classbook-api/pkg/export"
	"github.com/classbook/classbook-api/pkg/jobs"
	"github.com/classbook/classbook-api/pkg/storage"
)

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
}

type availabilityReporter interface {
	ForDays(ctx context.Context, days []schedule.DayWithDate) ([]schedule.DayAvailability, error)
}

// ExportConfig tunes the export pipeline.
type ExportConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
}

// CreateExportRequest asks for an availability export for the week
// starting at ReferenceDate.
type CreateExportRequest struct {
	Format        models.ExportFormat
	ReferenceDate string
}

// ExportDownload resolves a signed token into an open file.
type ExportDownload struct {
	Job      *models.ExportJob
	FilePath string
	Filename string
}

// ExportService produces weekly availability reports as downloadable CSV
// or PDF files, processed off the request path.
type ExportService struct {
	store        exportJobStore
	availability availabilityReporter
	storage      *storage.LocalStorage
	signer       *storage.SignedURLSigner
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	queue        *jobs.Queue
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewExportService wires the export pipeline and its background queue. Call
// Start before enqueueing work and Stop on shutdown.
func NewExportService(store exportJobStore, availability availabilityReporter, localStorage *storage.LocalStorage, signer *storage.SignedURLSigner, cfg ExportConfig, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		store:        store,
		availability: availability,
		storage:      localStorage,
		signer:       signer,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		metrics:      metrics,
		logger:       logger,
	}
	s.queue = jobs.NewQueue("availability-exports", s.process, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
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

// CreateJob persists a queued export and hands it to the worker pool.
func (s *ExportService) CreateJob(ctx context.Context, req CreateExportRequest, createdBy string) (*models.ExportJob, error) {
	if req.Format != models.ExportFormatCSV && req.Format != models.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if _, err := time.Parse("2006-01-02", req.ReferenceDate); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reference_date must be YYYY-MM-DD")
	}

	job := &models.ExportJob{
		ID:            uuid.NewString(),
		Format:        req.Format,
		ReferenceDate: req.ReferenceDate,
		Status:        models.ExportStatusQueued,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "availability-export"}); err != nil {
		s.markFailed(ctx, job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return job, nil
}

// GetStatus returns the current state of a job, including the signed
// download URL once finished.
func (s *ExportService) GetStatus(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch export job")
	}
	return job, nil
}

// ResolveDownload validates a signed token and returns the file it points
// to.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token")
	}
	job, err := s.GetStatus(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.ExportStatusFinished || job.FilePath == nil || *job.FilePath != relPath {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file not available")
	}
	return &ExportDownload{
		Job:      job,
		FilePath: s.storage.Path(relPath),
		Filename: relPath,
	}, nil
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	started := time.Now()
	defer func() { s.metrics.ObserveExportJob(time.Since(started)) }()

	record, err := s.store.GetByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", job.ID, err)
	}

	processing := models.ExportStatusProcessing
	if err := s.store.Update(ctx, record.ID, repository.UpdateExportJobParams{Status: &processing}); err != nil {
		return fmt.Errorf("mark export job processing: %w", err)
	}

	payload, filename, err := s.render(ctx, record)
	if err != nil {
		s.markFailed(ctx, record.ID, err)
		return err
	}

	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.markFailed(ctx, record.ID, err)
		return fmt.Errorf("persist export file: %w", err)
	}

	url, _, err := s.signer.Generate(record.ID, relPath)
	if err != nil {
		s.markFailed(ctx, record.ID, err)
		return fmt.Errorf("sign export url: %w", err)
	}

	finished := models.ExportStatusFinished
	completedAt := time.Now().UTC()
	if err := s.store.Update(ctx, record.ID, repository.UpdateExportJobParams{
		Status:      &finished,
		FilePath:    &relPath,
		ResultURL:   &url,
		CompletedAt: &completedAt,
	}); err != nil {
		return fmt.Errorf("finalize export job: %w", err)
	}

	s.logger.Info("export job finished",
		zap.String("job_id", record.ID),
		zap.String("format", string(record.Format)),
		zap.String("file", relPath))
	return nil
}

func (s *ExportService) render(ctx context.Context, job *models.ExportJob) ([]byte, string, error) {
	start, err := time.Parse("2006-01-02", job.ReferenceDate)
	if err != nil {
		return nil, "", fmt.Errorf("parse reference date: %w", err)
	}

	reports, err := s.availability.ForDays(ctx, schedule.NextSevenDays(start))
	if err != nil {
		return nil, "", fmt.Errorf("compute availability: %w", err)
	}
	dataset := availabilityDataset(reports)

	filename := fmt.Sprintf("availability-%s-%s.%s", job.ReferenceDate, job.ID[:8], job.Format)
	switch job.Format {
	case models.ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		return payload, filename, err
	case models.ExportFormatPDF:
		title := fmt.Sprintf("Availability for week of %s", job.ReferenceDate)
		payload, err := s.pdf.Render(dataset, title)
		return payload, filename, err
	default:
		return nil, "", fmt.Errorf("unsupported export format %q", job.Format)
	}
}

func (s *ExportService) markFailed(ctx context.Context, id string, cause error) {
	failed := models.ExportStatusFailed
	message := cause.Error()
	completedAt := time.Now().UTC()
	if err := s.store.Update(ctx, id, repository.UpdateExportJobParams{
		Status:       &failed,
		ErrorMessage: &message,
		CompletedAt:  &completedAt,
	}); err != nil {
		s.logger.Error("failed to mark export job as failed", zap.String("job_id", id), zap.Error(err))
	}
}

func availabilityDataset(reports []schedule.DayAvailability) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"day", "hour", "number_of_spots", "available_spots"},
	}
	for _, report := range reports {
		for _, hour := range report.Hours {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"day":             report.Day,
				"hour":            hour.Hour,
				"number_of_spots": strconv.Itoa(hour.NumberOfSpots),
				"available_spots": strconv.Itoa(hour.AvailableSpots),
			})
		}
	}
	return dataset
}
