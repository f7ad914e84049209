package service

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classbook/classbook-api/internal/models"
	"github.com/classbook/classbook-api/internal/repository"
	"github.com/classbook/classbook-api/internal/schedule"
	"github.com/classbook/classbook-api/pkg/jobs"
	"github.com/classbook/classbook-api/pkg/storage"
)

type exportStoreStub struct {
	jobs    map[string]*models.ExportJob
	updates []repository.UpdateExportJobParams
}

func newExportStoreStub() *exportStoreStub {
	return &exportStoreStub{jobs: map[string]*models.ExportJob{}}
}

func (s *exportStoreStub) Create(ctx context.Context, job *models.ExportJob) error {
	s.jobs[job.ID] = job
	return nil
}

func (s *exportStoreStub) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	if job, ok := s.jobs[id]; ok {
		copied := *job
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *exportStoreStub) Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error {
	job, ok := s.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.updates = append(s.updates, params)
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.FilePath != nil {
		job.FilePath = params.FilePath
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.CompletedAt != nil {
		job.CompletedAt = params.CompletedAt
	}
	return nil
}

type reporterStub struct {
	reports []schedule.DayAvailability
	err     error
}

func (s *reporterStub) ForDays(ctx context.Context, days []schedule.DayWithDate) ([]schedule.DayAvailability, error) {
	return s.reports, s.err
}

func newTestExportService(t *testing.T, store *exportStoreStub, reporter *reporterStub) *ExportService {
	t.Helper()
	localStorage, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("export-secret", time.Hour)
	return NewExportService(store, reporter, localStorage, signer, ExportConfig{WorkerConcurrency: 1, WorkerRetries: 1}, nil, nil)
}

func TestExportServiceCreateJobRejectsBadInput(t *testing.T) {
	svc := newTestExportService(t, newExportStoreStub(), &reporterStub{})

	_, err := svc.CreateJob(context.Background(), CreateExportRequest{Format: "xlsx", ReferenceDate: "2024-01-15"}, "admin@example.com")
	require.Error(t, err)

	_, err = svc.CreateJob(context.Background(), CreateExportRequest{Format: models.ExportFormatCSV, ReferenceDate: "15/01/2024"}, "admin@example.com")
	require.Error(t, err)
}

func TestExportServiceProcessProducesCSVAndFinishesJob(t *testing.T) {
	store := newExportStoreStub()
	reporter := &reporterStub{reports: []schedule.DayAvailability{
		{
			Day: "2024-01-15", NumberOfSpots: 2, AvailableSpots: 1,
			Hours: []schedule.HourAvailability{{Hour: "18:00", NumberOfSpots: 2, AvailableSpots: 1}},
		},
	}}
	svc := newTestExportService(t, store, reporter)

	job := &models.ExportJob{
		ID:            "11111111-2222-3333-4444-555555555555",
		Format:        models.ExportFormatCSV,
		ReferenceDate: "2024-01-15",
		Status:        models.ExportStatusQueued,
		CreatedBy:     "admin@example.com",
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, store.Create(context.Background(), job))

	err := svc.process(context.Background(), jobs.Job{ID: job.ID, Type: "availability-export"})
	require.NoError(t, err)

	finished := store.jobs[job.ID]
	assert.Equal(t, models.ExportStatusFinished, finished.Status)
	require.NotNil(t, finished.FilePath)
	require.NotNil(t, finished.ResultURL)
	require.NotNil(t, finished.CompletedAt)

	payload, err := os.ReadFile(svc.storage.Path(*finished.FilePath))
	require.NoError(t, err)
	assert.Contains(t, string(payload), "day,hour,number_of_spots,available_spots")
	assert.Contains(t, string(payload), "2024-01-15,18:00,2,1")
}

func TestExportServiceProcessMarksFailureWhenReportingFails(t *testing.T) {
	store := newExportStoreStub()
	reporter := &reporterStub{err: assert.AnError}
	svc := newTestExportService(t, store, reporter)

	job := &models.ExportJob{
		ID:            "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
		Format:        models.ExportFormatPDF,
		ReferenceDate: "2024-01-15",
		Status:        models.ExportStatusQueued,
	}
	require.NoError(t, store.Create(context.Background(), job))

	err := svc.process(context.Background(), jobs.Job{ID: job.ID, Type: "availability-export"})
	require.Error(t, err)

	failed := store.jobs[job.ID]
	assert.Equal(t, models.ExportStatusFailed, failed.Status)
	require.NotNil(t, failed.ErrorMessage)
}

func TestExportServiceResolveDownloadValidatesToken(t *testing.T) {
	store := newExportStoreStub()
	svc := newTestExportService(t, store, &reporterStub{})

	_, err := svc.ResolveDownload(context.Background(), "not-a-token")
	require.Error(t, err)
}
