package models

import "time"

// ExportFormat enumerates supported export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus captures background export lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob is the persisted metadata of an asynchronous availability
// export.
type ExportJob struct {
	ID            string       `db:"id" json:"id"`
	Format        ExportFormat `db:"format" json:"format"`
	ReferenceDate string       `db:"reference_date" json:"reference_date"`
	Status        ExportStatus `db:"status" json:"status"`
	FilePath      *string      `db:"file_path" json:"-"`
	ResultURL     *string      `db:"result_url" json:"result_url,omitempty"`
	ErrorMessage  *string      `db:"error_message" json:"error_message,omitempty"`
	CreatedBy     string       `db:"created_by" json:"created_by"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	CompletedAt   *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
}
