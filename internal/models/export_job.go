package models

import "time"

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus tracks asynchronous export progress.
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "PENDING"
	ExportStatusRunning   ExportStatus = "RUNNING"
	ExportStatusCompleted ExportStatus = "COMPLETED"
	ExportStatusFailed    ExportStatus = "FAILED"
)

// ExportJob describes one requested customer-request export.
type ExportJob struct {
	ID          string        `json:"id"`
	Format      ExportFormat  `json:"format"`
	Filter      RequestFilter `json:"-"`
	Status      ExportStatus  `json:"status"`
	DownloadURL string        `json:"download_url,omitempty"`
	Error       string        `json:"error,omitempty"`
	RequestedBy string        `json:"requested_by"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}
