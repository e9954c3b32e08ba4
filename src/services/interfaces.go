package services

import (
	"errors"
	"io"

	"github.com/username/plusvalia/src/models"
	"github.com/username/plusvalia/src/reports"
)

var (
	ErrParsingFailed    = errors.New("statement parsing failed")
	ErrProcessingFailed = errors.New("statement processing failed")
)

// UploadSummary describes the outcome of one statement upload.
type UploadSummary struct {
	UploadID          string `json:"upload_id"`
	EntriesParsed     int    `json:"entries_parsed"`
	OperationsStored  int    `json:"operations_stored"`
	OperationsSkipped int    `json:"operations_skipped"` // duplicates of earlier uploads
	Instruments       int    `json:"instruments"`
}

// PortfolioService owns the parse -> classify -> FIFO pipeline over the
// recorded statement history.
type PortfolioService interface {
	ProcessUpload(fileReader io.Reader, source string) (*UploadSummary, error)
	GetPositions() ([]*models.Position, error)
	GetSalesHistory() ([]reports.SalesHistoryEntry, error)
	GetHoldings() ([]*models.Purchase, error)
	InvalidateCache()
}

// EmailService sends the post-upload processing summary.
type EmailService interface {
	SendUploadSummary(summary *UploadSummary) error
}
