package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/username/plusvalia/src/logger"
	"github.com/username/plusvalia/src/models"
	"github.com/username/plusvalia/src/reports"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ExportService writes the computed reports to dated JSON files in the
// configured output directory.
type ExportService struct {
	outputDir string
}

func NewExportService(outputDir string) *ExportService {
	return &ExportService{outputDir: outputDir}
}

// ExportPortfolio writes the full per-instrument report tree to
// <outputDir>/<YYYY-MM-DD>.json and returns the file path.
func (s *ExportService) ExportPortfolio(positions []*models.Position) (string, error) {
	fileName := time.Now().Format(models.DateLayout) + ".json"
	return s.writeJSON(fileName, positions)
}

// ExportSalesHistory writes the flattened sales history to a timestamped
// file so successive exports do not overwrite each other.
func (s *ExportService) ExportSalesHistory(history []reports.SalesHistoryEntry) (string, error) {
	fileName := fmt.Sprintf("sales_history_%s.json", time.Now().Format("2006-01-02_15-04-05"))
	return s.writeJSON(fileName, history)
}

func (s *ExportService) writeJSON(fileName string, data interface{}) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("error creating output directory %s: %w", s.outputDir, err)
	}

	payload, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return "", fmt.Errorf("error serializing export: %w", err)
	}

	filePath := filepath.Join(s.outputDir, fileName)
	if err := os.WriteFile(filePath, payload, 0o644); err != nil {
		return "", fmt.Errorf("error writing export file %s: %w", filePath, err)
	}

	logger.L.Info("Export written", "path", filePath, "bytes", len(payload))
	return filePath, nil
}
