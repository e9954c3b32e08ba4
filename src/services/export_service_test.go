package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/plusvalia/src/fifo"
	"github.com/username/plusvalia/src/logger"
	"github.com/username/plusvalia/src/models"
	"github.com/username/plusvalia/src/reports"
)

func TestExportPortfolioWritesDatedFile(t *testing.T) {
	logger.InitLogger("error")
	outDir := filepath.Join(t.TempDir(), "output")

	pos := models.NewPosition("US0001", "Acme Corp")
	p, err := models.NewPurchase("US0001", "2025-01-02", "Buy Acme", 10, 101)
	require.NoError(t, err)
	pos.AddOperation(models.PurchaseOp(p))
	fifo.Recalculate(pos)

	path, err := NewExportService(outDir).ExportPortfolio([]*models.Position{pos})
	require.NoError(t, err)

	assert.Equal(t, outDir, filepath.Dir(path))
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}\.json$`, filepath.Base(path))

	payload, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "US0001", decoded[0]["isin"])
}

func TestExportSalesHistoryWritesTimestampedFile(t *testing.T) {
	logger.InitLogger("error")
	outDir := filepath.Join(t.TempDir(), "output")

	path, err := NewExportService(outDir).ExportSalesHistory([]reports.SalesHistoryEntry{})
	require.NoError(t, err)
	assert.Regexp(t, `^sales_history_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.json$`, filepath.Base(path))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
