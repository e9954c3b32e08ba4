package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/plusvalia/src/database"
	"github.com/username/plusvalia/src/fifo"
	"github.com/username/plusvalia/src/logger"
	"github.com/username/plusvalia/src/models"
	"github.com/username/plusvalia/src/parsers"
	"github.com/username/plusvalia/src/processors"
	"github.com/username/plusvalia/src/reports"
	"github.com/username/plusvalia/src/utils"
)

const (
	ckPositions    = "res_positions"
	ckSalesHistory = "res_sales_history"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type portfolioServiceImpl struct {
	statementProcessor *processors.StatementProcessor
	emailService       EmailService
	reportCache        *cache.Cache
}

func NewPortfolioService(
	statementProcessor *processors.StatementProcessor,
	emailService EmailService,
	reportCache *cache.Cache,
) PortfolioService {
	return &portfolioServiceImpl{
		statementProcessor: statementProcessor,
		emailService:       emailService,
		reportCache:        reportCache,
	}
}

// ProcessUpload parses one statement feed, classifies its entries, persists
// the resulting operations (skipping rows already stored by earlier
// uploads) and invalidates the report caches.
func (s *portfolioServiceImpl) ProcessUpload(fileReader io.Reader, source string) (*UploadSummary, error) {
	overallStartTime := time.Now()
	logger.L.Info("ProcessUpload START", "source", source)

	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	entries, err := parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	// Classification runs before persistence so a malformed entry rejects
	// the whole upload instead of storing a partial history.
	positions, err := s.statementProcessor.Process(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
	}

	summary := &UploadSummary{
		UploadID:      uuid.NewString(),
		EntriesParsed: len(entries),
		Instruments:   len(positions),
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.Exec(
		`INSERT INTO statement_uploads (id, source, entry_count) VALUES (?, ?, ?)`,
		summary.UploadID, source, len(entries),
	); err != nil {
		return nil, fmt.Errorf("error recording upload: %w", err)
	}

	stmt, err := dbTx.Prepare(`INSERT INTO operations (upload_id, isin, name, date, description, kind, quantity, amount, hash_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, pos := range positions {
		for _, op := range pos.Operations {
			row := operationRowFromOp(pos.Name, op)
			_, err := stmt.Exec(summary.UploadID, row.isin, row.name, row.date,
				row.description, row.kind, row.quantity, row.amount, row.hashID)
			if err != nil {
				if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
					logger.L.Debug("Skipping duplicate operation on upload", "hash_id", row.hashID)
					summary.OperationsSkipped++
					continue
				}
				return nil, fmt.Errorf("error inserting operation (isin %s): %w", row.isin, err)
			}
			summary.OperationsStored++
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing operations: %w", err)
	}

	s.InvalidateCache()

	if s.emailService != nil {
		if err := s.emailService.SendUploadSummary(summary); err != nil {
			// Reports are already durable, a failed mail is not fatal.
			logger.L.Warn("Failed to send upload summary email", "error", err)
		}
	}

	logger.L.Info("ProcessUpload END",
		"uploadID", summary.UploadID,
		"stored", summary.OperationsStored,
		"skipped", summary.OperationsSkipped,
		"duration", time.Since(overallStartTime))
	return summary, nil
}

// GetPositions rebuilds every instrument position from the recorded
// operation history and runs the FIFO engine over each. Results are cached
// until the next upload.
func (s *portfolioServiceImpl) GetPositions() ([]*models.Position, error) {
	if cached, found := s.reportCache.Get(ckPositions); found {
		logger.L.Debug("Cache hit for positions")
		return cached.([]*models.Position), nil
	}

	positions, err := s.loadPositions()
	if err != nil {
		return nil, err
	}

	for _, pos := range positions {
		fifo.Recalculate(pos)
		for _, detail := range pos.SaleDetails {
			if detail.UnmatchedQty > 0 {
				logger.L.Warn("Sale oversold the open lots; residual carries no cost basis",
					"isin", pos.ISIN,
					"saleDate", detail.Sale.RawDate,
					"unmatchedQty", detail.UnmatchedQty)
			}
		}
	}

	s.reportCache.Set(ckPositions, positions, cache.DefaultExpiration)
	return positions, nil
}

func (s *portfolioServiceImpl) GetSalesHistory() ([]reports.SalesHistoryEntry, error) {
	if cached, found := s.reportCache.Get(ckSalesHistory); found {
		logger.L.Debug("Cache hit for sales history")
		return cached.([]reports.SalesHistoryEntry), nil
	}

	positions, err := s.GetPositions()
	if err != nil {
		return nil, err
	}

	history := reports.BuildSalesHistory(positions)
	s.reportCache.Set(ckSalesHistory, history, cache.DefaultExpiration)
	return history, nil
}

func (s *portfolioServiceImpl) GetHoldings() ([]*models.Purchase, error) {
	positions, err := s.GetPositions()
	if err != nil {
		return nil, err
	}

	var holdings []*models.Purchase
	for _, pos := range positions {
		holdings = append(holdings, pos.OpenLots...)
	}
	return holdings, nil
}

func (s *portfolioServiceImpl) InvalidateCache() {
	s.reportCache.Delete(ckPositions)
	s.reportCache.Delete(ckSalesHistory)
	logger.L.Info("Invalidated report caches")
}

type operationRow struct {
	isin        string
	name        string
	date        string
	description string
	kind        string
	quantity    float64
	amount      float64
	hashID      string
}

func operationRowFromOp(name string, op models.Operation) operationRow {
	row := operationRow{name: name, kind: string(op.Kind())}
	switch op.Kind() {
	case models.KindSale:
		s := op.Sale
		row.isin, row.date, row.description = s.ISIN, s.RawDate, s.Description
		row.quantity, row.amount = s.Quantity, s.Amount
	default:
		p := op.Purchase
		row.isin, row.date, row.description = p.ISIN, p.RawDate, p.Description
		row.quantity, row.amount = p.Quantity, p.Amount
	}
	row.hashID = utils.HashStatementEntry(row.date, row.description, row.isin, row.quantity, row.amount)
	return row
}

// loadPositions reads the recorded operations in chronological order and
// groups them into positions, one per ISIN. Ordering by date (ISO strings
// sort lexicographically) keeps later backfill uploads from feeding older
// lots after newer ones; insertion id breaks same-day ties.
func (s *portfolioServiceImpl) loadPositions() ([]*models.Position, error) {
	rows, err := database.DB.Query(`SELECT isin, name, date, description, kind, quantity, amount FROM operations ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("error querying operations: %w", err)
	}
	defer rows.Close()

	var (
		positions []*models.Position
		byISIN    = make(map[string]*models.Position)
	)

	for rows.Next() {
		var row operationRow
		if err := rows.Scan(&row.isin, &row.name, &row.date, &row.description, &row.kind, &row.quantity, &row.amount); err != nil {
			return nil, fmt.Errorf("error scanning operation row: %w", err)
		}

		var op models.Operation
		if row.kind == string(models.KindSale) {
			sale, err := models.NewSale(row.isin, row.date, row.description, row.quantity, row.amount)
			if err != nil {
				return nil, fmt.Errorf("stored sale invalid: %w", err)
			}
			op = models.SaleOp(sale)
		} else {
			purchase, err := models.NewPurchase(row.isin, row.date, row.description, row.quantity, row.amount)
			if err != nil {
				return nil, fmt.Errorf("stored purchase invalid: %w", err)
			}
			op = models.PurchaseOp(purchase)
		}

		pos, ok := byISIN[row.isin]
		if !ok {
			pos = models.NewPosition(row.isin, row.name)
			byISIN[row.isin] = pos
			positions = append(positions, pos)
		}
		pos.AddOperation(op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operation rows: %w", err)
	}

	return positions, nil
}
