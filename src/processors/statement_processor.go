package processors

import (
	"fmt"
	"strings"

	"github.com/username/plusvalia/src/models"
	"github.com/username/plusvalia/src/security/validation"
)

// sellToken classifies an entry: descriptions beginning with it are sales,
// everything else is a purchase.
const sellToken = "Sell"

// StatementProcessor turns normalized statement entries into per-instrument
// positions with ordered operation histories. Entries are taken in feed
// order, which the statement exporter guarantees to be chronological.
type StatementProcessor struct {
	allowedTypes         map[string]struct{}
	excludedISINPrefixes []string
}

func NewStatementProcessor(allowedTypes, excludedISINPrefixes []string) *StatementProcessor {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = struct{}{}
	}
	return &StatementProcessor{
		allowedTypes:         allowed,
		excludedISINPrefixes: excludedISINPrefixes,
	}
}

// Process filters and classifies the entries and groups them into
// positions, one per ISIN, created in order of first appearance. It fails
// on the first entry whose operation cannot be constructed.
func (p *StatementProcessor) Process(entries []models.StatementEntry) ([]*models.Position, error) {
	var (
		positions []*models.Position
		byISIN    = make(map[string]*models.Position)
	)

	for i, entry := range entries {
		if !p.keep(entry) {
			continue
		}

		op, err := buildOperation(entry)
		if err != nil {
			return nil, fmt.Errorf("statement entry %d: %w", i, err)
		}

		pos, ok := byISIN[entry.ISIN]
		if !ok {
			pos = models.NewPosition(entry.ISIN, sanitize(entry.Name))
			byISIN[entry.ISIN] = pos
			positions = append(positions, pos)
		}
		pos.AddOperation(op)
	}

	return positions, nil
}

func (p *StatementProcessor) keep(entry models.StatementEntry) bool {
	if _, ok := p.allowedTypes[entry.Type]; !ok {
		return false
	}
	for _, prefix := range p.excludedISINPrefixes {
		if strings.HasPrefix(entry.ISIN, prefix) {
			return false
		}
	}
	return true
}

func buildOperation(entry models.StatementEntry) (models.Operation, error) {
	description := sanitize(entry.Description)

	if strings.HasPrefix(description, sellToken) {
		sale, err := models.NewSale(entry.ISIN, entry.DateISO, description, entry.Quantity, entry.Amount())
		if err != nil {
			return models.Operation{}, err
		}
		return models.SaleOp(sale), nil
	}

	purchase, err := models.NewPurchase(entry.ISIN, entry.DateISO, description, entry.Quantity, entry.Amount())
	if err != nil {
		return models.Operation{}, err
	}
	return models.PurchaseOp(purchase), nil
}

func sanitize(s string) string {
	return validation.SanitizeForFormulaInjection(validation.StripUnprintable(s))
}
