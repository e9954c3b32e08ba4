package reports

import (
	"sort"

	"github.com/username/plusvalia/src/models"
)

// SalesHistoryEntry is one closed sale flattened out of its instrument for
// the cross-instrument history view.
type SalesHistoryEntry struct {
	InstrumentName string              `json:"instrument_name"`
	InstrumentISIN string              `json:"instrument_isin"`
	SellDate       string              `json:"sell_date"`
	Sale           *models.Sale        `json:"sell_operation"`
	MatchedBuys    []models.MatchedBuy `json:"matched_buys"`
	GrossProfit    float64             `json:"gross_profit"`
	NetProfit      float64             `json:"net_profit"`
	Commissions    float64             `json:"commissions"`
	Taxes          float64             `json:"taxes"`
	UnmatchedQty   float64             `json:"unmatched_qty,omitempty"`
}

// BuildSalesHistory flattens every instrument's sale details into one list
// sorted by sale date descending (most recent first). ISO dates sort
// lexicographically, so the raw date string is a valid sort key.
func BuildSalesHistory(positions []*models.Position) []SalesHistoryEntry {
	var history []SalesHistoryEntry
	for _, pos := range positions {
		for _, detail := range pos.SaleDetails {
			history = append(history, SalesHistoryEntry{
				InstrumentName: pos.Name,
				InstrumentISIN: pos.ISIN,
				SellDate:       detail.Sale.RawDate,
				Sale:           detail.Sale,
				MatchedBuys:    detail.MatchedBuys,
				GrossProfit:    detail.GrossProfit,
				NetProfit:      detail.NetProfit,
				Commissions:    detail.Commissions,
				Taxes:          detail.Taxes,
				UnmatchedQty:   detail.UnmatchedQty,
			})
		}
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].SellDate > history[j].SellDate
	})
	return history
}
