package models

// StatementEntry is a single row of the normalized statement feed, as
// produced by the broker statement exporter.
type StatementEntry struct {
	DateISO        string  `json:"date_iso"`
	Type           string  `json:"type"`
	Description    string  `json:"description"`
	ISIN           string  `json:"isin"`
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	IncomingAmount float64 `json:"incoming_amount"`
	OutgoingAmount float64 `json:"outgoing_amount"`
}

// Amount returns the cash moved by the entry: the outgoing side for buys,
// the incoming side for sells.
func (e StatementEntry) Amount() float64 {
	if e.OutgoingAmount > 0 {
		return e.OutgoingAmount
	}
	return e.IncomingAmount
}

// MatchedBuy is one purchase lot slice consumed by a sale.
type MatchedBuy struct {
	Purchase   *Purchase `json:"buy_operation"`
	MatchedQty float64   `json:"matched_qty"`
	BuyPrice   float64   `json:"buy_price"`
}

// SaleDetail is the per-sale breakdown produced by a FIFO run: the finalized
// sale, the lots it consumed in queue order, and its profit figures.
type SaleDetail struct {
	Sale        *Sale        `json:"sell_operation"`
	MatchedBuys []MatchedBuy `json:"matched_buys"`
	GrossProfit float64      `json:"gross_profit"`
	NetProfit   float64      `json:"net_profit"`
	Commissions float64      `json:"commissions"`
	Taxes       float64      `json:"taxes"`

	// UnmatchedQty is the sale quantity left over after the lot queue
	// was exhausted. Non-zero means the history oversold the position;
	// that quantity carries no cost basis.
	UnmatchedQty float64 `json:"unmatched_qty,omitempty"`
}
