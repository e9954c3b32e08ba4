package models

// Position tracks one instrument: its recorded operation history plus the
// derived state of the latest FIFO run. The recorded operations are
// append-only; everything else is rebuilt from scratch on each run.
type Position struct {
	ISIN       string  `json:"isin"`
	Name       string  `json:"name"`
	CurrentQty float64 `json:"current_qty"`

	TotalGrossProfit float64 `json:"total_gross_profit"`
	TotalNetProfit   float64 `json:"total_net_profit"`
	TotalCommissions float64 `json:"total_commissions"`
	TotalTaxes       float64 `json:"total_taxes"`

	Operations []Operation `json:"operations"`

	// Derived by the FIFO engine.
	ClosedSales []*Sale      `json:"closed_operations"`
	OpenLots    []*Purchase  `json:"opened_operations"`
	SaleDetails []SaleDetail `json:"sale_details"`
}

func NewPosition(isin, name string) *Position {
	return &Position{ISIN: isin, Name: name}
}

// AddOperation appends an operation to the recorded history and keeps the
// running signed quantity in step with it.
func (p *Position) AddOperation(op Operation) {
	p.Operations = append(p.Operations, op)
	p.CurrentQty += op.SignedQuantity()
}
