package reports

import (
	"fmt"
	"io"
	"strings"

	"github.com/username/plusvalia/src/models"
)

// ConsoleWriter renders position reports as plain text. It holds no state
// beyond its destination and the engine does not depend on it.
type ConsoleWriter struct {
	w io.Writer
}

func NewConsoleWriter(w io.Writer) *ConsoleWriter {
	return &ConsoleWriter{w: w}
}

// WritePosition prints one instrument's totals, closed sales with their
// matched-buy breakdowns, and current open lots.
func (c *ConsoleWriter) WritePosition(p *models.Position) {
	header := fmt.Sprintf("FIFO report for %s (%s)", p.Name, p.ISIN)
	fmt.Fprintln(c.w, header)
	fmt.Fprintln(c.w, strings.Repeat("=", len(header)))

	fmt.Fprintf(c.w, "Total gross profit: %.2f\n", p.TotalGrossProfit)
	fmt.Fprintf(c.w, "Total net profit:   %.2f\n", p.TotalNetProfit)
	fmt.Fprintf(c.w, "Total commissions:  %.2f\n", p.TotalCommissions)
	fmt.Fprintf(c.w, "Total taxes:        %.2f\n", p.TotalTaxes)

	fmt.Fprintln(c.w, "Closed sales:")
	for _, detail := range p.SaleDetails {
		sale := detail.Sale
		fmt.Fprintf(c.w, "  SALE %s qty %.4f price %.4f gross %.2f commissions %.2f taxes %.2f net %.2f\n",
			sale.RawDate, sale.Quantity, sale.UnitPrice,
			detail.GrossProfit, detail.Commissions, detail.Taxes, detail.NetProfit)
		for _, m := range detail.MatchedBuys {
			fmt.Fprintf(c.w, "    - BUY %s matched %.4f at %.4f\n",
				m.Purchase.RawDate, m.MatchedQty, m.BuyPrice)
		}
		if detail.UnmatchedQty > 0 {
			fmt.Fprintf(c.w, "    ! unmatched quantity %.4f (no cost basis)\n", detail.UnmatchedQty)
		}
	}

	fmt.Fprintln(c.w, "Open lots:")
	for _, lot := range p.OpenLots {
		fmt.Fprintf(c.w, "  - %s qty %.4f at %.4f\n", lot.RawDate, lot.Quantity, lot.UnitCost)
	}
}
