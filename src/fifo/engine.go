package fifo

import (
	"github.com/username/plusvalia/src/models"
)

// Totals are the cumulative figures of one instrument across a full run.
//
// Commissions covers both sides for reporting, but NetProfit is accumulated
// across sales only: a purchase commission is already netted into its lot's
// unit cost and must not be subtracted a second time.
type Totals struct {
	GrossProfit float64 `json:"gross_profit"`
	NetProfit   float64 `json:"net_profit"`
	Commissions float64 `json:"commissions"`
	Taxes       float64 `json:"taxes"`
}

// Result is everything a FIFO run derives from an operation history.
type Result struct {
	ClosedSales []*models.Sale
	OpenLots    []*models.Purchase
	SaleDetails []models.SaleDetail
	Totals      Totals
}

// Run walks one instrument's operations in the order given (assumed
// chronological — ordering is the caller's precondition) and matches each
// sale against open purchase lots, first in first out.
//
// Run is pure with respect to its input: the recorded operations are never
// mutated (sales are finalized on clones), and re-running the same history
// reproduces identical output.
func Run(operations []models.Operation) Result {
	var (
		queue  lotQueue
		result Result
	)

	for _, op := range operations {
		switch op.Kind() {
		case models.KindPurchase:
			queue.push(op.Purchase)
			result.Totals.Commissions += op.Purchase.Commission

		case models.KindSale:
			detail := matchSale(op.Sale, &queue)
			result.SaleDetails = append(result.SaleDetails, detail)
			result.ClosedSales = append(result.ClosedSales, detail.Sale)

			result.Totals.GrossProfit += detail.GrossProfit
			result.Totals.NetProfit += detail.NetProfit
			result.Totals.Commissions += detail.Sale.Commission
			result.Totals.Taxes += detail.Sale.WithheldTax
		}
	}

	result.OpenLots = queue.drain()
	return result
}

// matchSale consumes lots from the front of the queue until the sale
// quantity is covered or the queue is exhausted, then resolves the sale's
// proceeds against the matched cost basis.
func matchSale(recorded *models.Sale, queue *lotQueue) models.SaleDetail {
	sale := recorded.Clone()

	var (
		matched      []models.MatchedBuy
		totalBuyCost float64
	)
	remainingToSell := sale.Quantity

	for remainingToSell > lotEpsilon && !queue.empty() {
		front := queue.front()
		matchedQty := min(remainingToSell, front.remaining)

		matched = append(matched, models.MatchedBuy{
			Purchase:   front.purchase,
			MatchedQty: matchedQty,
			BuyPrice:   front.purchase.UnitCost,
		})
		totalBuyCost += matchedQty * front.purchase.UnitCost

		remainingToSell -= matchedQty
		front.remaining -= matchedQty
		if front.remaining <= lotEpsilon {
			queue.popFront()
		}
	}

	gross, tax := ResolveWithholding(sale, totalBuyCost)
	// The clone is always provisional here, so the transition cannot fail.
	_ = sale.Finalize(gross, tax)

	var grossProfit float64
	for _, m := range matched {
		grossProfit += (sale.UnitPrice - m.BuyPrice) * m.MatchedQty
	}

	detail := models.SaleDetail{
		Sale:        sale,
		MatchedBuys: matched,
		GrossProfit: grossProfit,
		NetProfit:   grossProfit - sale.Commission - sale.WithheldTax,
		Commissions: sale.Commission,
		Taxes:       sale.WithheldTax,
	}
	if remainingToSell > lotEpsilon {
		// Oversold: the residual quantity has no cost basis. Surfaced
		// instead of silently dropped so callers can flag the history.
		detail.UnmatchedQty = remainingToSell
	}
	return detail
}

// Recalculate runs the engine over a position's recorded history and
// replaces all of its derived state.
func Recalculate(p *models.Position) {
	res := Run(p.Operations)
	p.ClosedSales = res.ClosedSales
	p.OpenLots = res.OpenLots
	p.SaleDetails = res.SaleDetails
	p.TotalGrossProfit = res.Totals.GrossProfit
	p.TotalNetProfit = res.Totals.NetProfit
	p.TotalCommissions = res.Totals.Commissions
	p.TotalTaxes = res.Totals.Taxes
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
