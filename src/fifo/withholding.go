package fifo

import (
	"strings"
	"time"

	"github.com/username/plusvalia/src/models"
)

// Withholding applies only to instruments domiciled under the jurisdiction
// prefix, for sales settled on or after the cutoff date. The broker then
// credits the net of a 19% retention on the gain.
const (
	withholdingRate       = 0.19
	withholdingISINPrefix = "IE"
)

var withholdingCutoff = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

// WithholdingApplies reports whether the retention rule gates this sale.
func WithholdingApplies(sale *models.Sale) bool {
	return strings.HasPrefix(sale.ISIN, withholdingISINPrefix) && !sale.Date.Before(withholdingCutoff)
}

// ResolveWithholding recovers a sale's true gross proceeds and withheld tax
// from the net cash credited and the cost basis of the lots it consumed.
//
// When the retention rule applies, the statement amount is net of both
// commission and tax, and tax is a fraction of the (unknown) gain, so the
// gross is obtained by inverting
//
//	incoming = gross - commission - rate*(gross - totalBuyCost)
//
// The solution only holds if the implied gain is positive; otherwise no tax
// was actually retained and the gross is simply the net plus commission.
func ResolveWithholding(sale *models.Sale, totalBuyCost float64) (grossProceeds, withheldTax float64) {
	if !WithholdingApplies(sale) {
		return sale.Amount + sale.Commission, 0
	}

	hypothetical := (sale.Amount + sale.Commission - withholdingRate*totalBuyCost) / (1 - withholdingRate)
	if hypothetical > totalBuyCost {
		return hypothetical, (hypothetical - totalBuyCost) * withholdingRate
	}

	// No taxable gain, so nothing was withheld.
	return sale.Amount + sale.Commission, 0
}
