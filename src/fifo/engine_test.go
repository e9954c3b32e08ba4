package fifo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/plusvalia/src/models"
)

func buyOp(t *testing.T, isin, date, desc string, qty, amount float64) models.Operation {
	t.Helper()
	p, err := models.NewPurchase(isin, date, desc, qty, amount)
	require.NoError(t, err)
	return models.PurchaseOp(p)
}

func sellOp(t *testing.T, isin, date, desc string, qty, amount float64) models.Operation {
	t.Helper()
	s, err := models.NewSale(isin, date, desc, qty, amount)
	require.NoError(t, err)
	return models.SaleOp(s)
}

func TestRunFIFOOrdering(t *testing.T) {
	// Two lots of 10 bought on successive days; a sale of 12 must consume
	// the older lot fully and 2 units of the newer one, never the reverse.
	ops := []models.Operation{
		buyOp(t, "US0001", "2025-01-10", "Buy Acme", 10, 101),
		buyOp(t, "US0001", "2025-02-10", "Buy Acme", 10, 201),
		sellOp(t, "US0001", "2025-03-10", "Sell Acme", 12, 300),
	}

	res := Run(ops)
	require.Len(t, res.SaleDetails, 1)

	detail := res.SaleDetails[0]
	require.Len(t, detail.MatchedBuys, 2)
	assert.Equal(t, "2025-01-10", detail.MatchedBuys[0].Purchase.RawDate)
	assert.InDelta(t, 10, detail.MatchedBuys[0].MatchedQty, 1e-9)
	assert.InDelta(t, 10.0, detail.MatchedBuys[0].BuyPrice, 1e-9)
	assert.Equal(t, "2025-02-10", detail.MatchedBuys[1].Purchase.RawDate)
	assert.InDelta(t, 2, detail.MatchedBuys[1].MatchedQty, 1e-9)
	assert.InDelta(t, 20.0, detail.MatchedBuys[1].BuyPrice, 1e-9)

	// 8 units of the second lot stay open.
	require.Len(t, res.OpenLots, 1)
	assert.InDelta(t, 8, res.OpenLots[0].Quantity, 1e-9)
	assert.InDelta(t, 20.0, res.OpenLots[0].UnitCost, 1e-9)
	assert.Zero(t, res.OpenLots[0].Commission)
}

func TestRunPartialLotAndOpenRemainder(t *testing.T) {
	ops := []models.Operation{
		buyOp(t, "US0001", "2025-01-02", "Buy Acme", 5, 51),   // unit cost 10
		buyOp(t, "US0001", "2025-01-03", "Buy Acme", 5, 101),  // unit cost 20
		sellOp(t, "US0001", "2025-01-04", "Sell Acme", 7, 100),
	}

	res := Run(ops)
	require.Len(t, res.SaleDetails, 1)

	detail := res.SaleDetails[0]
	require.Len(t, detail.MatchedBuys, 2)
	assert.InDelta(t, 5, detail.MatchedBuys[0].MatchedQty, 1e-9)
	assert.InDelta(t, 10.0, detail.MatchedBuys[0].BuyPrice, 1e-9)
	assert.InDelta(t, 2, detail.MatchedBuys[1].MatchedQty, 1e-9)
	assert.InDelta(t, 20.0, detail.MatchedBuys[1].BuyPrice, 1e-9)
	assert.Zero(t, detail.UnmatchedQty)

	require.Len(t, res.OpenLots, 1)
	assert.InDelta(t, 3, res.OpenLots[0].Quantity, 1e-9)
	assert.InDelta(t, 20.0, res.OpenLots[0].UnitCost, 1e-9)
}

func TestRunQuantityConservation(t *testing.T) {
	ops := []models.Operation{
		buyOp(t, "US0001", "2025-01-02", "Buy Acme", 12.5, 126),
		buyOp(t, "US0001", "2025-01-09", "Savings Plan Acme", 7.25, 80),
		sellOp(t, "US0001", "2025-02-02", "Sell Acme", 9.75, 120),
		buyOp(t, "US0001", "2025-02-20", "Buy Acme", 4, 50),
		sellOp(t, "US0001", "2025-03-02", "Sell Acme", 6, 80),
	}

	res := Run(ops)

	var purchased, matched, open float64
	for _, op := range ops {
		if op.Kind() == models.KindPurchase {
			purchased += op.Purchase.Quantity
		}
	}
	for _, detail := range res.SaleDetails {
		for _, m := range detail.MatchedBuys {
			matched += m.MatchedQty
		}
		assert.Zero(t, detail.UnmatchedQty)
	}
	for _, lot := range res.OpenLots {
		open += lot.Quantity
	}

	assert.InDelta(t, purchased, matched+open, 1e-6)
}

func TestRunDeterminism(t *testing.T) {
	ops := []models.Operation{
		buyOp(t, "IE0001", "2025-01-02", "Buy Fund", 10, 101),
		buyOp(t, "IE0001", "2025-03-02", "Savings Plan Fund", 5, 60),
		sellOp(t, "IE0001", "2025-08-02", "Sell Fund", 12, 200),
	}

	first := Run(ops)
	second := Run(ops)
	require.Equal(t, first, second)
}

func TestRunDoesNotMutateRecordedOperations(t *testing.T) {
	sale, err := models.NewSale("US0001", "2025-02-02", "Sell Acme", 5, 100)
	require.NoError(t, err)
	provisionalGross := sale.GrossProceeds

	ops := []models.Operation{
		buyOp(t, "US0001", "2025-01-02", "Buy Acme", 5, 51),
		models.SaleOp(sale),
	}

	res := Run(ops)

	// The recorded sale stays provisional; the finalized clone lives in
	// the run's results.
	assert.Equal(t, models.SaleProvisional, sale.State)
	assert.InDelta(t, provisionalGross, sale.GrossProceeds, 1e-9)
	require.Len(t, res.ClosedSales, 1)
	assert.Equal(t, models.SaleFinalized, res.ClosedSales[0].State)
	assert.NotSame(t, sale, res.ClosedSales[0])
}

func TestRunNetProfitFormula(t *testing.T) {
	// Purchase commissions are reported in the commissions total but are
	// already netted into the unit cost, so net profit only subtracts the
	// sale-side commission.
	ops := []models.Operation{
		buyOp(t, "US0001", "2025-01-02", "Buy Acme", 100, 1000),   // commission 1, unit cost 9.99
		sellOp(t, "US0001", "2025-02-02", "Sell Acme", 100, 1200), // commission 1, no withholding
	}

	res := Run(ops)
	require.Len(t, res.SaleDetails, 1)
	detail := res.SaleDetails[0]

	sellPrice := 1201.0 / 100
	expectedGross := (sellPrice - 9.99) * 100

	assert.InDelta(t, expectedGross, detail.GrossProfit, 1e-6)
	assert.InDelta(t, expectedGross-1, detail.NetProfit, 1e-6)
	assert.InDelta(t, expectedGross, res.Totals.GrossProfit, 1e-6)
	assert.InDelta(t, expectedGross-1, res.Totals.NetProfit, 1e-6)
	assert.InDelta(t, 2, res.Totals.Commissions, 1e-9) // 1 purchase + 1 sale
	assert.Zero(t, res.Totals.Taxes)
}

func TestRunOversellSurfacesResidual(t *testing.T) {
	ops := []models.Operation{
		buyOp(t, "US0001", "2025-01-02", "Buy Acme", 5, 51),
		sellOp(t, "US0001", "2025-02-02", "Sell Acme", 8, 120),
	}

	res := Run(ops)
	require.Len(t, res.SaleDetails, 1)

	detail := res.SaleDetails[0]
	require.Len(t, detail.MatchedBuys, 1)
	assert.InDelta(t, 5, detail.MatchedBuys[0].MatchedQty, 1e-9)
	assert.InDelta(t, 3, detail.UnmatchedQty, 1e-6)
	assert.Empty(t, res.OpenLots)
}

func TestRunFloatingPointExhaustion(t *testing.T) {
	// Three sales of 0.1 against a 0.3 lot leave only floating-point
	// residue; the lot must be treated as exactly consumed.
	ops := []models.Operation{
		buyOp(t, "US0001", "2025-01-02", "Savings Plan Acme", 0.3, 3),
		sellOp(t, "US0001", "2025-02-02", "Sell Savings Acme", 0.1, 1.5),
		sellOp(t, "US0001", "2025-02-03", "Sell Savings Acme", 0.1, 1.5),
		sellOp(t, "US0001", "2025-02-04", "Sell Savings Acme", 0.1, 1.5),
	}

	res := Run(ops)
	require.Len(t, res.SaleDetails, 3)
	for _, detail := range res.SaleDetails {
		assert.Zero(t, detail.UnmatchedQty)
	}
	assert.Empty(t, res.OpenLots)
}

func TestRecalculate(t *testing.T) {
	pos := models.NewPosition("US0001", "Acme Corp")
	pos.AddOperation(buyOp(t, "US0001", "2025-01-02", "Buy Acme", 100, 1000))
	pos.AddOperation(sellOp(t, "US0001", "2025-02-02", "Sell Acme", 40, 480))

	Recalculate(pos)

	assert.InDelta(t, 60, pos.CurrentQty, 1e-9)
	require.Len(t, pos.SaleDetails, 1)
	require.Len(t, pos.ClosedSales, 1)
	require.Len(t, pos.OpenLots, 1)
	assert.InDelta(t, 60, pos.OpenLots[0].Quantity, 1e-9)

	// Appending another sale and recomputing rebuilds everything from the
	// recorded history.
	pos.AddOperation(sellOp(t, "US0001", "2025-03-02", "Sell Acme", 60, 700))
	Recalculate(pos)

	assert.InDelta(t, 0, pos.CurrentQty, 1e-9)
	assert.Len(t, pos.SaleDetails, 2)
	assert.Empty(t, pos.OpenLots)
	assert.InDelta(t, 3, pos.TotalCommissions, 1e-9)
}
