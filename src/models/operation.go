package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used by the normalized
// statement feed.
const DateLayout = "2006-01-02"

const (
	// Savings-plan executions carry no commission; every other order
	// pays a flat unit commission.
	savingsToken   = "Savings"
	flatCommission = 1.0
)

// CommissionFor returns the flat commission for an order description.
// The rule is identical for purchases and sales.
func CommissionFor(description string) float64 {
	if strings.Contains(description, savingsToken) {
		return 0
	}
	return flatCommission
}

type OperationKind string

const (
	KindPurchase OperationKind = "PURCHASE"
	KindSale     OperationKind = "SALE"
)

// Purchase is an executed buy order. Immutable once constructed.
type Purchase struct {
	ISIN        string    `json:"isin"`
	RawDate     string    `json:"date"`
	Date        time.Time `json:"-"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	Amount      float64   `json:"amount"`
	Commission  float64   `json:"commission"`
	UnitCost    float64   `json:"unit_cost"`
}

// NewPurchase builds a purchase from normalized statement fields.
// Quantity and amount are preconditions of the ingestion layer and must be
// positive; a malformed date fails construction.
func NewPurchase(isin, rawDate, description string, quantity, amount float64) (*Purchase, error) {
	date, err := time.Parse(DateLayout, rawDate)
	if err != nil {
		return nil, fmt.Errorf("purchase %s: invalid date %q: %w", isin, rawDate, err)
	}
	commission := CommissionFor(description)
	return &Purchase{
		ISIN:        isin,
		RawDate:     rawDate,
		Date:        date,
		Description: description,
		Quantity:    quantity,
		Amount:      amount,
		Commission:  commission,
		UnitCost:    (amount - commission) / quantity,
	}, nil
}

// OpenLot derives the synthetic purchase representing the unconsumed
// remainder of p after a FIFO run: same date, description and unit cost,
// commission forced to zero.
func (p *Purchase) OpenLot(remaining float64) *Purchase {
	return &Purchase{
		ISIN:        p.ISIN,
		RawDate:     p.RawDate,
		Date:        p.Date,
		Description: p.Description,
		Quantity:    remaining,
		Amount:      p.UnitCost * remaining,
		Commission:  0,
		UnitCost:    p.UnitCost,
	}
}

// ErrSaleFinalized is returned when Finalize is invoked on a sale that has
// already been finalized within the same run.
var ErrSaleFinalized = errors.New("sale already finalized")

type SaleState string

const (
	// SaleProvisional marks proceeds estimated from the net cash amount
	// alone, before FIFO matching has determined the lots consumed.
	SaleProvisional SaleState = "PROVISIONAL"
	SaleFinalized   SaleState = "FINALIZED"
)

// Sale is an executed sell order. Its proceeds fields are two-phase: filled
// with provisional estimates at construction and overwritten exactly once
// per FIFO run, when the matcher knows the cost basis of the consumed lots.
type Sale struct {
	ISIN        string    `json:"isin"`
	RawDate     string    `json:"date"`
	Date        time.Time `json:"-"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	Amount      float64   `json:"amount"` // net cash credited
	Commission  float64   `json:"commission"`

	GrossProceeds float64   `json:"gross_proceeds"`
	UnitPrice     float64   `json:"unit_price"`
	WithheldTax   float64   `json:"withheld_tax"`
	State         SaleState `json:"state"`
}

// NewSale builds a sale from normalized statement fields. Proceeds start as
// provisional estimates computed from the net amount alone.
func NewSale(isin, rawDate, description string, quantity, amount float64) (*Sale, error) {
	date, err := time.Parse(DateLayout, rawDate)
	if err != nil {
		return nil, fmt.Errorf("sale %s: invalid date %q: %w", isin, rawDate, err)
	}
	commission := CommissionFor(description)
	gross := amount + commission
	return &Sale{
		ISIN:          isin,
		RawDate:       rawDate,
		Date:          date,
		Description:   description,
		Quantity:      quantity,
		Amount:        amount,
		Commission:    commission,
		GrossProceeds: gross,
		UnitPrice:     gross / quantity,
		WithheldTax:   0,
		State:         SaleProvisional,
	}, nil
}

// Finalize transitions the sale from provisional to finalized, overwriting
// the estimated proceeds with values resolved against the matched cost
// basis. The transition happens exactly once per FIFO run.
func (s *Sale) Finalize(grossProceeds, withheldTax float64) error {
	if s.State == SaleFinalized {
		return ErrSaleFinalized
	}
	s.GrossProceeds = grossProceeds
	s.WithheldTax = withheldTax
	s.UnitPrice = grossProceeds / s.Quantity
	s.State = SaleFinalized
	return nil
}

// Clone returns a copy of the sale. FIFO runs finalize clones so the
// recorded operation history stays untouched.
func (s *Sale) Clone() *Sale {
	clone := *s
	return &clone
}

// Operation is a closed variant over {Purchase, Sale}. Exactly one of the
// two payloads is set.
type Operation struct {
	Purchase *Purchase `json:"purchase,omitempty"`
	Sale     *Sale     `json:"sale,omitempty"`
}

func PurchaseOp(p *Purchase) Operation { return Operation{Purchase: p} }
func SaleOp(s *Sale) Operation         { return Operation{Sale: s} }

func (o Operation) Kind() OperationKind {
	if o.Sale != nil {
		return KindSale
	}
	return KindPurchase
}

func (o Operation) ISIN() string {
	if o.Sale != nil {
		return o.Sale.ISIN
	}
	return o.Purchase.ISIN
}

func (o Operation) Date() time.Time {
	if o.Sale != nil {
		return o.Sale.Date
	}
	return o.Purchase.Date
}

func (o Operation) Quantity() float64 {
	if o.Sale != nil {
		return o.Sale.Quantity
	}
	return o.Purchase.Quantity
}

// SignedQuantity is positive for purchases and negative for sales.
func (o Operation) SignedQuantity() float64 {
	if o.Sale != nil {
		return -o.Sale.Quantity
	}
	return o.Purchase.Quantity
}
