package fifo

import "github.com/username/plusvalia/src/models"

// lotEpsilon guards lot exhaustion checks against floating-point residue:
// a remaining quantity at or below it counts as fully consumed.
const lotEpsilon = 1e-6

// lot is a slice of a purchase not yet consumed by subsequent sales. Lots
// live only for the duration of one FIFO run.
type lot struct {
	purchase  *models.Purchase
	remaining float64
}

// lotQueue holds the open purchase lots of one instrument in arrival order.
// Lots are pushed at the back and consumed strictly from the front.
type lotQueue struct {
	lots []*lot
}

func (q *lotQueue) push(p *models.Purchase) {
	q.lots = append(q.lots, &lot{purchase: p, remaining: p.Quantity})
}

func (q *lotQueue) empty() bool {
	return len(q.lots) == 0
}

func (q *lotQueue) front() *lot {
	return q.lots[0]
}

func (q *lotQueue) popFront() {
	q.lots = q.lots[1:]
}

// drain converts every lot still in the queue into a synthetic open
// purchase carrying the remaining quantity at the original unit cost.
func (q *lotQueue) drain() []*models.Purchase {
	var open []*models.Purchase
	for _, l := range q.lots {
		open = append(open, l.purchase.OpenLot(l.remaining))
	}
	q.lots = nil
	return open
}
