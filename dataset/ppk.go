package dataset

import (
	"github.com/shopspring/decimal"
)

// ppkPlaces is the precision kept for derived price-per-kg values.
const ppkPlaces = 4

// DerivePPK computes price per unit of quantity in decimal arithmetic and
// rounds to four places. ok is false when quantity is missing or not
// positive.
func DerivePPK(price float64, quantity *float64) (ppk float64, ok bool) {
	if quantity == nil || *quantity <= 0 {
		return 0, false
	}
	p := decimal.NewFromFloat(price)
	q := decimal.NewFromFloat(*quantity)
	return p.DivRound(q, ppkPlaces).InexactFloat64(), true
}
