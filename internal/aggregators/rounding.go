package aggregators

import (
	"math"

	"github.com/shopspring/decimal"
)

// round rounds v half-to-even at the given number of decimal places, operating on the
// shortest decimal representation of v so that 0.1+0.2 rounds like 0.3.
func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).RoundBank(int32(places)).InexactFloat64()
}
