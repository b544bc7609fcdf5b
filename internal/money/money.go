// Package money rounds and sums currency amounts in cents.
//
// Amounts are float64 euros in the data model; every rounding and summation
// goes through decimal arithmetic so that repeated runs give bit-identical
// results and sums of rounded amounts carry no binary drift.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds to the nearest cent, half away from zero.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Sum adds the amounts exactly and rounds the result to cents.
func Sum(vs ...float64) float64 {
	d := decimal.Zero
	for _, v := range vs {
		d = d.Add(decimal.NewFromFloat(v))
	}
	return d.Round(2).InexactFloat64()
}

// Sub returns a minus every b, rounded to cents.
func Sub(a float64, bs ...float64) float64 {
	d := decimal.NewFromFloat(a)
	for _, b := range bs {
		d = d.Sub(decimal.NewFromFloat(b))
	}
	return d.Round(2).InexactFloat64()
}

// Mul returns a*b rounded to cents.
func Mul(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// Apply multiplies base by the sum of rates and rounds to cents. The rates
// are summed in decimal so that 0.073 + 0.0085 stays exact.
func Apply(base float64, rates ...float64) float64 {
	r := decimal.Zero
	for _, v := range rates {
		r = r.Add(decimal.NewFromFloat(v))
	}
	return decimal.NewFromFloat(base).Mul(r).Round(2).InexactFloat64()
}

// Monthly divides a yearly amount by twelve and rounds to cents.
func Monthly(yearly float64) float64 {
	return decimal.NewFromFloat(yearly).Div(decimal.NewFromInt(12)).Round(2).InexactFloat64()
}

// FloorEuro truncates to whole euros as the income tax tariff requires.
func FloorEuro(v float64) float64 {
	return math.Floor(v)
}

// NonNegative clamps v at zero.
func NonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
