package money

import "github.com/shopspring/decimal"

// Round2 rounds a currency amount to two decimal places. Aggregations keep full
// float precision in intermediate sums and call this at the final projection.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Round2Ptr rounds through a pointer, preserving nil as the absent-value marker.
func Round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round2(*v)
	return &r
}
