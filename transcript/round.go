package transcript

import "github.com/shopspring/decimal"

// RoundMillis rounds seconds to three decimal places, half away from zero.
func RoundMillis(seconds float64) float64 {
	return decimal.NewFromFloat(seconds).Round(3).InexactFloat64()
}
