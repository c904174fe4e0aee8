package credit

import "math"

const lakh = 100_000

// ApprovedLimit derives a customer's credit limit from their monthly income:
// 36x income, rounded to the nearest lakh. Rounding is half away from zero,
// so an income of 10000 (36x = 360000, 3.6 lakh) yields 400000.
func ApprovedLimit(monthlyIncome int64) int64 {
	lakhs := math.Round(36 * float64(monthlyIncome) / lakh)
	return int64(lakhs) * lakh
}
