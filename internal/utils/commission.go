package utils

import "github.com/shopspring/decimal"

// CommissionRate is the platform's share of every payment amount.
var CommissionRate = decimal.RequireFromString("0.15")

// CalculateCommission returns amount × 0.15 rounded to the cent.
func CalculateCommission(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(CommissionRate).Round(2)
}

// CalculateTalentEarnings returns what the talent receives for a payment.
// Tips are never commissioned.
func CalculateTalentEarnings(amount, tip decimal.Decimal) decimal.Decimal {
	return amount.Sub(CalculateCommission(amount)).Add(tip)
}
