package shared

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits kept for prices and costs.
const MoneyScale int32 = 2

// RoundMoney rounds an amount to MoneyScale digits, half away from zero.
// Amounts in this domain are never negative, so this is half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// WeightedAverage returns total/quantity rounded to MoneyScale.
// A zero quantity yields zero.
func WeightedAverage(total decimal.Decimal, quantity int64) decimal.Decimal {
	if quantity == 0 {
		return decimal.Zero
	}
	return RoundMoney(total.Div(decimal.NewFromInt(quantity)))
}
