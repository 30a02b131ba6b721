package costing

import (
	"github.com/shopspring/decimal"
)

// Summary groups the derived figures shown for a dish.
type Summary struct {
	Cost   decimal.Decimal `json:"cost"`
	Profit decimal.Decimal `json:"profit"`
	Margin decimal.Decimal `json:"margin"`
}

// Summarize derives profit and margin from a dish cost and its sell price.
func Summarize(sellPrice decimal.NullDecimal, cost decimal.Decimal) Summary {
	profit := Profit(sellPrice, cost)
	return Summary{
		Cost:   cost,
		Profit: profit,
		Margin: Margin(profit, sellPrice),
	}
}

// Display is Summary formatted for presentation.
type Display struct {
	Cost   string `json:"cost"`
	Profit string `json:"profit"`
	Margin string `json:"margin"`
}

// Display formats the summary with FormatCurrency and FormatPercent.
func (s Summary) Display() Display {
	return Display{
		Cost:   FormatCurrency(s.Cost),
		Profit: FormatCurrency(s.Profit),
		Margin: FormatPercent(s.Margin),
	}
}

// FormatCurrency renders d with two fixed decimals.
func FormatCurrency(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// unitCostPlaces is the precision shown for per-unit costs, which are often
// fractions of a cent.
const unitCostPlaces = 6

// FormatUnitCost renders a per-unit cost with two decimals, or up to
// unitCostPlaces when the cost has sub-cent precision.
func FormatUnitCost(d decimal.Decimal) string {
	r := d.Round(unitCostPlaces)
	if r.Equal(r.Round(2)) {
		return r.StringFixed(2)
	}
	return r.String()
}

// FormatPercent renders d with two fixed decimals and a % suffix.
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}
