// Package costing rolls ingredient prices up into recipe and dish costs and
// derives profit and margin. Every function is pure and never fails: missing or
// malformed pricing contributes zero.
package costing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/costline/internal/catalog"
)

var hundred = decimal.NewFromInt(100)

// RecipeLine is a recipe ingredient with its inventory reference resolved.
// Item is nil when the reference did not resolve.
type RecipeLine struct {
	Item     *catalog.InventoryItem
	Quantity decimal.Decimal
}

// ResolvedRecipe is a recipe whose ingredient lines are resolved.
type ResolvedRecipe struct {
	Recipe catalog.Recipe
	Lines  []RecipeLine
}

// DishLine is a dish ingredient with its reference resolved. At most one of
// Item and Recipe is set; neither means the reference did not resolve.
type DishLine struct {
	Item     *catalog.InventoryItem
	Recipe   *ResolvedRecipe
	Quantity decimal.Decimal
}

// CostPerUnit derives the cost of one unit from package pricing:
// PricePerUnit / Size. It returns zero unless both are present and positive.
func CostPerUnit(item catalog.InventoryItem) decimal.Decimal {
	if !catalog.Positive(item.PricePerUnit) || !catalog.Positive(item.Size) {
		return decimal.Zero
	}
	return item.PricePerUnit.Decimal.Div(item.Size.Decimal)
}

// RecipeCost sums CostPerUnit × quantity over the lines.
func RecipeCost(lines []RecipeLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		if line.Item == nil {
			continue
		}
		total = total.Add(CostPerUnit(*line.Item).Mul(line.Quantity))
	}
	return total
}

// RecipeCostPerUnit divides the recipe cost by the portions the batch yields.
// It returns zero when Units is missing, zero or negative.
func RecipeCostPerUnit(r ResolvedRecipe) decimal.Decimal {
	if r.Recipe.Units == nil || *r.Recipe.Units <= 0 {
		return decimal.Zero
	}
	return RecipeCost(r.Lines).Div(decimal.NewFromInt(int64(*r.Recipe.Units)))
}

// LineCost is the contribution of one dish line.
func LineCost(line DishLine) decimal.Decimal {
	switch {
	case line.Item != nil:
		return CostPerUnit(*line.Item).Mul(line.Quantity)
	case line.Recipe != nil:
		return RecipeCostPerUnit(*line.Recipe).Mul(line.Quantity)
	default:
		return decimal.Zero
	}
}

// DishCost sums the contribution of every line. Quantities are trusted as given.
func DishCost(lines []DishLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineCost(line))
	}
	return total
}

// Profit is sellPrice − cost; it may be negative. A null sell price counts as zero.
func Profit(sellPrice decimal.NullDecimal, cost decimal.Decimal) decimal.Decimal {
	return catalog.OrZero(sellPrice).Sub(cost)
}

// Margin is profit as a percentage of sellPrice. It returns zero when the sell
// price is null or zero and is not clamped.
func Margin(profit decimal.Decimal, sellPrice decimal.NullDecimal) decimal.Decimal {
	price := catalog.OrZero(sellPrice)
	if price.IsZero() {
		return decimal.Zero
	}
	return profit.Div(price).Mul(hundred)
}
