package costing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/costline/internal/catalog"
)

func TestCatalog_RecipeIngredientContribution(t *testing.T) {
	oil := catalog.InventoryItem{ID: "oil", PricePerUnit: amount("9.00"), Size: amount("3"), Unit: "L"}
	dressing := catalog.Recipe{
		ID:    "dressing",
		Units: intPtr(4),
		Ingredients: []catalog.RecipeIngredient{
			{InventoryItemID: "oil", Quantity: dec("2")},
		},
	}

	c := NewCatalog([]catalog.InventoryItem{oil}, []catalog.Recipe{dressing})

	equal(t, "recipeCost", c.RecipeCost(dressing), "6")
	equal(t, "recipeCostPerUnit", c.RecipeCostPerUnit(dressing), "1.5")
}

func TestCatalog_DishSummaryRecomputesFromSnapshot(t *testing.T) {
	patty := catalog.InventoryItem{ID: "patty", PricePerUnit: amount("10"), Size: amount("2")}
	base := catalog.InventoryItem{ID: "base", PricePerUnit: amount("12"), Size: amount("2")}
	sauce := catalog.Recipe{
		ID:          "sauce",
		Units:       intPtr(1),
		Ingredients: []catalog.RecipeIngredient{{InventoryItemID: "base", Quantity: dec("1")}},
	}
	burger := catalog.Dish{
		SellPrice: amount("18.99"),
		Ingredients: []catalog.DishIngredient{
			{Ref: catalog.InventoryRef("patty"), Quantity: dec("2")},
			{Ref: catalog.RecipeRef("sauce"), Quantity: dec("1")},
			{Ref: catalog.RecipeRef("missing"), Quantity: dec("3")},
			{Quantity: dec("1")},
		},
	}

	summary := NewCatalog([]catalog.InventoryItem{patty, base}, []catalog.Recipe{sauce}).DishSummary(burger)
	equal(t, "cost", summary.Cost, "16")
	equal(t, "profit", summary.Profit, "2.99")

	// A price change in the snapshot flows straight into the next computation.
	patty.PricePerUnit = amount("20")
	summary = NewCatalog([]catalog.InventoryItem{patty, base}, []catalog.Recipe{sauce}).DishSummary(burger)
	equal(t, "cost after price change", summary.Cost, "26")
	if !summary.Profit.IsNegative() || !summary.Margin.IsNegative() {
		t.Fatalf("expected a loss, got %+v", summary)
	}
}

func TestCatalog_ResolveDishLeavesUnknownReferencesEmpty(t *testing.T) {
	c := NewCatalog(nil, nil)
	lines := c.ResolveDish([]catalog.DishIngredient{
		{Ref: catalog.InventoryRef("nope"), Quantity: decimal.NewFromInt(1)},
	})
	if len(lines) != 1 || lines[0].Item != nil || lines[0].Recipe != nil {
		t.Fatalf("unexpected resolution %+v", lines)
	}
}
