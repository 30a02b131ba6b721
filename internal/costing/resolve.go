package costing

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/costline/internal/catalog"
)

// Catalog is a snapshot of one owner's inventory and recipes used to resolve
// ingredient references. It is read-only after construction.
type Catalog struct {
	items   map[string]catalog.InventoryItem
	recipes map[string]catalog.Recipe
}

// NewCatalog indexes items and recipes by id.
func NewCatalog(items []catalog.InventoryItem, recipes []catalog.Recipe) *Catalog {
	c := &Catalog{
		items:   make(map[string]catalog.InventoryItem, len(items)),
		recipes: make(map[string]catalog.Recipe, len(recipes)),
	}
	for _, item := range items {
		c.items[item.ID] = item
	}
	for _, recipe := range recipes {
		c.recipes[recipe.ID] = recipe
	}
	return c
}

// Item looks up an inventory item.
func (c *Catalog) Item(id string) (catalog.InventoryItem, bool) {
	item, ok := c.items[id]
	return item, ok
}

// Recipe looks up a recipe.
func (c *Catalog) Recipe(id string) (catalog.Recipe, bool) {
	recipe, ok := c.recipes[id]
	return recipe, ok
}

// ResolveRecipe resolves the recipe's inventory references.
func (c *Catalog) ResolveRecipe(r catalog.Recipe) ResolvedRecipe {
	lines := make([]RecipeLine, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		line := RecipeLine{Quantity: ing.Quantity}
		if item, ok := c.items[ing.InventoryItemID]; ok {
			line.Item = &item
		}
		lines = append(lines, line)
	}
	return ResolvedRecipe{Recipe: r, Lines: lines}
}

// ResolveDish resolves each dish line against the snapshot. Recipes are
// resolved one level deep.
func (c *Catalog) ResolveDish(ingredients []catalog.DishIngredient) []DishLine {
	lines := make([]DishLine, 0, len(ingredients))
	for _, ing := range ingredients {
		line := DishLine{Quantity: ing.Quantity}
		if id, ok := ing.Ref.InventoryID(); ok {
			if item, found := c.items[id]; found {
				line.Item = &item
			}
		} else if id, ok := ing.Ref.RecipeID(); ok {
			if recipe, found := c.recipes[id]; found {
				resolved := c.ResolveRecipe(recipe)
				line.Recipe = &resolved
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// RecipeCost resolves r and returns its total cost.
func (c *Catalog) RecipeCost(r catalog.Recipe) decimal.Decimal {
	return RecipeCost(c.ResolveRecipe(r).Lines)
}

// RecipeCostPerUnit resolves r and returns its cost per portion.
func (c *Catalog) RecipeCostPerUnit(r catalog.Recipe) decimal.Decimal {
	return RecipeCostPerUnit(c.ResolveRecipe(r))
}

// DishCost resolves d's ingredients and returns its total cost.
func (c *Catalog) DishCost(d catalog.Dish) decimal.Decimal {
	return DishCost(c.ResolveDish(d.Ingredients))
}

// DishSummary returns cost, profit and margin for d.
func (c *Catalog) DishSummary(d catalog.Dish) Summary {
	return Summarize(d.SellPrice, c.DishCost(d))
}
