// Package catalog defines the back-office entities: inventory items priced per
// package, recipes built from inventory, and dishes built from either.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category tags an inventory item.
type Category string

const (
	CategoryProduce    Category = "produce"
	CategoryDry        Category = "dry"
	CategoryMeat       Category = "meat"
	CategoryDairy      Category = "dairy"
	CategoryBeverage   Category = "beverage"
	CategoryCleaning   Category = "cleaning"
	CategorySmallwares Category = "smallwares"
	CategoryEquipment  Category = "equipment"
	CategoryOther      Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryProduce,
	CategoryDry,
	CategoryMeat,
	CategoryDairy,
	CategoryBeverage,
	CategoryCleaning,
	CategorySmallwares,
	CategoryEquipment,
	CategoryOther,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Supplier is where inventory is bought from.
type Supplier struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InventoryItem is a stocked good. PricePerUnit is the price of one package
// holding Size units, not the price of a single unit.
type InventoryItem struct {
	ID           string              `json:"id"`
	OwnerID      string              `json:"-"`
	Name         string              `json:"name"`
	Category     Category            `json:"category"`
	Quantity     decimal.NullDecimal `json:"quantity"`
	Size         decimal.NullDecimal `json:"size"`
	Unit         string              `json:"unit"`
	PricePerUnit decimal.NullDecimal `json:"price_per_unit"`
	PricePerPack decimal.NullDecimal `json:"price_per_pack"`
	SupplierID   string              `json:"supplier_id,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// RecipeIngredient consumes Quantity of one inventory item.
type RecipeIngredient struct {
	InventoryItemID string          `json:"inventory_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
}

// Recipe is a batch preparation. Units is the number of discrete portions the
// batch yields; nil means unknown.
type Recipe struct {
	ID          string              `json:"id"`
	OwnerID     string              `json:"-"`
	Name        string              `json:"name"`
	BatchSize   decimal.NullDecimal `json:"batch_size"`
	BatchUnit   string              `json:"batch_unit"`
	Units       *int                `json:"units"`
	Ingredients []RecipeIngredient  `json:"ingredients"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// DishIngredient consumes Quantity of either an inventory item or a recipe.
type DishIngredient struct {
	Ref      IngredientRef   `json:"-"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
}

// Dish is a menu item sold at SellPrice.
type Dish struct {
	ID          string              `json:"id"`
	OwnerID     string              `json:"-"`
	Name        string              `json:"name"`
	SellPrice   decimal.NullDecimal `json:"sell_price"`
	Ingredients []DishIngredient    `json:"ingredients"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
