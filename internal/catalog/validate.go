package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Field keys used in ValidationErrors.
const (
	FieldName         = "name"
	FieldCategory     = "category"
	FieldQuantity     = "quantity"
	FieldSize         = "size"
	FieldPricePerUnit = "price_per_unit"
	FieldPricePerPack = "price_per_pack"
	FieldBatchSize    = "batch_size"
	FieldUnits        = "units"
	FieldSellPrice    = "sell_price"
	FieldIngredient   = "ingredient"
	FieldDuplicate    = "duplicate"
)

// ValidationErrors maps a field key to a message. It blocks a submission.
type ValidationErrors map[string]string

// Add records msg for field unless the field already has a message.
func (v ValidationErrors) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// checkRange records an error for field when n is too large or too precise.
func (v ValidationErrors) checkRange(field string, n decimal.NullDecimal) {
	if !InRange(n) {
		v.Add(field, "number is out of range")
	}
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// InventoryItemInput is a submitted inventory item.
type InventoryItemInput struct {
	Name         string              `json:"name"`
	Category     Category            `json:"category"`
	Quantity     decimal.NullDecimal `json:"quantity"`
	Size         decimal.NullDecimal `json:"size"`
	Unit         string              `json:"unit"`
	PricePerUnit decimal.NullDecimal `json:"price_per_unit"`
	PricePerPack decimal.NullDecimal `json:"price_per_pack"`
	SupplierID   string              `json:"supplier_id"`
}

// RecipeIngredientInput is one submitted recipe line.
type RecipeIngredientInput struct {
	InventoryID string              `json:"inventory_id"`
	Quantity    decimal.NullDecimal `json:"quantity"`
	Unit        string              `json:"unit"`
}

// RecipeInput is a submitted recipe.
type RecipeInput struct {
	Name        string                  `json:"name"`
	BatchSize   decimal.NullDecimal     `json:"batch_size"`
	BatchUnit   string                  `json:"batch_unit"`
	Units       *int                    `json:"units"`
	Ingredients []RecipeIngredientInput `json:"ingredients"`
}

// DishIngredientInput is one submitted dish line. Exactly one of InventoryID
// and RecipeID must be set.
type DishIngredientInput struct {
	InventoryID string              `json:"inventory_id"`
	RecipeID    string              `json:"recipe_id"`
	Quantity    decimal.NullDecimal `json:"quantity"`
	Unit        string              `json:"unit"`
}

// DishInput is a submitted dish.
type DishInput struct {
	Name        string                `json:"name"`
	SellPrice   decimal.NullDecimal   `json:"sell_price"`
	Ingredients []DishIngredientInput `json:"ingredients"`
}

// SupplierInput is a submitted supplier.
type SupplierInput struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
}

// ValidateSupplier checks in and returns the supplier it describes.
func ValidateSupplier(in SupplierInput) (Supplier, error) {
	errs := ValidationErrors{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs.Add(FieldName, "name is required")
	}
	return Supplier{
		Name:    name,
		Contact: strings.TrimSpace(in.Contact),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Notes:   strings.TrimSpace(in.Notes),
	}, errs.orNil()
}

// ValidateInventoryItem checks in and returns the item it describes.
func ValidateInventoryItem(in InventoryItemInput) (InventoryItem, error) {
	errs := ValidationErrors{}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs.Add(FieldName, "name is required")
	}
	if !in.Category.Valid() {
		errs.Add(FieldCategory, "category is not recognised")
	}
	errs.checkRange(FieldPricePerUnit, in.PricePerUnit)
	errs.checkRange(FieldSize, in.Size)
	errs.checkRange(FieldQuantity, in.Quantity)
	errs.checkRange(FieldPricePerPack, in.PricePerPack)
	if !in.PricePerUnit.Valid {
		errs.Add(FieldPricePerUnit, "price is required")
	} else if in.PricePerUnit.Decimal.IsNegative() {
		errs.Add(FieldPricePerUnit, "price must not be negative")
	}
	if in.Size.Valid && !in.Size.Decimal.IsPositive() {
		errs.Add(FieldSize, "package size must be greater than 0")
	}
	if in.Quantity.Valid && in.Quantity.Decimal.IsNegative() {
		errs.Add(FieldQuantity, "quantity must not be negative")
	}
	if in.PricePerPack.Valid && in.PricePerPack.Decimal.IsNegative() {
		errs.Add(FieldPricePerPack, "pack price must not be negative")
	}

	return InventoryItem{
		Name:         name,
		Category:     in.Category,
		Quantity:     in.Quantity,
		Size:         in.Size,
		Unit:         strings.TrimSpace(in.Unit),
		PricePerUnit: in.PricePerUnit,
		PricePerPack: in.PricePerPack,
		SupplierID:   strings.TrimSpace(in.SupplierID),
	}, errs.orNil()
}

// ValidateRecipe checks in and returns the recipe it describes.
func ValidateRecipe(in RecipeInput) (Recipe, error) {
	errs := ValidationErrors{}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs.Add(FieldName, "name is required")
	}
	errs.checkRange(FieldBatchSize, in.BatchSize)
	if in.BatchSize.Valid && !in.BatchSize.Decimal.IsPositive() {
		errs.Add(FieldBatchSize, "batch size must be greater than 0")
	}
	if in.Units != nil && *in.Units < 0 {
		errs.Add(FieldUnits, "units must not be negative")
	}

	seen := make(map[string]bool, len(in.Ingredients))
	lines := make([]RecipeIngredient, 0, len(in.Ingredients))
	for _, line := range in.Ingredients {
		id := strings.TrimSpace(line.InventoryID)
		if id == "" {
			errs.Add(FieldIngredient, "each ingredient must reference an inventory item")
			continue
		}
		if seen[id] {
			errs.Add(FieldDuplicate, "each inventory item may appear only once")
		}
		seen[id] = true
		errs.checkRange(FieldQuantity, line.Quantity)
		if !Positive(line.Quantity) {
			errs.Add(FieldQuantity, "ingredient quantities must be greater than 0")
		}
		lines = append(lines, RecipeIngredient{
			InventoryItemID: id,
			Quantity:        OrZero(line.Quantity),
			Unit:            strings.TrimSpace(line.Unit),
		})
	}

	return Recipe{
		Name:        name,
		BatchSize:   in.BatchSize,
		BatchUnit:   strings.TrimSpace(in.BatchUnit),
		Units:       in.Units,
		Ingredients: lines,
	}, errs.orNil()
}

// ValidateDish checks in and returns the dish it describes. A line with both
// or neither reference set yields a single "ingredient" error.
func ValidateDish(in DishInput) (Dish, error) {
	errs := ValidationErrors{}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs.Add(FieldName, "name is required")
	}
	errs.checkRange(FieldSellPrice, in.SellPrice)
	if !Positive(in.SellPrice) {
		errs.Add(FieldSellPrice, "sell price must be greater than 0")
	}

	seenItems := make(map[string]bool)
	seenRecipes := make(map[string]bool)
	lines := make([]DishIngredient, 0, len(in.Ingredients))
	for _, line := range in.Ingredients {
		itemID := strings.TrimSpace(line.InventoryID)
		recipeID := strings.TrimSpace(line.RecipeID)
		if (itemID == "") == (recipeID == "") {
			errs.Add(FieldIngredient, "each ingredient must reference exactly one inventory item or recipe")
			continue
		}

		var ref IngredientRef
		if itemID != "" {
			if seenItems[itemID] {
				errs.Add(FieldDuplicate, "each inventory item or recipe may appear only once")
			}
			seenItems[itemID] = true
			ref = InventoryRef(itemID)
		} else {
			if seenRecipes[recipeID] {
				errs.Add(FieldDuplicate, "each inventory item or recipe may appear only once")
			}
			seenRecipes[recipeID] = true
			ref = RecipeRef(recipeID)
		}

		errs.checkRange(FieldQuantity, line.Quantity)
		if !Positive(line.Quantity) {
			errs.Add(FieldQuantity, "ingredient quantities must be greater than 0")
		}
		lines = append(lines, DishIngredient{
			Ref:      ref,
			Quantity: OrZero(line.Quantity),
			Unit:     strings.TrimSpace(line.Unit),
		})
	}

	return Dish{
		Name:        name,
		SellPrice:   in.SellPrice,
		Ingredients: lines,
	}, errs.orNil()
}
