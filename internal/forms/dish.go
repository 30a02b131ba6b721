package forms

import (
	"strings"

	"github.com/Simplici0/costline/internal/catalog"
	"github.com/Simplici0/costline/internal/costing"
)

// DishForm is the working state of a dish being created or edited.
type DishForm struct {
	Name      string                   `json:"name" msgpack:"name"`
	SellPrice string                   `json:"sell_price" msgpack:"sell_price"`
	Lines     lines                    `json:"ingredients" msgpack:"ingredients"`
	Errors    catalog.ValidationErrors `json:"errors,omitempty" msgpack:"-"`
	Dirty     bool                     `json:"dirty" msgpack:"dirty"`
}

// Set updates a scalar field by its field key.
func (f *DishForm) Set(field, value string) error {
	switch field {
	case catalog.FieldName:
		f.Name = value
	case catalog.FieldSellPrice:
		f.SellPrice = value
	default:
		return ErrUnknownField
	}
	f.Dirty = true
	return nil
}

func (f *DishForm) AddLine(line LineDraft) int {
	f.Dirty = true
	return f.Lines.add(line)
}

func (f *DishForm) SetLine(i int, line LineDraft) error {
	if err := f.Lines.set(i, line); err != nil {
		return err
	}
	f.Dirty = true
	return nil
}

func (f *DishForm) RemoveLine(i int) error {
	if err := f.Lines.remove(i); err != nil {
		return err
	}
	f.Dirty = true
	return nil
}

// Input converts the typed text into a submission. Unparsable numbers become
// null amounts.
func (f *DishForm) Input() catalog.DishInput {
	in := catalog.DishInput{
		Name:        f.Name,
		SellPrice:   catalog.ParseAmount(f.SellPrice),
		Ingredients: make([]catalog.DishIngredientInput, 0, len(f.Lines)),
	}
	for _, line := range f.Lines {
		in.Ingredients = append(in.Ingredients, catalog.DishIngredientInput{
			InventoryID: line.InventoryID,
			RecipeID:    line.RecipeID,
			Quantity:    catalog.ParseAmount(line.Quantity),
			Unit:        line.Unit,
		})
	}
	return in
}

// Preview computes cost, profit and margin for the current draft. Lines that
// do not reference exactly one item or recipe contribute nothing.
func (f *DishForm) Preview(c *costing.Catalog) costing.Summary {
	dish := catalog.Dish{SellPrice: catalog.ParseAmount(f.SellPrice)}
	for _, line := range f.Lines {
		itemID := strings.TrimSpace(line.InventoryID)
		recipeID := strings.TrimSpace(line.RecipeID)
		var ref catalog.IngredientRef
		switch {
		case itemID != "" && recipeID == "":
			ref = catalog.InventoryRef(itemID)
		case recipeID != "" && itemID == "":
			ref = catalog.RecipeRef(recipeID)
		}
		dish.Ingredients = append(dish.Ingredients, catalog.DishIngredient{
			Ref:      ref,
			Quantity: catalog.OrZero(catalog.ParseAmount(line.Quantity)),
		})
	}
	return c.DishSummary(dish)
}

// Submit validates the draft. On failure Errors holds the field messages.
func (f *DishForm) Submit() (catalog.Dish, bool) {
	errs := catalog.ValidationErrors{}
	checkAmount(errs, catalog.FieldSellPrice, f.SellPrice)
	for _, line := range f.Lines {
		checkAmount(errs, catalog.FieldQuantity, line.Quantity)
	}
	dish, err := catalog.ValidateDish(f.Input())
	merge(errs, err)
	if len(errs) == 0 {
		f.Errors = nil
		return dish, true
	}
	f.Errors = errs
	return dish, false
}

func (f *DishForm) Encode() ([]byte, error) { return encode(f) }

func (f *DishForm) Decode(payload []byte) error { return decode(payload, f) }
