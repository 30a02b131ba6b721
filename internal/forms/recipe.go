package forms

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/costline/internal/catalog"
	"github.com/Simplici0/costline/internal/costing"
)

// RecipeForm is the working state of a recipe being created or edited.
type RecipeForm struct {
	Name      string                   `json:"name" msgpack:"name"`
	BatchSize string                   `json:"batch_size" msgpack:"batch_size"`
	BatchUnit string                   `json:"batch_unit" msgpack:"batch_unit"`
	Units     string                   `json:"units" msgpack:"units"`
	Lines     lines                    `json:"ingredients" msgpack:"ingredients"`
	Errors    catalog.ValidationErrors `json:"errors,omitempty" msgpack:"-"`
	Dirty     bool                     `json:"dirty" msgpack:"dirty"`
}

// RecipePreview is the live cost of a recipe draft.
type RecipePreview struct {
	Cost        decimal.Decimal `json:"cost"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
}

// Set updates a scalar field by its field key.
func (f *RecipeForm) Set(field, value string) error {
	switch field {
	case catalog.FieldName:
		f.Name = value
	case catalog.FieldBatchSize:
		f.BatchSize = value
	case "batch_unit":
		f.BatchUnit = value
	case catalog.FieldUnits:
		f.Units = value
	default:
		return ErrUnknownField
	}
	f.Dirty = true
	return nil
}

func (f *RecipeForm) AddLine(line LineDraft) int {
	f.Dirty = true
	return f.Lines.add(line)
}

func (f *RecipeForm) SetLine(i int, line LineDraft) error {
	if err := f.Lines.set(i, line); err != nil {
		return err
	}
	f.Dirty = true
	return nil
}

func (f *RecipeForm) RemoveLine(i int) error {
	if err := f.Lines.remove(i); err != nil {
		return err
	}
	f.Dirty = true
	return nil
}

// Input converts the typed text into a submission.
func (f *RecipeForm) Input() catalog.RecipeInput {
	in := catalog.RecipeInput{
		Name:        f.Name,
		BatchSize:   catalog.ParseAmount(f.BatchSize),
		BatchUnit:   f.BatchUnit,
		Units:       parseUnits(f.Units),
		Ingredients: make([]catalog.RecipeIngredientInput, 0, len(f.Lines)),
	}
	for _, line := range f.Lines {
		in.Ingredients = append(in.Ingredients, catalog.RecipeIngredientInput{
			InventoryID: line.InventoryID,
			Quantity:    catalog.ParseAmount(line.Quantity),
			Unit:        line.Unit,
		})
	}
	return in
}

// Preview computes the recipe's total and per-portion cost.
func (f *RecipeForm) Preview(c *costing.Catalog) RecipePreview {
	r := catalog.Recipe{Units: parseUnits(f.Units)}
	for _, line := range f.Lines {
		r.Ingredients = append(r.Ingredients, catalog.RecipeIngredient{
			InventoryItemID: strings.TrimSpace(line.InventoryID),
			Quantity:        catalog.OrZero(catalog.ParseAmount(line.Quantity)),
		})
	}
	resolved := c.ResolveRecipe(r)
	return RecipePreview{
		Cost:        costing.RecipeCost(resolved.Lines),
		CostPerUnit: costing.RecipeCostPerUnit(resolved),
	}
}

// Submit validates the draft. On failure Errors holds the field messages.
func (f *RecipeForm) Submit() (catalog.Recipe, bool) {
	errs := catalog.ValidationErrors{}
	checkAmount(errs, catalog.FieldBatchSize, f.BatchSize)
	if strings.TrimSpace(f.Units) != "" && parseUnits(f.Units) == nil {
		errs.Add(catalog.FieldUnits, "must be a whole number")
	}
	for _, line := range f.Lines {
		if strings.TrimSpace(line.RecipeID) != "" {
			errs.Add(catalog.FieldIngredient, "recipes cannot contain other recipes")
		}
		checkAmount(errs, catalog.FieldQuantity, line.Quantity)
	}
	r, err := catalog.ValidateRecipe(f.Input())
	merge(errs, err)
	if len(errs) == 0 {
		f.Errors = nil
		return r, true
	}
	f.Errors = errs
	return r, false
}

func (f *RecipeForm) Encode() ([]byte, error) { return encode(f) }

func (f *RecipeForm) Decode(payload []byte) error { return decode(payload, f) }
