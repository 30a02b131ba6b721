package catalog

import "encoding/json"

// RefKind tells which entity an IngredientRef points at.
type RefKind uint8

const (
	RefNone RefKind = iota
	RefInventory
	RefRecipe
)

func (k RefKind) String() string {
	switch k {
	case RefInventory:
		return "inventory"
	case RefRecipe:
		return "recipe"
	default:
		return "none"
	}
}

// IngredientRef points a dish line at exactly one inventory item or recipe.
// Only InventoryRef and RecipeRef produce a non-zero value; the zero value is an
// unresolved reference.
type IngredientRef struct {
	kind RefKind
	id   string
}

// InventoryRef references an inventory item.
func InventoryRef(id string) IngredientRef {
	if id == "" {
		return IngredientRef{}
	}
	return IngredientRef{kind: RefInventory, id: id}
}

// RecipeRef references a recipe.
func RecipeRef(id string) IngredientRef {
	if id == "" {
		return IngredientRef{}
	}
	return IngredientRef{kind: RefRecipe, id: id}
}

func (r IngredientRef) Kind() RefKind { return r.kind }
func (r IngredientRef) ID() string    { return r.id }
func (r IngredientRef) IsZero() bool  { return r.kind == RefNone }

// InventoryID returns the referenced inventory item id, if any.
func (r IngredientRef) InventoryID() (string, bool) {
	return r.id, r.kind == RefInventory
}

// RecipeID returns the referenced recipe id, if any.
func (r IngredientRef) RecipeID() (string, bool) {
	return r.id, r.kind == RefRecipe
}

type dishIngredientJSON struct {
	InventoryID *string `json:"inventory_id"`
	RecipeID    *string `json:"recipe_id"`
	Quantity    string  `json:"quantity"`
	Unit        string  `json:"unit"`
}

// MarshalJSON flattens the reference into the inventory_id / recipe_id pair
// clients submit.
func (d DishIngredient) MarshalJSON() ([]byte, error) {
	out := dishIngredientJSON{Quantity: d.Quantity.String(), Unit: d.Unit}
	if id, ok := d.Ref.InventoryID(); ok {
		out.InventoryID = &id
	}
	if id, ok := d.Ref.RecipeID(); ok {
		out.RecipeID = &id
	}
	return json.Marshal(out)
}
