// Package forms holds the editable, text-valued state behind the entity
// forms: scalar fields as typed, ingredient line drafts, field errors and a
// dirty flag. Forms recompute costs on demand and validate on submit.
package forms

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Simplici0/costline/internal/catalog"
)

// Draft keys for create flows. Edit flows keep no draft.
const (
	KeyInventoryNew = "inventory:new"
	KeyRecipeNew    = "recipe:new"
	KeyDishNew      = "dish:new"
)

var (
	ErrUnknownKey   = errors.New("unknown draft key")
	ErrUnknownField = errors.New("unknown form field")
	ErrLineRange    = errors.New("ingredient line out of range")
)

// Form is a draft-capable entity form.
type Form interface {
	Set(field, value string) error
	Encode() ([]byte, error)
	Decode(payload []byte) error
}

// New returns an empty form for a create-flow draft key.
func New(key string) (Form, error) {
	switch key {
	case KeyInventoryNew:
		return &InventoryForm{}, nil
	case KeyRecipeNew:
		return &RecipeForm{}, nil
	case KeyDishNew:
		return &DishForm{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
}

// LineDraft is one ingredient row as typed. Recipe forms ignore RecipeID.
type LineDraft struct {
	InventoryID string `json:"inventory_id" msgpack:"inventory_id"`
	RecipeID    string `json:"recipe_id,omitempty" msgpack:"recipe_id,omitempty"`
	Quantity    string `json:"quantity" msgpack:"quantity"`
	Unit        string `json:"unit" msgpack:"unit"`
}

type lines []LineDraft

func (l *lines) add(line LineDraft) int {
	*l = append(*l, line)
	return len(*l) - 1
}

func (l lines) set(i int, line LineDraft) error {
	if i < 0 || i >= len(l) {
		return fmt.Errorf("%w: %d", ErrLineRange, i)
	}
	l[i] = line
	return nil
}

func (l *lines) remove(i int) error {
	if i < 0 || i >= len(*l) {
		return fmt.Errorf("%w: %d", ErrLineRange, i)
	}
	*l = append((*l)[:i], (*l)[i+1:]...)
	return nil
}

// checkAmount flags text that is present but not a number.
func checkAmount(errs catalog.ValidationErrors, field, raw string) {
	if strings.TrimSpace(raw) != "" && !catalog.ParseAmount(raw).Valid {
		errs.Add(field, "must be a number")
	}
}

// parseUnits parses a whole-number unit count. Blank or invalid text is nil.
func parseUnits(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// merge copies the validation error map out of err into errs.
func merge(errs catalog.ValidationErrors, err error) {
	var verrs catalog.ValidationErrors
	if errors.As(err, &verrs) {
		for field, msg := range verrs {
			errs.Add(field, msg)
		}
	}
}

func encode(v any) ([]byte, error) {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	return payload, nil
}

func decode(payload []byte, v any) error {
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode draft: %w", err)
	}
	return nil
}
