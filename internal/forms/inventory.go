package forms

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/costline/internal/catalog"
	"github.com/Simplici0/costline/internal/costing"
)

// InventoryForm is the working state of an inventory item. It has no lines.
type InventoryForm struct {
	Name         string                   `json:"name" msgpack:"name"`
	Category     string                   `json:"category" msgpack:"category"`
	Quantity     string                   `json:"quantity" msgpack:"quantity"`
	Size         string                   `json:"size" msgpack:"size"`
	Unit         string                   `json:"unit" msgpack:"unit"`
	PricePerUnit string                   `json:"price_per_unit" msgpack:"price_per_unit"`
	PricePerPack string                   `json:"price_per_pack" msgpack:"price_per_pack"`
	SupplierID   string                   `json:"supplier_id" msgpack:"supplier_id"`
	Errors       catalog.ValidationErrors `json:"errors,omitempty" msgpack:"-"`
	Dirty        bool                     `json:"dirty" msgpack:"dirty"`
}

// Set updates a field by its field key.
func (f *InventoryForm) Set(field, value string) error {
	switch field {
	case catalog.FieldName:
		f.Name = value
	case catalog.FieldCategory:
		f.Category = value
	case catalog.FieldQuantity:
		f.Quantity = value
	case catalog.FieldSize:
		f.Size = value
	case "unit":
		f.Unit = value
	case catalog.FieldPricePerUnit:
		f.PricePerUnit = value
	case catalog.FieldPricePerPack:
		f.PricePerPack = value
	case "supplier_id":
		f.SupplierID = value
	default:
		return ErrUnknownField
	}
	f.Dirty = true
	return nil
}

// Input converts the typed text into a submission.
func (f *InventoryForm) Input() catalog.InventoryItemInput {
	return catalog.InventoryItemInput{
		Name:         f.Name,
		Category:     catalog.Category(f.Category),
		Quantity:     catalog.ParseAmount(f.Quantity),
		Size:         catalog.ParseAmount(f.Size),
		Unit:         f.Unit,
		PricePerUnit: catalog.ParseAmount(f.PricePerUnit),
		PricePerPack: catalog.ParseAmount(f.PricePerPack),
		SupplierID:   f.SupplierID,
	}
}

// CostPerUnit previews the unit cost derived from the typed package pricing.
func (f *InventoryForm) CostPerUnit() decimal.Decimal {
	return costing.CostPerUnit(catalog.InventoryItem{
		PricePerUnit: catalog.ParseAmount(f.PricePerUnit),
		Size:         catalog.ParseAmount(f.Size),
	})
}

// Submit validates the draft. On failure Errors holds the field messages.
func (f *InventoryForm) Submit() (catalog.InventoryItem, bool) {
	errs := catalog.ValidationErrors{}
	checkAmount(errs, catalog.FieldQuantity, f.Quantity)
	checkAmount(errs, catalog.FieldSize, f.Size)
	checkAmount(errs, catalog.FieldPricePerUnit, f.PricePerUnit)
	checkAmount(errs, catalog.FieldPricePerPack, f.PricePerPack)
	item, err := catalog.ValidateInventoryItem(f.Input())
	merge(errs, err)
	if len(errs) == 0 {
		f.Errors = nil
		return item, true
	}
	f.Errors = errs
	return item, false
}

func (f *InventoryForm) Encode() ([]byte, error) { return encode(f) }

func (f *InventoryForm) Decode(payload []byte) error { return decode(payload, f) }
