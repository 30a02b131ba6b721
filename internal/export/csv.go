// Package export renders inventory lists as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/Simplici0/costline/internal/catalog"
	"github.com/Simplici0/costline/internal/costing"
)

var inventoryHeader = []string{
	"name",
	"category",
	"quantity",
	"size",
	"unit",
	"price_per_unit",
	"price_per_pack",
	"cost_per_unit",
	"supplier",
}

// InventoryCSV writes a header row then one row per item, in the order given.
// suppliers maps supplier id to display name; unknown ids render blank.
func InventoryCSV(w io.Writer, items []catalog.InventoryItem, suppliers map[string]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(inventoryHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, item := range items {
		record := []string{
			cell(item.Name),
			string(item.Category),
			catalog.FormatAmount(item.Quantity),
			catalog.FormatAmount(item.Size),
			cell(item.Unit),
			catalog.FormatAmount(item.PricePerUnit),
			catalog.FormatAmount(item.PricePerPack),
			costing.FormatUnitCost(costing.CostPerUnit(item)),
			cell(suppliers[item.SupplierID]),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %q: %w", item.Name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// cell quotes free text that a spreadsheet would otherwise run as a formula.
func cell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
