package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/costline/internal/catalog"
	"github.com/Simplici0/costline/internal/costing"
	"github.com/Simplici0/costline/internal/export"
	"github.com/Simplici0/costline/internal/forms"
	"github.com/Simplici0/costline/internal/store"
)

type inventoryView struct {
	catalog.InventoryItem
	CostPerUnit      string          `json:"cost_per_unit"`
	CostPerUnitExact decimal.Decimal `json:"cost_per_unit_exact"`
}

func newInventoryView(item catalog.InventoryItem) inventoryView {
	cost := costing.CostPerUnit(item)
	return inventoryView{
		InventoryItem:    item,
		CostPerUnit:      costing.FormatUnitCost(cost),
		CostPerUnitExact: cost,
	}
}

// inventoryFilter reads the category and q query parameters.
func inventoryFilter(r *http.Request) (store.InventoryFilter, bool) {
	q := r.URL.Query()
	f := store.InventoryFilter{
		Category: catalog.Category(strings.TrimSpace(q.Get("category"))),
		Query:    strings.TrimSpace(q.Get("q")),
	}
	if f.Category != "" && !f.Category.Valid() {
		return f, false
	}
	return f, true
}

func (s *server) handleInventoryList(w http.ResponseWriter, r *http.Request) {
	filter, ok := inventoryFilter(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	items, err := s.store.ListInventory(r.Context(), ownerID(r), filter)
	if err != nil {
		writeStoreError(w, "load inventory", err, "")
		return
	}
	views := make([]inventoryView, 0, len(items))
	for _, item := range items {
		views = append(views, newInventoryView(item))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *server) handleInventoryExport(w http.ResponseWriter, r *http.Request) {
	filter, ok := inventoryFilter(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	owner := ownerID(r)
	items, err := s.store.ListInventory(r.Context(), owner, filter)
	if err != nil {
		writeStoreError(w, "load inventory", err, "")
		return
	}
	suppliers, err := s.store.ListSuppliers(r.Context(), owner)
	if err != nil {
		writeStoreError(w, "load suppliers", err, "")
		return
	}
	names := make(map[string]string, len(suppliers))
	for _, sup := range suppliers {
		names[sup.ID] = sup.Name
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.csv"`)
	if err := export.InventoryCSV(w, items, names); err != nil {
		writeStoreError(w, "export inventory", err, "")
	}
}

func (s *server) handleInventoryGet(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.GetInventoryItem(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "load inventory item", err, "")
		return
	}
	writeJSON(w, http.StatusOK, newInventoryView(item))
}

func (s *server) handleInventoryCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.InventoryItemInput
	if !decodeJSON(w, r, &in) {
		return
	}
	item, err := catalog.ValidateInventoryItem(in)
	if err != nil {
		writeStoreError(w, "create inventory item", err, "")
		return
	}
	created, err := s.store.CreateInventoryItem(r.Context(), ownerID(r), item)
	if err != nil {
		writeStoreError(w, "create inventory item", err, "supplier_id")
		return
	}
	s.clearDraft(r, forms.KeyInventoryNew)
	writeJSON(w, http.StatusCreated, newInventoryView(created))
}

func (s *server) handleInventoryUpdate(w http.ResponseWriter, r *http.Request) {
	var in catalog.InventoryItemInput
	if !decodeJSON(w, r, &in) {
		return
	}
	item, err := catalog.ValidateInventoryItem(in)
	if err != nil {
		writeStoreError(w, "update inventory item", err, "")
		return
	}
	updated, err := s.store.UpdateInventoryItem(r.Context(), ownerID(r), chi.URLParam(r, "id"), item)
	if err != nil {
		writeStoreError(w, "update inventory item", err, "supplier_id")
		return
	}
	writeJSON(w, http.StatusOK, newInventoryView(updated))
}

func (s *server) handleInventoryDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteInventoryItem(r.Context(), ownerID(r), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "delete inventory item", err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
