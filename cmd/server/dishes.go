package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/costline/internal/catalog"
	"github.com/Simplici0/costline/internal/costing"
	"github.com/Simplici0/costline/internal/forms"
)

type dishView struct {
	catalog.Dish
	Summary costing.Display `json:"summary"`
}

func newDishView(c *costing.Catalog, d catalog.Dish) dishView {
	return dishView{Dish: d, Summary: c.DishSummary(d).Display()}
}

func (s *server) handleDishesList(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	snapshot, err := s.store.Catalog(r.Context(), owner)
	if err != nil {
		writeStoreError(w, "load dishes", err, "")
		return
	}
	dishes, err := s.store.ListDishes(r.Context(), owner)
	if err != nil {
		writeStoreError(w, "load dishes", err, "")
		return
	}
	views := make([]dishView, 0, len(dishes))
	for _, dish := range dishes {
		views = append(views, newDishView(snapshot, dish))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *server) handleDishGet(w http.ResponseWriter, r *http.Request) {
	dish, err := s.store.GetDish(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "load dish", err, "")
		return
	}
	s.writeDish(w, r, http.StatusOK, dish)
}

func (s *server) handleDishCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.DishInput
	if !decodeJSON(w, r, &in) {
		return
	}
	dish, err := catalog.ValidateDish(in)
	if err != nil {
		writeStoreError(w, "create dish", err, "")
		return
	}
	created, err := s.store.CreateDish(r.Context(), ownerID(r), dish)
	if err != nil {
		writeStoreError(w, "create dish", err, catalog.FieldIngredient)
		return
	}
	s.clearDraft(r, forms.KeyDishNew)
	s.writeDish(w, r, http.StatusCreated, created)
}

func (s *server) handleDishUpdate(w http.ResponseWriter, r *http.Request) {
	var in catalog.DishInput
	if !decodeJSON(w, r, &in) {
		return
	}
	dish, err := catalog.ValidateDish(in)
	if err != nil {
		writeStoreError(w, "update dish", err, "")
		return
	}
	updated, err := s.store.UpdateDish(r.Context(), ownerID(r), chi.URLParam(r, "id"), dish)
	if err != nil {
		writeStoreError(w, "update dish", err, catalog.FieldIngredient)
		return
	}
	s.writeDish(w, r, http.StatusOK, updated)
}

func (s *server) handleDishDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDish(r.Context(), ownerID(r), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "delete dish", err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDishPreview costs an unsaved dish form. Validation messages are
// returned alongside the figures but never block the preview.
func (s *server) handleDishPreview(w http.ResponseWriter, r *http.Request) {
	var form forms.DishForm
	if !decodeJSON(w, r, &form) {
		return
	}
	snapshot, err := s.store.Catalog(r.Context(), ownerID(r))
	if err != nil {
		writeStoreError(w, "preview dish", err, "")
		return
	}
	summary := form.Preview(snapshot)
	form.Submit()
	s.metrics.RecordPreview("dish")
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": summary.Display(),
		"figures": summary,
		"errors":  form.Errors,
	})
}

func (s *server) writeDish(w http.ResponseWriter, r *http.Request, status int, dish catalog.Dish) {
	snapshot, err := s.store.Catalog(r.Context(), ownerID(r))
	if err != nil {
		writeStoreError(w, "cost dish", err, "")
		return
	}
	writeJSON(w, status, newDishView(snapshot, dish))
}
