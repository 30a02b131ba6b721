package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/costline/internal/catalog"
	"github.com/Simplici0/costline/internal/costing"
	"github.com/Simplici0/costline/internal/forms"
)

type recipeView struct {
	catalog.Recipe
	Cost             string          `json:"cost"`
	CostPerUnit      string          `json:"cost_per_unit"`
	CostPerUnitExact decimal.Decimal `json:"cost_per_unit_exact"`
}

func newRecipeView(c *costing.Catalog, r catalog.Recipe) recipeView {
	perUnit := c.RecipeCostPerUnit(r)
	return recipeView{
		Recipe:           r,
		Cost:             costing.FormatCurrency(c.RecipeCost(r)),
		CostPerUnit:      costing.FormatUnitCost(perUnit),
		CostPerUnitExact: perUnit,
	}
}

func (s *server) handleRecipesList(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	snapshot, err := s.store.Catalog(r.Context(), owner)
	if err != nil {
		writeStoreError(w, "load recipes", err, "")
		return
	}
	recipes, err := s.store.ListRecipes(r.Context(), owner)
	if err != nil {
		writeStoreError(w, "load recipes", err, "")
		return
	}
	views := make([]recipeView, 0, len(recipes))
	for _, recipe := range recipes {
		views = append(views, newRecipeView(snapshot, recipe))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *server) handleRecipeGet(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	recipe, err := s.store.GetRecipe(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "load recipe", err, "")
		return
	}
	s.writeRecipe(w, r, http.StatusOK, recipe)
}

func (s *server) handleRecipeCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.RecipeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	recipe, err := catalog.ValidateRecipe(in)
	if err != nil {
		writeStoreError(w, "create recipe", err, "")
		return
	}
	created, err := s.store.CreateRecipe(r.Context(), ownerID(r), recipe)
	if err != nil {
		writeStoreError(w, "create recipe", err, catalog.FieldIngredient)
		return
	}
	s.clearDraft(r, forms.KeyRecipeNew)
	s.writeRecipe(w, r, http.StatusCreated, created)
}

func (s *server) handleRecipeUpdate(w http.ResponseWriter, r *http.Request) {
	var in catalog.RecipeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	recipe, err := catalog.ValidateRecipe(in)
	if err != nil {
		writeStoreError(w, "update recipe", err, "")
		return
	}
	updated, err := s.store.UpdateRecipe(r.Context(), ownerID(r), chi.URLParam(r, "id"), recipe)
	if err != nil {
		writeStoreError(w, "update recipe", err, catalog.FieldIngredient)
		return
	}
	s.writeRecipe(w, r, http.StatusOK, updated)
}

func (s *server) handleRecipeDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRecipe(r.Context(), ownerID(r), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "delete recipe", err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRecipePreview(w http.ResponseWriter, r *http.Request) {
	var form forms.RecipeForm
	if !decodeJSON(w, r, &form) {
		return
	}
	snapshot, err := s.store.Catalog(r.Context(), ownerID(r))
	if err != nil {
		writeStoreError(w, "preview recipe", err, "")
		return
	}
	preview := form.Preview(snapshot)
	form.Submit()
	s.metrics.RecordPreview("recipe")
	writeJSON(w, http.StatusOK, map[string]any{
		"cost":          costing.FormatCurrency(preview.Cost),
		"cost_per_unit": costing.FormatUnitCost(preview.CostPerUnit),
		"figures":       preview,
		"errors":        form.Errors,
	})
}

func (s *server) writeRecipe(w http.ResponseWriter, r *http.Request, status int, recipe catalog.Recipe) {
	snapshot, err := s.store.Catalog(r.Context(), ownerID(r))
	if err != nil {
		writeStoreError(w, "cost recipe", err, "")
		return
	}
	writeJSON(w, status, newRecipeView(snapshot, recipe))
}
