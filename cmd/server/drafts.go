package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/costline/internal/costing"
	"github.com/Simplici0/costline/internal/forms"
	"github.com/Simplici0/costline/internal/store"
)

func (s *server) handleDraftGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	form, err := forms.New(key)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft, err := s.store.LoadDraft(r.Context(), ownerID(r), key)
	if err != nil {
		writeStoreError(w, "load draft", err, "")
		return
	}
	if err := form.Decode(draft.Payload); err != nil {
		// A payload that no longer decodes is dropped rather than served.
		log.Printf("discard draft %s: %v", key, err)
		s.clearDraft(r, key)
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (s *server) handleDraftSave(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	form, err := forms.New(key)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !decodeJSON(w, r, form) {
		return
	}
	payload, err := form.Encode()
	if err != nil {
		writeStoreError(w, "save draft", err, "")
		return
	}
	if err := s.store.SaveDraft(r.Context(), ownerID(r), key, payload); err != nil {
		writeStoreError(w, "save draft", err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDraftEdit applies field and line edits to the stored draft, saves it
// and returns the form with a fresh cost preview. A missing draft starts empty.
func (s *server) handleDraftEdit(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	form, err := forms.New(key)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var edits []forms.Edit
	if !decodeJSON(w, r, &edits) {
		return
	}

	owner := ownerID(r)
	draft, err := s.store.LoadDraft(r.Context(), owner, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		writeStoreError(w, "load draft", err, "")
		return
	default:
		if err := form.Decode(draft.Payload); err != nil {
			log.Printf("discard draft %s: %v", key, err)
			if form, err = forms.New(key); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
	}

	if err := forms.Apply(form, edits...); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	payload, err := form.Encode()
	if err != nil {
		writeStoreError(w, "save draft", err, "")
		return
	}
	if err := s.store.SaveDraft(r.Context(), owner, key, payload); err != nil {
		writeStoreError(w, "save draft", err, "")
		return
	}

	preview, err := s.draftPreview(r, form)
	if err != nil {
		writeStoreError(w, "preview draft", err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"form":    form,
		"preview": preview,
	})
}

// draftPreview costs the form against the owner's catalog and fills in its
// validation messages without blocking.
func (s *server) draftPreview(r *http.Request, form forms.Form) (any, error) {
	if f, ok := form.(*forms.InventoryForm); ok {
		f.Submit()
		cost := f.CostPerUnit()
		return map[string]any{
			"cost_per_unit":       costing.FormatUnitCost(cost),
			"cost_per_unit_exact": cost,
		}, nil
	}

	snapshot, err := s.store.Catalog(r.Context(), ownerID(r))
	if err != nil {
		return nil, err
	}
	switch f := form.(type) {
	case *forms.DishForm:
		summary := f.Preview(snapshot)
		f.Submit()
		s.metrics.RecordPreview("dish")
		return map[string]any{"summary": summary.Display(), "figures": summary}, nil
	case *forms.RecipeForm:
		preview := f.Preview(snapshot)
		f.Submit()
		s.metrics.RecordPreview("recipe")
		return map[string]any{
			"cost":          costing.FormatCurrency(preview.Cost),
			"cost_per_unit": costing.FormatUnitCost(preview.CostPerUnit),
			"figures":       preview,
		}, nil
	default:
		return nil, fmt.Errorf("no preview for %T", form)
	}
}

func (s *server) handleDraftClear(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if _, err := forms.New(key); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.ClearDraft(r.Context(), ownerID(r), key); err != nil {
		writeStoreError(w, "clear draft", err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clearDraft drops a create-flow draft once the entity is saved. Failures are
// logged only.
func (s *server) clearDraft(r *http.Request, key string) {
	if err := s.store.ClearDraft(r.Context(), ownerID(r), key); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("clear draft %s: %v", key, err)
	}
}
