package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/costline/internal/catalog"
)

func (s *server) handleSuppliersList(w http.ResponseWriter, r *http.Request) {
	suppliers, err := s.store.ListSuppliers(r.Context(), ownerID(r))
	if err != nil {
		writeStoreError(w, "load suppliers", err, "")
		return
	}
	writeJSON(w, http.StatusOK, suppliers)
}

func (s *server) handleSupplierCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.SupplierInput
	if !decodeJSON(w, r, &in) {
		return
	}
	sup, err := catalog.ValidateSupplier(in)
	if err != nil {
		writeStoreError(w, "create supplier", err, "")
		return
	}
	created, err := s.store.CreateSupplier(r.Context(), ownerID(r), sup)
	if err != nil {
		writeStoreError(w, "create supplier", err, "")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleSupplierUpdate(w http.ResponseWriter, r *http.Request) {
	var in catalog.SupplierInput
	if !decodeJSON(w, r, &in) {
		return
	}
	sup, err := catalog.ValidateSupplier(in)
	if err != nil {
		writeStoreError(w, "update supplier", err, "")
		return
	}
	updated, err := s.store.UpdateSupplier(r.Context(), ownerID(r), chi.URLParam(r, "id"), sup)
	if err != nil {
		writeStoreError(w, "update supplier", err, "")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleSupplierDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSupplier(r.Context(), ownerID(r), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "delete supplier", err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
