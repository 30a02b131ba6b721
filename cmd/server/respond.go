package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/Simplici0/costline/internal/catalog"
	"github.com/Simplici0/costline/internal/store"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeValidation(w http.ResponseWriter, errs catalog.ValidationErrors) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]catalog.ValidationErrors{"errors": errs})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

// writeStoreError maps store and validation errors onto HTTP responses.
// refField names the error key used for unknown references.
func writeStoreError(w http.ResponseWriter, op string, err error, refField string) {
	var verrs catalog.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeValidation(w, verrs)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrInUse):
		writeError(w, http.StatusConflict, "still used by a recipe or dish")
	case errors.Is(err, store.ErrUnknownReference):
		writeValidation(w, catalog.ValidationErrors{refField: "references an unknown entry"})
	case errors.Is(err, store.ErrEmailTaken):
		writeValidation(w, catalog.ValidationErrors{"email": "email is already registered"})
	default:
		log.Printf("%s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "failed to "+op)
	}
}
