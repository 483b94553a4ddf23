package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/store"
)

type ExtractionsHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

func (h ExtractionsHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := store.ListExtractionsOpts{
		SourceURL: r.URL.Query().Get("source_url"),
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, "bad_limit", "limit must be an integer")
			return
		}
		opts.Limit = n
	}

	list, err := store.ListExtractions(r.Context(), h.DB, opts)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if list == nil {
		list = []store.Extraction{}
	}
	writeJSON(w, list)
}

func (h ExtractionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var e store.Extraction
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if !e.Data.HasCore() {
		WriteError(w, r, http.StatusBadRequest, "missing_core", "company or position is required")
		return
	}

	id, err := store.SaveExtraction(r.Context(), h.DB, e)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	saved, err := store.GetExtraction(r.Context(), h.DB, id)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, saved)
}

func (h ExtractionsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := extractionID(w, r)
	if !ok {
		return
	}
	e, err := store.GetExtraction(r.Context(), h.DB, id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteError(w, r, http.StatusNotFound, "not_found", "extraction not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, e)
}

func (h ExtractionsHandler) UpdateByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := extractionID(w, r)
	if !ok {
		return
	}
	var e store.Extraction
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	err := store.UpdateExtraction(r.Context(), h.DB, id, e.Data)
	if errors.Is(err, sql.ErrNoRows) {
		WriteError(w, r, http.StatusNotFound, "not_found", "extraction not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	saved, err := store.GetExtraction(r.Context(), h.DB, id)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, saved)
}

func (h ExtractionsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := extractionID(w, r)
	if !ok {
		return
	}
	err := store.DeleteExtraction(r.Context(), h.DB, id)
	if errors.Is(err, sql.ErrNoRows) {
		WriteError(w, r, http.StatusNotFound, "not_found", "extraction not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func extractionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimPrefix(r.URL.Path, "/extractions/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_id", "id must be a positive integer")
		return 0, false
	}
	return id, true
}
