package httpapi

import (
	"encoding/json"
	"net/http"

	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/extract"
)

type ExtractHandler struct {
	Service *extract.Service
	Hub     *events.Hub
}

type extractURLReq struct {
	URL string `json:"url"`
}

type extractEmailReq struct {
	Text string `json:"text"`
}

func (h ExtractHandler) FromURL(w http.ResponseWriter, r *http.Request) {
	var req extractURLReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if req.URL == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_url", "url is required")
		return
	}

	res := h.Service.ExtractFromURL(r.Context(), req.URL)
	h.publish(r, res.Success, map[string]any{
		"url":        req.URL,
		"strategy":   res.Strategy,
		"confidence": res.Confidence,
	})
	writeJSON(w, res)
}

func (h ExtractHandler) FromEmail(w http.ResponseWriter, r *http.Request) {
	var req extractEmailReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if req.Text == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_text", "text is required")
		return
	}

	res := h.Service.ExtractFromEmail(r.Context(), req.Text)
	h.publish(r, res.Success, map[string]any{
		"strategy":   res.Strategy,
		"confidence": res.Confidence,
	})
	writeJSON(w, res)
}

func (h ExtractHandler) Ensemble(w http.ResponseWriter, r *http.Request) {
	var req extractURLReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if req.URL == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_url", "url is required")
		return
	}

	res := h.Service.ExtractEnsemble(r.Context(), req.URL)
	h.publish(r, res.Success, map[string]any{
		"url":        req.URL,
		"strategy":   res.Strategy,
		"confidence": res.Confidence,
	})
	writeJSON(w, res)
}

func (h ExtractHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.Service.ClearCache()
	if h.Hub != nil {
		h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.TypeCacheCleared, 1, nil))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h ExtractHandler) publish(r *http.Request, ok bool, data map[string]any) {
	if h.Hub == nil {
		return
	}
	typ := events.TypeExtractionDone
	if !ok {
		typ = events.TypeExtractionFailed
	}
	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), typ, 1, data))
}
