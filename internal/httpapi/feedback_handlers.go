package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/extract"
)

type FeedbackHandler struct {
	Service *extract.Service
	Hub     *events.Hub
}

type feedbackReq struct {
	URL       string              `json:"url"`
	Original  domain.ExtractedJob `json:"original"`
	Corrected domain.ExtractedJob `json:"corrected"`
	Strategy  string              `json:"strategy"`
}

func (h FeedbackHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req feedbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_url", "url is required")
		return
	}

	h.Service.RecordFeedback(r.Context(), req.URL, req.Original, req.Corrected, req.Strategy)

	if h.Hub != nil {
		h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.TypeFeedbackRecorded, 1, map[string]any{
			"url": req.URL,
		}))
	}
	writeJSON(w, map[string]any{"ok": true})
}

// Insights serves /insights/{domain}.
func (h FeedbackHandler) Insights(w http.ResponseWriter, r *http.Request) {
	domainName := strings.TrimPrefix(r.URL.Path, "/insights/")
	if domainName == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_domain", "domain is required")
		return
	}
	writeJSON(w, h.Service.Learner().DomainInsights(domainName))
}

// Patterns serves /patterns/{domain}.
func (h FeedbackHandler) Patterns(w http.ResponseWriter, r *http.Request) {
	domainName := strings.TrimPrefix(r.URL.Path, "/patterns/")
	if domainName == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_domain", "domain is required")
		return
	}
	writeJSON(w, h.Service.Learner().Patterns(domainName))
}
