// Package extract is the pipeline's single entry point. A Service owns the
// URL cache, the confidence scorer and the learning store, and sequences
// the strategies cheapest-first: URL parsing costs microseconds and no
// network, so it runs before any proxy fetch or API call.
package extract

import (
	"context"
	"log"
	"net/url"
	"strings"
	"sync"

	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/extract/confidence"
	"jobtrack-engine/internal/extract/ensemble"
	"jobtrack-engine/internal/extract/htmlmeta"
	"jobtrack-engine/internal/extract/textparse"
	"jobtrack-engine/internal/extract/urlparse"
	"jobtrack-engine/internal/learn"
)

const (
	errInvalidURL   = "Invalid URL format: provide a full http(s) link to the posting"
	diagPartial     = "partial extraction: please review and fill in the missing fields"
	diagTotalFail   = "could not extract automatically; please fill in the details manually"
	diagNotesOnly   = "no structured fields found; raw text kept in notes"
	errTotalFailure = "no strategy extracted any field"
)

// PageFetcher retrieves a posting page's HTML. *fetch.Fetcher satisfies it;
// tests substitute a stub.
type PageFetcher interface {
	Fetch(ctx context.Context, target string) (string, error)
}

// JobSearcher is the optional third-party lookup. *searchapi.Client
// satisfies it; a disabled client is skipped, never an error.
type JobSearcher interface {
	Enabled() bool
	Search(ctx context.Context, query string) (domain.ExtractedJob, error)
}

// QueryDeriver turns a posting URL into search terms for the JobSearcher.
type QueryDeriver func(rawURL string) string

// Service is the orchestrator. Construct one per process and share it; the
// cache and both learning maps are mutex-guarded, so concurrent extraction
// calls for different URLs are safe.
type Service struct {
	mu    sync.Mutex
	cache map[string]domain.ExtractionResult

	fetcher PageFetcher
	search  JobSearcher
	derive  QueryDeriver
	scorer  *confidence.Scorer
	learner *learn.Store
}

func NewService(fetcher PageFetcher, search JobSearcher, derive QueryDeriver, scorer *confidence.Scorer, learner *learn.Store) *Service {
	if scorer == nil {
		scorer = confidence.NewScorer()
	}
	if learner == nil {
		learner = learn.NewStore(nil)
	}
	return &Service{
		cache:   make(map[string]domain.ExtractionResult),
		fetcher: fetcher,
		search:  search,
		derive:  derive,
		scorer:  scorer,
		learner: learner,
	}
}

func (s *Service) Scorer() *confidence.Scorer { return s.scorer }
func (s *Service) Learner() *learn.Store      { return s.learner }

// ExtractFromURL never returns an error; every failure path resolves to a
// result with Error and Diagnostic set so the caller can always render a
// manual-entry form.
func (s *Service) ExtractFromURL(ctx context.Context, rawURL string) domain.ExtractionResult {
	rawURL = strings.TrimSpace(rawURL)

	if res, ok := s.cached(rawURL); ok {
		return res
	}

	if !validPostingURL(rawURL) {
		return domain.ExtractionResult{
			Success: false,
			Data:    domain.ExtractedJob{SourceURL: rawURL, Error: errInvalidURL, Diagnostic: diagTotalFail},
			Error:   errInvalidURL,
		}
	}

	host := confidence.DomainOf(rawURL)

	// cheap, local, no network
	rec := urlparse.ParseFromURL(rawURL)
	rec, _ = s.learner.ApplyLearnedPatterns(host, rec)
	if rec.HasCore() {
		return s.finish(rawURL, host, rec, "url-pattern", false)
	}

	// a known vendor's URL signature is trusted even when it only yields
	// part of the record; a proxy fetch rarely adds more on these boards
	if !rec.IsEmpty() && urlparse.MatchesKnownVendor(rawURL) {
		rec.Diagnostic = diagPartial
		return s.finish(rawURL, host, rec, "url-pattern", false)
	}

	// optional API lookup, only when a key is configured
	if s.search != nil && s.search.Enabled() {
		if hit, ok := s.searchLookup(ctx, rawURL, host); ok {
			return s.finish(rawURL, host, hit, "search-api", false)
		}
	}

	// network: proxy-cascade fetch, then metadata extraction
	if s.fetcher != nil {
		html, err := s.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			log.Printf("[extract] fetch url=%q err=%v", rawURL, err)
			s.scorer.RecordSiteOutcome(host, false)
		} else {
			meta := htmlmeta.Extract(html, rawURL)
			rec.Merge(meta)
			rec, _ = s.learner.ApplyLearnedPatterns(host, rec)
		}
	}

	if !rec.IsEmpty() {
		if !rec.HasCore() {
			rec.Diagnostic = diagPartial
		}
		return s.finish(rawURL, host, rec, "html-meta", false)
	}

	s.scorer.RecordSiteOutcome(host, false)
	return domain.ExtractionResult{
		Success: false,
		Data:    domain.ExtractedJob{SourceURL: rawURL, Error: errTotalFailure, Diagnostic: diagTotalFail},
		Error:   errTotalFailure,
	}
}

// ExtractFromEmail runs the free-text heuristics over pasted text. A result
// with only salvaged notes is a failure envelope, but the notes still ride
// along so nothing the user pasted is lost.
func (s *Service) ExtractFromEmail(ctx context.Context, text string) domain.ExtractionResult {
	_ = ctx

	rec := textparse.ExtractFromText(text)
	if rec.IsEmpty() {
		if rec.Diagnostic == "" {
			rec.Diagnostic = diagNotesOnly
		}
		return domain.ExtractionResult{
			Success:  false,
			Data:     rec,
			Strategy: "text",
			Error:    errTotalFailure,
		}
	}

	if host := confidence.DomainOf(rec.SourceURL); host != "" {
		rec, _ = s.learner.ApplyLearnedPatterns(host, rec)
	}
	if !rec.HasCore() {
		rec.Diagnostic = diagPartial
	}

	score := s.scorer.Score(rec, rec.SourceURL, "text", false)
	return domain.ExtractionResult{
		Success:    true,
		Data:       rec,
		Confidence: score.Overall,
		Strategy:   "text",
	}
}

// ExtractEnsemble fans every configured strategy out over the same URL and
// merges their votes. Heavier than ExtractFromURL's cascade; meant for the
// explicit "deep extract" action, so it bypasses and then refreshes the
// cache.
func (s *Service) ExtractEnsemble(ctx context.Context, rawURL string) domain.ExtractionResult {
	rawURL = strings.TrimSpace(rawURL)
	if !validPostingURL(rawURL) {
		return domain.ExtractionResult{
			Success: false,
			Data:    domain.ExtractedJob{SourceURL: rawURL, Error: errInvalidURL, Diagnostic: diagTotalFail},
			Error:   errInvalidURL,
		}
	}

	host := confidence.DomainOf(rawURL)

	res, err := ensemble.Run(ctx, rawURL, s.strategies(), s.scorer)
	if err != nil {
		s.scorer.RecordSiteOutcome(host, false)
		return domain.ExtractionResult{
			Success:  false,
			Data:     domain.ExtractedJob{SourceURL: rawURL, Error: err.Error(), Diagnostic: diagTotalFail},
			Strategy: "ensemble",
			Error:    err.Error(),
		}
	}

	rec, _ := s.learner.ApplyLearnedPatterns(host, res.Data)
	if !rec.HasCore() {
		rec.Diagnostic = diagPartial
	}
	out := s.finish(rawURL, host, rec, "ensemble", res.Consensus)
	return out
}

// RecordFeedback forwards a user correction to the learning store, nudges
// the domain's user-history score, and drops the cache entry so the next
// extraction of this URL sees the new patterns.
func (s *Service) RecordFeedback(ctx context.Context, rawURL string, original, corrected domain.ExtractedJob, strategy string) {
	s.learner.RecordFeedback(ctx, rawURL, original, corrected, strategy)

	accepted := original.Company == corrected.Company &&
		original.Position == corrected.Position &&
		original.Salary == corrected.Salary &&
		original.HourlyRate == corrected.HourlyRate &&
		original.Location == corrected.Location
	s.scorer.RecordUserOutcome(confidence.DomainOf(rawURL), accepted)

	s.mu.Lock()
	delete(s.cache, strings.TrimSpace(rawURL))
	s.mu.Unlock()
}

// ClearCache drops every memoized extraction. Explicit clear is the only
// eviction path.
func (s *Service) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string]domain.ExtractionResult)
	s.mu.Unlock()
}

// CacheSize reports the number of memoized URLs.
func (s *Service) CacheSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

// ---------------- internals ----------------

func (s *Service) cached(rawURL string) (domain.ExtractionResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.cache[rawURL]
	return res, ok
}

// finish scores, records the site outcome, memoizes and wraps a successful
// (possibly partial) extraction.
func (s *Service) finish(rawURL, host string, rec domain.ExtractedJob, strategy string, consensus bool) domain.ExtractionResult {
	if rec.SourceURL == "" {
		rec.SourceURL = rawURL
	}

	score := s.scorer.Score(rec, rawURL, strategy, consensus)
	s.scorer.RecordSiteOutcome(host, rec.HasCore())

	res := domain.ExtractionResult{
		Success:    true,
		Data:       rec,
		Confidence: score.Overall,
		Strategy:   strategy,
	}

	s.mu.Lock()
	s.cache[rawURL] = res
	s.mu.Unlock()

	log.Printf("[extract] done url=%q strategy=%s confidence=%.2f core=%v", rawURL, strategy, score.Overall, rec.HasCore())
	return res
}

func (s *Service) searchLookup(ctx context.Context, rawURL, host string) (domain.ExtractedJob, bool) {
	derive := s.derive
	if derive == nil {
		derive = func(string) string { return "" }
	}
	query := derive(rawURL)
	if query == "" {
		return domain.ExtractedJob{}, false
	}

	hit, err := s.search.Search(ctx, query)
	if err != nil {
		log.Printf("[extract] search url=%q err=%v", rawURL, err)
		return domain.ExtractedJob{}, false
	}
	if !hit.HasCore() {
		return domain.ExtractedJob{}, false
	}

	hit.SourceURL = rawURL
	hit, _ = s.learner.ApplyLearnedPatterns(host, hit)
	return hit, true
}

func validPostingURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
