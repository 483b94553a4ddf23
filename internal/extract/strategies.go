package extract

import (
	"context"
	"errors"

	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/extract/confidence"
	"jobtrack-engine/internal/extract/ensemble"
	"jobtrack-engine/internal/extract/htmlmeta"
	"jobtrack-engine/internal/extract/urlparse"
	"jobtrack-engine/internal/learn"
)

// strategies assembles the ensemble lineup. The search-api strategy joins
// only when a key is configured.
func (s *Service) strategies() []ensemble.Strategy {
	out := []ensemble.Strategy{
		urlPatternStrategy{},
		learnedStrategy{learner: s.learner},
	}
	if s.fetcher != nil {
		out = append(out, htmlMetaStrategy{fetcher: s.fetcher})
	}
	if s.search != nil && s.search.Enabled() {
		out = append(out, searchStrategy{search: s.search, derive: s.derive})
	}
	return out
}

type urlPatternStrategy struct{}

func (urlPatternStrategy) Name() string { return "url-pattern" }

func (urlPatternStrategy) Extract(_ context.Context, url string) (domain.ExtractedJob, error) {
	return urlparse.ParseFromURL(url), nil
}

// htmlMetaStrategy is the only network-bound strategy in the default lineup.
type htmlMetaStrategy struct {
	fetcher PageFetcher
}

func (htmlMetaStrategy) Name() string { return "html-meta" }

func (h htmlMetaStrategy) Extract(ctx context.Context, url string) (domain.ExtractedJob, error) {
	html, err := h.fetcher.Fetch(ctx, url)
	if err != nil {
		return domain.ExtractedJob{}, err
	}
	return htmlmeta.Extract(html, url), nil
}

// learnedStrategy is the user-history-biased variant: the plain URL parse
// with the domain's learned corrections applied on top. It only casts a
// vote when a correction actually fired, so it never just duplicates the
// url-pattern vote.
type learnedStrategy struct {
	learner *learn.Store
}

func (learnedStrategy) Name() string { return "learned" }

func (l learnedStrategy) Extract(_ context.Context, url string) (domain.ExtractedJob, error) {
	rec := urlparse.ParseFromURL(url)
	rec, applied := l.learner.ApplyLearnedPatterns(confidence.DomainOf(url), rec)
	if !applied {
		return domain.ExtractedJob{}, errors.New("no learned pattern applies")
	}
	return rec, nil
}

type searchStrategy struct {
	search JobSearcher
	derive QueryDeriver
}

func (searchStrategy) Name() string { return "search-api" }

func (s searchStrategy) Extract(ctx context.Context, url string) (domain.ExtractedJob, error) {
	derive := s.derive
	if derive == nil {
		return domain.ExtractedJob{}, errors.New("no query deriver configured")
	}
	query := derive(url)
	if query == "" {
		return domain.ExtractedJob{}, errors.New("no search terms derivable")
	}
	hit, err := s.search.Search(ctx, query)
	if err != nil {
		return domain.ExtractedJob{}, err
	}
	hit.SourceURL = url
	return hit, nil
}
