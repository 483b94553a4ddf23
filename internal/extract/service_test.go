package extract

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"jobtrack-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	html  string
	err   error
	calls atomic.Int32
}

func (f *stubFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls.Add(1)
	return f.html, f.err
}

type stubSearcher struct {
	enabled bool
	hit     domain.ExtractedJob
	err     error
}

func (s *stubSearcher) Enabled() bool { return s.enabled }

func (s *stubSearcher) Search(_ context.Context, _ string) (domain.ExtractedJob, error) {
	return s.hit, s.err
}

func newTestService(f PageFetcher, search JobSearcher) *Service {
	derive := func(string) string { return "software engineer jobs" }
	return NewService(f, search, derive, nil, nil)
}

func TestVendorURLSkipsNetwork(t *testing.T) {
	f := &stubFetcher{html: "<html><title>should never be fetched</title></html>"}
	svc := newTestService(f, nil)

	res := svc.ExtractFromURL(context.Background(), "https://boards.greenhouse.io/acme/jobs/12345")
	assert.True(t, res.Success)
	assert.Equal(t, "Acme", res.Data.Company)
	assert.Equal(t, "url-pattern", res.Strategy)
	assert.Equal(t, int32(0), f.calls.Load(), "known-vendor parse must not touch the network")
}

func TestVendorURLWithFullSlug(t *testing.T) {
	f := &stubFetcher{}
	svc := newTestService(f, nil)

	res := svc.ExtractFromURL(context.Background(),
		"https://www.linkedin.com/jobs/view/senior-ui-engineer-at-acme-4012345678")
	require.True(t, res.Success)
	assert.Equal(t, "Acme", res.Data.Company)
	assert.Equal(t, "Senior UI Engineer", res.Data.Position)
	assert.Empty(t, res.Data.Diagnostic)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestInvalidURLFailsFast(t *testing.T) {
	f := &stubFetcher{}
	svc := newTestService(f, nil)

	res := svc.ExtractFromURL(context.Background(), "not a url")
	assert.False(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Error, "Invalid URL format"), "got %q", res.Error)
	assert.Empty(t, res.Data.Company)
	assert.Empty(t, res.Data.Position)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestCacheAvoidsSecondFetch(t *testing.T) {
	f := &stubFetcher{html: `<html><head><title>Staff Engineer at Example Corp</title></head><body>hiring</body></html>`}
	svc := newTestService(f, nil)

	url := "https://example.com/opening/12"
	first := svc.ExtractFromURL(context.Background(), url)
	require.True(t, first.Success)
	assert.Equal(t, "Example Corp", first.Data.Company)
	assert.Equal(t, "Staff Engineer", first.Data.Position)
	assert.Equal(t, int32(1), f.calls.Load())

	second := svc.ExtractFromURL(context.Background(), url)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), f.calls.Load(), "second call must be served from cache")
}

func TestPartialExtractionIsSuccessWithDiagnostic(t *testing.T) {
	f := &stubFetcher{html: `<html><body><div>Pay: $55 per hour</div></body></html>`}
	svc := newTestService(f, nil)

	res := svc.ExtractFromURL(context.Background(), "https://example.com/opening/12")
	require.True(t, res.Success)
	assert.Empty(t, res.Data.Company)
	assert.Equal(t, "$55 per hour", res.Data.HourlyRate)
	assert.NotEmpty(t, res.Data.Diagnostic)
}

func TestTotalFailureIsTerminalAndUncached(t *testing.T) {
	f := &stubFetcher{err: errors.New("all proxies failed")}
	svc := newTestService(f, nil)

	url := "https://example.com/opening/12"
	res := svc.ExtractFromURL(context.Background(), url)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.NotEmpty(t, res.Data.Diagnostic)

	svc.ExtractFromURL(context.Background(), url)
	assert.Equal(t, int32(2), f.calls.Load(), "failures must not be memoized")
}

func TestSearchAPIRunsBeforeFetch(t *testing.T) {
	f := &stubFetcher{}
	search := &stubSearcher{
		enabled: true,
		hit:     domain.ExtractedJob{Company: "Globex", Position: "Data Analyst"},
	}
	svc := newTestService(f, search)

	url := "https://jobs.example.org/opening/99"
	res := svc.ExtractFromURL(context.Background(), url)
	require.True(t, res.Success)
	assert.Equal(t, "search-api", res.Strategy)
	assert.Equal(t, "Globex", res.Data.Company)
	assert.Equal(t, url, res.Data.SourceURL)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestDisabledSearchFallsThroughToFetch(t *testing.T) {
	f := &stubFetcher{html: `<html><head><title>Staff Engineer at Example Corp</title></head><body>x</body></html>`}
	svc := newTestService(f, &stubSearcher{enabled: false})

	res := svc.ExtractFromURL(context.Background(), "https://example.com/opening/12")
	require.True(t, res.Success)
	assert.Equal(t, "html-meta", res.Strategy)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestFeedbackInvalidatesCacheAndLearnedOverrideApplies(t *testing.T) {
	f := &stubFetcher{}
	svc := newTestService(f, nil)

	url := "https://boards.greenhouse.io/acme/jobs/12345"
	first := svc.ExtractFromURL(context.Background(), url)
	require.Equal(t, "Acme", first.Data.Company)

	orig := domain.ExtractedJob{Company: "Acme"}
	corr := domain.ExtractedJob{Company: "Acme Robotics"}
	for i := 0; i < 4; i++ { // confidence 0.5 -> 0.8, past the bar
		svc.RecordFeedback(context.Background(), url, orig, corr, "url-pattern")
	}

	res := svc.ExtractFromURL(context.Background(), url)
	assert.Equal(t, "Acme Robotics", res.Data.Company)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestExtractFromEmail(t *testing.T) {
	svc := newTestService(&stubFetcher{}, nil)

	res := svc.ExtractFromEmail(context.Background(),
		"Company: Acme\nPosition: Software Engineer\nSalary: $120,000\nLocation: Remote")
	require.True(t, res.Success)
	assert.Equal(t, "Acme", res.Data.Company)
	assert.Equal(t, "Software Engineer", res.Data.Position)
	assert.Equal(t, "$120,000", res.Data.Salary)
	assert.Equal(t, "text", res.Strategy)
	assert.Greater(t, res.Confidence, 0.0)
}

func TestExtractFromEmailSalvagesNotes(t *testing.T) {
	svc := newTestService(&stubFetcher{}, nil)

	res := svc.ExtractFromEmail(context.Background(), "hello, please see attachment for details")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Data.Notes)
	assert.NotEmpty(t, res.Data.Diagnostic)
}

func TestEnsembleMergesStrategies(t *testing.T) {
	f := &stubFetcher{html: `<html><head><title>Staff Engineer at Example Corp</title></head><body>x</body></html>`}
	svc := newTestService(f, nil)

	res := svc.ExtractEnsemble(context.Background(), "https://example.com/opening/12")
	require.True(t, res.Success)
	assert.Equal(t, "ensemble", res.Strategy)
	assert.Equal(t, "Example Corp", res.Data.Company)
	assert.Equal(t, "Staff Engineer", res.Data.Position)
}

func TestClearCache(t *testing.T) {
	f := &stubFetcher{}
	svc := newTestService(f, nil)

	svc.ExtractFromURL(context.Background(), "https://boards.greenhouse.io/acme/jobs/12345")
	require.Equal(t, 1, svc.CacheSize())

	svc.ClearCache()
	assert.Equal(t, 0, svc.CacheSize())
}
