// Package urlparse decodes job-posting fields straight out of a URL's path
// segments, per known job-board vendor. No network I/O: this is the cheapest
// extraction strategy and always runs first.
package urlparse

import (
	"net/url"
	"strings"

	"jobtrack-engine/internal/domain"
)

type vendorRule struct {
	Name  string
	Hosts []string // hostname substring match
	Parse func(host string, segs []string) domain.ExtractedJob
}

// ParseFromURL dispatches on hostname against the vendor table, falling back
// to a generic /careers/ or /jobs/ guess. Unknown URLs return an all-empty
// record, never an error.
func ParseFromURL(raw string) domain.ExtractedJob {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return domain.ExtractedJob{SourceURL: raw}
	}

	host := strings.ToLower(u.Hostname())
	segs := pathSegments(u)

	for _, v := range vendors {
		for _, h := range v.Hosts {
			if strings.Contains(host, h) {
				rec := v.Parse(host, segs)
				rec.SourceURL = raw
				return rec
			}
		}
	}

	// generic company career pages: guess company from the domain's first
	// label and the title from the segment after /careers/ or /jobs/
	if rec, ok := parseGenericCareers(host, segs); ok {
		rec.SourceURL = raw
		return rec
	}

	return domain.ExtractedJob{SourceURL: raw}
}

// MatchesKnownVendor reports whether the URL's host matches any vendor
// signature (or a generic careers path). Used by the confidence scorer.
func MatchesKnownVendor(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, v := range vendors {
		for _, h := range v.Hosts {
			if strings.Contains(host, h) {
				return true
			}
		}
	}
	lp := strings.ToLower(u.Path)
	return strings.Contains(lp, "/careers") || strings.Contains(lp, "/jobs")
}

func pathSegments(u *url.URL) []string {
	raw := strings.Trim(u.EscapedPath(), "/")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		dec, err := url.PathUnescape(p)
		if err != nil {
			dec = p
		}
		dec = strings.ToLower(strings.TrimSpace(dec))
		if dec != "" {
			out = append(out, dec)
		}
	}
	return out
}

func parseGenericCareers(host string, segs []string) (domain.ExtractedJob, bool) {
	idx := -1
	for i, s := range segs {
		if s == "careers" || s == "career" || s == "jobs" || s == "job" {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domain.ExtractedJob{}, false
	}

	rec := domain.ExtractedJob{Company: companyFromHost(host)}
	if idx+1 < len(segs) {
		rec.Position = CleanTitle(lastMeaningful(segs[idx+1:]))
	}
	return rec, true
}

// companyFromHost guesses a company from the first non-www domain label.
func companyFromHost(host string) string {
	host = strings.TrimPrefix(host, "www.")
	labels := strings.Split(host, ".")
	if len(labels) == 0 || labels[0] == "" {
		return ""
	}
	return CleanCompany(labels[0])
}

// lastMeaningful picks the last segment that isn't a bare id or list page.
func lastMeaningful(segs []string) string {
	for i := len(segs) - 1; i >= 0; i-- {
		s := segs[i]
		if s == "apply" || s == "view" || s == "detail" || s == "details" {
			continue
		}
		if isNumeric(s) {
			continue
		}
		return s
	}
	return ""
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
