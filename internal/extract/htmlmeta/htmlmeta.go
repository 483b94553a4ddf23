// Package htmlmeta recovers job fields from fetched HTML: the document
// title / Open Graph tags, JSON-LD JobPosting blocks, CSS class-name
// heuristics, and a free salary scan. Strategies run in that order and
// short-circuit per field on the first non-empty hit.
package htmlmeta

import (
	"encoding/json"
	"regexp"
	"strings"

	"jobtrack-engine/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

var (
	reSalary     = regexp.MustCompile(`\$\s?\d[\d,]{2,}(?:\.\d+)?(?:\s*[kK])?(?:\s*[-–—]\s*\$?\s?\d[\d,]*(?:\.\d+)?(?:\s*[kK])?)?`)
	reHourly     = regexp.MustCompile(`\$\s?\d[\d.]*\s*(?:/|per\s+)(?:hr|hour)`)
	reClassCo    = regexp.MustCompile(`(?i)company|employer|organization|org-name`)
	reClassTitle = regexp.MustCompile(`(?i)job-?title|position-?title|posting-?title|role-?title`)
	reClassPay   = regexp.MustCompile(`(?i)salary|compensation|pay-?range`)
)

// Extract parses html and applies the strategy cascade. It never returns an
// error: unparseable HTML yields an empty record.
func Extract(html, sourceURL string) domain.ExtractedJob {
	rec := domain.ExtractedJob{SourceURL: sourceURL}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return rec
	}

	fromTitle(doc, &rec)
	fromJSONLD(doc, &rec)
	fromClassNames(doc, &rec)

	if rec.Salary == "" {
		if m := reSalary.FindString(doc.Text()); m != "" {
			rec.Salary = cleanText(m)
		}
	}
	if rec.HourlyRate == "" {
		if m := reHourly.FindString(doc.Text()); m != "" {
			rec.HourlyRate = cleanText(m)
		}
	}

	return rec
}

// titleSeparators in priority order; " at " carries the clearest semantics
// (position at company), the rest usually run title-first too.
var titleSeparators = []string{" at ", " - ", " | ", " – "}

func fromTitle(doc *goquery.Document, rec *domain.ExtractedJob) {
	title := cleanText(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if t := cleanText(og); t != "" {
			title = t
		}
	}
	if title == "" {
		return
	}

	for _, sep := range titleSeparators {
		i := strings.Index(title, sep)
		if i <= 0 {
			continue
		}
		left := cleanText(title[:i])
		right := cleanText(title[i+len(sep):])
		// drop site-name tails like "... | Careers | Acme"
		if j := strings.IndexAny(right, "|–"); j > 0 {
			right = cleanText(right[:j])
		}
		right = strings.TrimSuffix(right, " Careers")
		right = strings.TrimSuffix(right, " Jobs")

		if rec.Position == "" && IsValidJobTitle(left) {
			rec.Position = left
		}
		if rec.Company == "" && IsValidCompanyName(right) {
			rec.Company = right
		}
		return
	}

	// no separator: a valid-looking title alone is still worth keeping
	if rec.Position == "" && IsValidJobTitle(title) {
		rec.Position = title
	}
}

// jobPosting is the subset of schema.org JobPosting we read.
type jobPosting struct {
	Type               string `json:"@type"`
	Title              string `json:"title"`
	HiringOrganization struct {
		Name string `json:"name"`
	} `json:"hiringOrganization"`
	BaseSalary struct {
		Value json.RawMessage `json:"value"`
	} `json:"baseSalary"`
	JobLocation struct {
		Address struct {
			AddressLocality string `json:"addressLocality"`
			AddressRegion   string `json:"addressRegion"`
		} `json:"address"`
	} `json:"jobLocation"`
}

func fromJSONLD(doc *goquery.Document, rec *domain.ExtractedJob) {
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}

		var posts []jobPosting
		var one jobPosting
		if err := json.Unmarshal([]byte(raw), &one); err == nil {
			posts = append(posts, one)
		} else if err := json.Unmarshal([]byte(raw), &posts); err != nil {
			return true
		}

		for _, p := range posts {
			if !strings.EqualFold(p.Type, "JobPosting") {
				continue
			}
			if rec.Position == "" && IsValidJobTitle(p.Title) {
				rec.Position = cleanText(p.Title)
			}
			if rec.Company == "" && IsValidCompanyName(p.HiringOrganization.Name) {
				rec.Company = cleanText(p.HiringOrganization.Name)
			}
			if rec.Salary == "" {
				rec.Salary = salaryFromValue(p.BaseSalary.Value)
			}
			if rec.Location == "" {
				loc := cleanText(p.JobLocation.Address.AddressLocality)
				if region := cleanText(p.JobLocation.Address.AddressRegion); region != "" {
					if loc != "" {
						loc += ", "
					}
					loc += region
				}
				rec.Location = loc
			}
			return false // first JobPosting wins
		}
		return true
	})
}

// salaryFromValue handles the three shapes baseSalary.value takes in the
// wild: a bare number, a string, or a MonetaryAmount-ish object.
func salaryFromValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil && num > 0 {
		return "$" + trimFloat(num)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return cleanText(s)
	}
	var obj struct {
		Value    float64 `json:"value"`
		MinValue float64 `json:"minValue"`
		MaxValue float64 `json:"maxValue"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		switch {
		case obj.MinValue > 0 && obj.MaxValue > 0:
			return "$" + trimFloat(obj.MinValue) + " - $" + trimFloat(obj.MaxValue)
		case obj.Value > 0:
			return "$" + trimFloat(obj.Value)
		}
	}
	return ""
}

func fromClassNames(doc *goquery.Document, rec *domain.ExtractedJob) {
	scan := func(re *regexp.Regexp, valid func(string) bool, dst *string) {
		if *dst != "" {
			return
		}
		doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			cls, _ := s.Attr("class")
			if !re.MatchString(cls) {
				return true
			}
			t := cleanText(s.Text())
			if t == "" || len(t) > 120 || !valid(t) {
				return true
			}
			*dst = t
			return false
		})
	}

	scan(reClassTitle, IsValidJobTitle, &rec.Position)
	scan(reClassCo, IsValidCompanyName, &rec.Company)
	scan(reClassPay, func(s string) bool { return strings.ContainsAny(s, "$0123456789") }, &rec.Salary)
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func trimFloat(f float64) string {
	b, _ := json.Marshal(f)
	s := string(b)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// ---------------- validators ----------------

// job-role words that mark a string as a title, not a company
var jobRoleWords = []string{
	"engineer", "developer", "manager", "director", "analyst", "designer",
	"scientist", "architect", "consultant", "specialist", "coordinator",
	"administrator", "technician", "intern", "lead", "recruiter",
}

// IsValidCompanyName rejects degenerate matches: empty, pure numbers, or
// job-title-shaped strings misidentified as companies.
func IsValidCompanyName(s string) bool {
	s = cleanText(s)
	if len(s) < 2 || len(s) > 80 {
		return false
	}
	if isAllDigits(s) {
		return false
	}
	l := strings.ToLower(s)
	for _, w := range jobRoleWords {
		if strings.Contains(l, w) {
			return false
		}
	}
	return true
}

// IsValidJobTitle wants at least one letter and a plausible length; pure
// numbers and URL-looking strings are rejected.
func IsValidJobTitle(s string) bool {
	s = cleanText(s)
	if len(s) < 3 || len(s) > 120 {
		return false
	}
	if isAllDigits(s) {
		return false
	}
	if strings.Contains(s, "://") || strings.HasPrefix(strings.ToLower(s), "www.") {
		return false
	}
	letters := 0
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
		}
	}
	return letters >= 3
}

func isAllDigits(s string) bool {
	seen := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			seen = true
			continue
		}
		if r == ' ' || r == ',' || r == '.' || r == '-' {
			continue
		}
		return false
	}
	return seen
}
