// Package textparse recovers job fields from free-form text such as pasted
// email bodies. Ordered labeled-field regexes run first-match-wins per
// field; if nothing structured is found the head of the text is kept as
// notes so the caller never gets an empty, diagnostic-free result.
package textparse

import (
	"regexp"
	"strings"

	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/extract/htmlmeta"
)

const notesLimit = 1000

// fieldPattern is one pure (input) -> optional value entry in a cascade.
type fieldPattern struct {
	re    *regexp.Regexp
	group int
}

var (
	companyPatterns = []fieldPattern{
		{regexp.MustCompile(`(?im)^\s*company\s*[:\-]\s*(.+)$`), 1},
		{regexp.MustCompile(`(?im)^\s*employer\s*[:\-]\s*(.+)$`), 1},
		{regexp.MustCompile(`(?i)\bat\s+([A-Z][A-Za-z0-9&.\- ]{1,40}?)(?:\s+(?:is|has|was|were)\b|[,.!\n]|$)`), 1},
		{regexp.MustCompile(`(?i)\bjoin(?:ing)?\s+(?:the\s+team\s+at\s+)?([A-Z][A-Za-z0-9&.\- ]{1,40}?)(?:[,.!\n]|$)`), 1},
	}

	positionPatterns = []fieldPattern{
		{regexp.MustCompile(`(?im)^\s*(?:position|role|job\s*title|title)\s*[:\-]\s*(.+)$`), 1},
		{regexp.MustCompile(`(?i)\bapplication\s+for\s+(?:the\s+)?(.+?)\s+(?:position|role)\b`), 1},
		{regexp.MustCompile(`(?i)\b(?:the|a|an)\s+(.{3,60}?)\s+(?:position|role|opening|opportunity)\b`), 1},
	}

	salaryPatterns = []fieldPattern{
		{regexp.MustCompile(`(?im)^\s*(?:salary|compensation|pay)\s*[:\-]\s*(.+)$`), 1},
		{regexp.MustCompile(`(\$\s?\d[\d,]{2,}(?:\s*[kK])?(?:\s*[-–—]\s*\$?\s?\d[\d,]*(?:\s*[kK])?)?)`), 1},
	}

	locationPatterns = []fieldPattern{
		{regexp.MustCompile(`(?im)^\s*location\s*[:\-]\s*(.+)$`), 1},
	}

	hourlyPatterns = []fieldPattern{
		{regexp.MustCompile(`(?im)^\s*(?:hourly\s*rate|rate)\s*[:\-]\s*(.+)$`), 1},
		{regexp.MustCompile(`(?i)(\$\s?\d[\d.]*\s*(?:/|per\s+)(?:hr|hour))`), 1},
	}

	// "Senior Engineer at Acme" on its own line, common in alert emails
	reRoleAtCompany = regexp.MustCompile(`(?im)^\s*(.{3,60}?)\s+at\s+([A-Z][A-Za-z0-9&.\- ]{1,40}?)\s*$`)

	reURL = regexp.MustCompile(`https?://[^\s<>"']+`)
)

// ExtractFromText applies the pattern cascades over raw text. Always
// returns a record; total misses fall back to clipped notes.
func ExtractFromText(text string) domain.ExtractedJob {
	var rec domain.ExtractedJob

	text = strings.ReplaceAll(text, "\r\n", "\n")

	rec.Company = firstMatch(text, companyPatterns, htmlmeta.IsValidCompanyName)
	rec.Position = firstMatch(text, positionPatterns, htmlmeta.IsValidJobTitle)
	rec.Salary = firstMatch(text, salaryPatterns, nonEmpty)
	rec.HourlyRate = firstMatch(text, hourlyPatterns, nonEmpty)
	rec.Location = firstMatch(text, locationPatterns, nonEmpty)

	// "X at Y" line fills whichever core field is still missing
	if rec.Company == "" || rec.Position == "" {
		if m := reRoleAtCompany.FindStringSubmatch(text); m != nil {
			if rec.Position == "" && htmlmeta.IsValidJobTitle(m[1]) {
				rec.Position = clean(m[1])
			}
			if rec.Company == "" && htmlmeta.IsValidCompanyName(m[2]) {
				rec.Company = clean(m[2])
			}
		}
	}

	if u := reURL.FindString(text); u != "" {
		rec.SourceURL = strings.TrimRight(u, ".,);:]\"'")
	}

	if rec.IsEmpty() {
		rec.Notes = clip(text, notesLimit)
		rec.Diagnostic = "no structured fields found; raw text kept as notes"
	}

	return rec
}

func firstMatch(text string, patterns []fieldPattern, valid func(string) bool) string {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil || len(m) <= p.group {
			continue
		}
		v := clean(m[p.group])
		if v == "" || !valid(v) {
			continue
		}
		return v
	}
	return ""
}

func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " .,;:-")
}

func nonEmpty(s string) bool { return strings.TrimSpace(s) != "" }

func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
