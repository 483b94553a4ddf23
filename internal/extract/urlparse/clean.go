package urlparse

import "strings"

// legal-entity suffixes stripped from company names
var companySuffixes = []string{
	"inc", "llc", "ltd", "corp", "corporation", "co", "company",
	"gmbh", "plc", "sa", "ag", "bv", "pty", "limited", "incorporated",
}

// acronyms kept fully uppercase in titles
var titleAcronyms = map[string]string{
	"ui": "UI", "ux": "UX", "api": "API", "sql": "SQL", "aws": "AWS",
	"gcp": "GCP", "qa": "QA", "it": "IT", "hr": "HR", "vp": "VP",
	"ceo": "CEO", "cto": "CTO", "cfo": "CFO", "ios": "iOS", "ml": "ML",
	"ai": "AI", "sre": "SRE", "php": "PHP", "css": "CSS", "seo": "SEO",
}

// requisition-id prefixes that show up inside title slugs
var reqIDPrefixes = []string{"jv_", "jv-", "r-", "req", "jr-", "jr_", "job-id", "jobid"}

// CleanCompany turns a URL slug ("acme-inc", "acme_labs.io") into a display
// name: separators to spaces, TLD and legal-entity suffixes stripped, words
// title-cased.
func CleanCompany(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	// strip a trailing TLD before splitting ("acme.io" -> "acme")
	if i := strings.LastIndex(s, "."); i > 0 {
		tld := s[i+1:]
		if len(tld) >= 2 && len(tld) <= 6 && !strings.ContainsAny(tld, "-_ ") {
			s = s[:i]
		}
	}

	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, ".", " ")

	words := strings.Fields(s)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if isCompanySuffix(w) {
			continue
		}
		out = append(out, titleWord(w))
	}
	return strings.Join(out, " ")
}

// CleanTitle turns a title slug ("senior-ui-engineer") into a display title.
// Requisition-id tokens are dropped; known acronyms stay uppercase.
func CleanTitle(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if looksLikeReqID(w) {
			continue
		}
		if up, ok := titleAcronyms[w]; ok {
			out = append(out, up)
			continue
		}
		out = append(out, titleWord(w))
	}
	return strings.Join(out, " ")
}

func isCompanySuffix(w string) bool {
	w = strings.TrimRight(w, ".")
	for _, suf := range companySuffixes {
		if w == suf {
			return true
		}
	}
	return false
}

func looksLikeReqID(w string) bool {
	for _, p := range reqIDPrefixes {
		if strings.HasPrefix(w, p) {
			return true
		}
	}
	// pure digits or digit-heavy tokens are ids, not title words
	digits := 0
	for _, r := range w {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits > 0 && digits >= len(w)/2
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
