package htmlmeta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFromTitleTag(t *testing.T) {
	html := `<html><head><title>Senior Backend Engineer at Globex</title></head><body></body></html>`
	rec := Extract(html, "https://example.com/job")
	assert.Equal(t, "Senior Backend Engineer", rec.Position)
	assert.Equal(t, "Globex", rec.Company)
}

func TestExtractOGTitleWins(t *testing.T) {
	html := `<html><head>
<title>Jobs</title>
<meta property="og:title" content="Data Scientist - Initech">
</head><body></body></html>`
	rec := Extract(html, "")
	assert.Equal(t, "Data Scientist", rec.Position)
	assert.Equal(t, "Initech", rec.Company)
}

func TestExtractJSONLD(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "JobPosting",
  "title": "Platform Engineer",
  "hiringOrganization": {"name": "Hooli"},
  "baseSalary": {"value": {"minValue": 120000, "maxValue": 150000}},
  "jobLocation": {"address": {"addressLocality": "Dallas", "addressRegion": "TX"}}
}
</script></head><body></body></html>`
	rec := Extract(html, "")
	assert.Equal(t, "Platform Engineer", rec.Position)
	assert.Equal(t, "Hooli", rec.Company)
	assert.Equal(t, "$120000 - $150000", rec.Salary)
	assert.Equal(t, "Dallas, TX", rec.Location)
}

func TestExtractJSONLDArray(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
[{"@type": "WebSite", "name": "x"},
 {"@type": "JobPosting", "title": "QA Engineer", "hiringOrganization": {"name": "Acme"}}]
</script></head><body></body></html>`
	rec := Extract(html, "")
	assert.Equal(t, "QA Engineer", rec.Position)
	assert.Equal(t, "Acme", rec.Company)
}

func TestExtractClassHeuristics(t *testing.T) {
	html := `<html><body>
<div class="posting-header">
  <h1 class="job-title">Site Reliability Engineer</h1>
  <span class="company-name">Pied Piper</span>
  <span class="salary-range">$140,000 - $180,000</span>
</div>
</body></html>`
	rec := Extract(html, "")
	assert.Equal(t, "Site Reliability Engineer", rec.Position)
	assert.Equal(t, "Pied Piper", rec.Company)
	assert.Equal(t, "$140,000 - $180,000", rec.Salary)
}

func TestExtractFreeSalaryScan(t *testing.T) {
	html := `<html><body><p>Compensation for this role is $95,000 per year.</p></body></html>`
	rec := Extract(html, "")
	assert.Equal(t, "$95,000", rec.Salary)
}

func TestExtractHourlyRate(t *testing.T) {
	html := `<html><body><p>Pay: $45/hour plus benefits.</p></body></html>`
	rec := Extract(html, "")
	assert.Equal(t, "$45/hour", rec.HourlyRate)
}

func TestExtractGarbageNeverPanics(t *testing.T) {
	for _, in := range []string{"", "<<<<", "<html><body>", "plain text only"} {
		rec := Extract(in, "u")
		assert.Equal(t, "u", rec.SourceURL)
	}
}

func TestIsValidCompanyName(t *testing.T) {
	assert.True(t, IsValidCompanyName("Acme Corp"))
	assert.False(t, IsValidCompanyName("12345"))
	assert.False(t, IsValidCompanyName("Senior Software Engineer"))
	assert.False(t, IsValidCompanyName("x"))
}

func TestIsValidJobTitle(t *testing.T) {
	assert.True(t, IsValidJobTitle("Senior Software Engineer"))
	assert.False(t, IsValidJobTitle("42"))
	assert.False(t, IsValidJobTitle("https://example.com"))
	assert.False(t, IsValidJobTitle(""))
}
