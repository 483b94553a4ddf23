package urlparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanCompany(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"acme-inc", "Acme"},
		{"acme_labs", "Acme Labs"},
		{"acme.io", "Acme"},
		{"globex-corporation", "Globex"},
		{"initech llc", "Initech"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CleanCompany(c.in), "CleanCompany(%q)", c.in)
	}
}

func TestCleanTitle(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"senior-ui-engineer", "Senior UI Engineer"},
		{"backend_developer", "Backend Developer"},
		{"vp-of-engineering", "VP Of Engineering"},
		{"staff-sql-engineer-req-4521", "Staff SQL Engineer"},
		{"data-scientist-12345", "Data Scientist"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CleanTitle(c.in), "CleanTitle(%q)", c.in)
	}
}

func TestCleanersLeaveNoSeparators(t *testing.T) {
	for _, in := range []string{"senior-platform-engineer", "acme_holdings-inc"} {
		for _, out := range []string{CleanTitle(in), CleanCompany(in)} {
			assert.NotContains(t, out, "-")
			assert.NotContains(t, out, "_")
		}
	}
}

func TestParseFromURLVendors(t *testing.T) {
	cases := []struct {
		name, url, company, position string
	}{
		{
			name:     "greenhouse",
			url:      "https://boards.greenhouse.io/acme/jobs/12345",
			company:  "Acme",
			position: "",
		},
		{
			name:     "linkedin slug",
			url:      "https://www.linkedin.com/jobs/view/senior-ui-engineer-at-globex-4012345678",
			company:  "Globex",
			position: "Senior UI Engineer",
		},
		{
			name:     "glassdoor",
			url:      "https://www.glassdoor.com/job-listing/senior-engineer-acme-corp-JV_IC123.htm",
			company:  "Acme",
			position: "Senior Engineer",
		},
		{
			name:     "lever",
			url:      "https://jobs.lever.co/initech/7f1e2d3c-aaaa-bbbb",
			company:  "Initech",
			position: "",
		},
		{
			name:     "workday",
			url:      "https://acme.wd5.myworkdayjobs.com/en-US/External/job/Dallas-TX/Senior-Engineer_R-12345",
			company:  "Acme",
			position: "Senior Engineer",
		},
		{
			name:     "smartrecruiters",
			url:      "https://jobs.smartrecruiters.com/Globex/743999-platform-engineer",
			company:  "Globex",
			position: "Platform Engineer",
		},
		{
			name:     "wellfound",
			url:      "https://wellfound.com/company/hooli/jobs/98765-backend-developer",
			company:  "Hooli",
			position: "Backend Developer",
		},
		{
			name:     "bamboohr",
			url:      "https://initech.bamboohr.com/careers/42",
			company:  "Initech",
			position: "",
		},
		{
			name:     "ziprecruiter",
			url:      "https://www.ziprecruiter.com/c/Acme-Inc/Job/Senior-Data-Engineer",
			company:  "Acme",
			position: "Senior Data Engineer",
		},
		{
			name:     "workable",
			url:      "https://apply.workable.com/hooli/j/AB12CD34EF/",
			company:  "Hooli",
			position: "",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := ParseFromURL(c.url)
			assert.Equal(t, c.company, rec.Company)
			assert.Equal(t, c.position, rec.Position)
			assert.Equal(t, c.url, rec.SourceURL)
		})
	}
}

func TestParseFromURLGenericCareers(t *testing.T) {
	rec := ParseFromURL("https://www.hooli.com/careers/staff-platform-engineer")
	assert.Equal(t, "Hooli", rec.Company)
	assert.Equal(t, "Staff Platform Engineer", rec.Position)
}

func TestParseFromURLUnknownHost(t *testing.T) {
	rec := ParseFromURL("https://example.org/about")
	assert.Empty(t, rec.Company)
	assert.Empty(t, rec.Position)
	assert.Equal(t, "https://example.org/about", rec.SourceURL)
}

func TestParseFromURLMalformed(t *testing.T) {
	rec := ParseFromURL("not a url")
	assert.True(t, rec.IsEmpty())
}

func TestParsedFieldsAreClean(t *testing.T) {
	rec := ParseFromURL("https://www.linkedin.com/jobs/view/senior-ui-engineer-at-acme-inc-4012345678")
	require.True(t, rec.HasCore())
	assert.False(t, strings.ContainsAny(rec.Company, "-_"))
	assert.False(t, strings.ContainsAny(rec.Position, "-_"))
}

func TestMatchesKnownVendor(t *testing.T) {
	assert.True(t, MatchesKnownVendor("https://boards.greenhouse.io/acme/jobs/1"))
	assert.True(t, MatchesKnownVendor("https://www.hooli.com/careers/x"))
	assert.False(t, MatchesKnownVendor("https://example.org/about"))
}
