package textparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLabeledFields(t *testing.T) {
	text := `Hi there,

Company: Globex
Position: Senior Backend Engineer
Salary: $140,000 - $170,000
Location: Dallas, TX

We'd love to talk.`
	rec := ExtractFromText(text)
	assert.Equal(t, "Globex", rec.Company)
	assert.Equal(t, "Senior Backend Engineer", rec.Position)
	assert.Equal(t, "$140,000 - $170,000", rec.Salary)
	assert.Equal(t, "Dallas, TX", rec.Location)
	assert.Empty(t, rec.Notes)
}

func TestExtractRoleAtCompanyLine(t *testing.T) {
	text := "New jobs for you\n\nStaff Platform Engineer at Initech\nDallas, TX\n"
	rec := ExtractFromText(text)
	assert.Equal(t, "Staff Platform Engineer", rec.Position)
	assert.Equal(t, "Initech", rec.Company)
}

func TestExtractApplicationForPosition(t *testing.T) {
	text := "Thank you for your application for the Data Engineer position at Acme."
	rec := ExtractFromText(text)
	assert.Equal(t, "Data Engineer", rec.Position)
	assert.Equal(t, "Acme", rec.Company)
}

func TestExtractFreeSalary(t *testing.T) {
	rec := ExtractFromText("The range for this role is $120,000 to start.")
	assert.Equal(t, "$120,000", rec.Salary)
}

func TestExtractURL(t *testing.T) {
	rec := ExtractFromText("Apply here: https://boards.greenhouse.io/acme/jobs/12345.")
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/12345", rec.SourceURL)
}

func TestExtractNothingFallsBackToNotes(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 60)
	rec := ExtractFromText(text)
	assert.True(t, rec.IsEmpty())
	assert.NotEmpty(t, rec.Notes)
	assert.LessOrEqual(t, len(rec.Notes), 1000)
	assert.NotEmpty(t, rec.Diagnostic)
}

func TestExtractEmptyInput(t *testing.T) {
	rec := ExtractFromText("")
	assert.True(t, rec.IsEmpty())
	assert.NotEmpty(t, rec.Diagnostic)
}
