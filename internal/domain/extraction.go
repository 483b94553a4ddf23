package domain

import "strings"

// ExtractedJob is the record threaded through the extraction pipeline.
// All fields are best-effort; empty string means "not recovered".
type ExtractedJob struct {
	Company    string `json:"company"`
	Position   string `json:"position"`
	Salary     string `json:"salary"`
	HourlyRate string `json:"hourlyRate"`
	Location   string `json:"location"`
	Notes      string `json:"notes"`
	SourceURL  string `json:"sourceUrl"`

	// Diagnostic is a human-readable note: partial, failed, or a
	// confidence caveat. A record with neither Company nor Position must
	// carry one before it reaches the UI.
	Diagnostic string `json:"diagnostic,omitempty"`
	Error      string `json:"error,omitempty"`
}

// HasCore reports whether both required fields were recovered.
func (j ExtractedJob) HasCore() bool {
	return strings.TrimSpace(j.Company) != "" && strings.TrimSpace(j.Position) != ""
}

// IsEmpty reports whether no field at all was recovered.
func (j ExtractedJob) IsEmpty() bool {
	return strings.TrimSpace(j.Company) == "" &&
		strings.TrimSpace(j.Position) == "" &&
		strings.TrimSpace(j.Salary) == "" &&
		strings.TrimSpace(j.HourlyRate) == "" &&
		strings.TrimSpace(j.Location) == ""
}

// Merge fills empty fields of j from other. Existing values win.
func (j *ExtractedJob) Merge(other ExtractedJob) {
	if j.Company == "" {
		j.Company = other.Company
	}
	if j.Position == "" {
		j.Position = other.Position
	}
	if j.Salary == "" {
		j.Salary = other.Salary
	}
	if j.HourlyRate == "" {
		j.HourlyRate = other.HourlyRate
	}
	if j.Location == "" {
		j.Location = other.Location
	}
	if j.Notes == "" {
		j.Notes = other.Notes
	}
	if j.SourceURL == "" {
		j.SourceURL = other.SourceURL
	}
}

// ExtractionResult is the envelope handed to the UI. Success is false only
// for total failures; partial extractions are successes with a diagnostic.
type ExtractionResult struct {
	Success    bool         `json:"success"`
	Data       ExtractedJob `json:"data"`
	Confidence float64      `json:"confidence"`
	Strategy   string       `json:"strategy,omitempty"`
	Error      string       `json:"error,omitempty"`
}
