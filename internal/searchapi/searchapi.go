// Package searchapi wraps an optional third-party job-search API (JSearch
// on RapidAPI). Without a key the client is simply disabled; the
// orchestrator skips this stage instead of erroring.
package searchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobtrack-engine/internal/domain"
)

const defaultBaseURL = "https://jsearch.p.rapidapi.com"

type Client struct {
	apiKey  string
	baseURL string
	hc      *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: defaultBaseURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c != nil && c.apiKey != "" }

type searchResponse struct {
	Data []struct {
		EmployerName   string  `json:"employer_name"`
		JobTitle       string  `json:"job_title"`
		JobCity        string  `json:"job_city"`
		JobState       string  `json:"job_state"`
		JobMinSalary   float64 `json:"job_min_salary"`
		JobMaxSalary   float64 `json:"job_max_salary"`
		JobApplyLink   string  `json:"job_apply_link"`
		JobDescription string  `json:"job_description"`
	} `json:"data"`
}

// Search runs one query and returns the first hit with both an employer
// and a title, or an error when the API has nothing usable.
func (c *Client) Search(ctx context.Context, query string) (domain.ExtractedJob, error) {
	if !c.Enabled() {
		return domain.ExtractedJob{}, fmt.Errorf("search api disabled (no key)")
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("num_pages", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return domain.ExtractedJob{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", "jsearch.p.rapidapi.com")

	res, err := c.hc.Do(req)
	if err != nil {
		return domain.ExtractedJob{}, fmt.Errorf("search get: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return domain.ExtractedJob{}, fmt.Errorf("search status %d", res.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return domain.ExtractedJob{}, fmt.Errorf("search decode: %w", err)
	}

	for _, d := range sr.Data {
		co := strings.TrimSpace(d.EmployerName)
		title := strings.TrimSpace(d.JobTitle)
		if co == "" || title == "" {
			continue
		}
		rec := domain.ExtractedJob{
			Company:  co,
			Position: title,
		}
		if d.JobCity != "" {
			rec.Location = d.JobCity
			if d.JobState != "" {
				rec.Location += ", " + d.JobState
			}
		}
		if d.JobMinSalary > 0 && d.JobMaxSalary > 0 {
			rec.Salary = fmt.Sprintf("$%.0f - $%.0f", d.JobMinSalary, d.JobMaxSalary)
		}
		if d.JobApplyLink != "" {
			rec.SourceURL = d.JobApplyLink
		}
		return rec, nil
	}

	return domain.ExtractedJob{}, fmt.Errorf("no usable search results for %q", query)
}

// roleKeywords drive search-term derivation from URL path segments.
var roleKeywords = []string{
	"engineer", "developer", "designer", "manager", "analyst", "scientist",
	"architect", "consultant", "specialist", "devops", "sre", "intern",
}

// QueryFromURL derives search terms from a posting URL: prefer a path
// segment carrying a job-role keyword, fall back to the last meaningful
// segment, then to a generic query.
func QueryFromURL(raw string) string {
	// url.Parse accepts almost any string as a relative path, so require a
	// host before mining the path for terms
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || u.Path == "" {
		return "software engineer jobs"
	}

	segs := strings.Split(strings.Trim(strings.ToLower(u.Path), "/"), "/")

	for _, seg := range segs {
		words := strings.ReplaceAll(strings.ReplaceAll(seg, "-", " "), "_", " ")
		for _, kw := range roleKeywords {
			if strings.Contains(words, kw) {
				return strings.Join(strings.Fields(words), " ")
			}
		}
	}

	for i := len(segs) - 1; i >= 0; i-- {
		seg := segs[i]
		if seg == "" || seg == "jobs" || seg == "careers" || seg == "job" || isDigits(seg) {
			continue
		}
		return strings.Join(strings.Fields(strings.ReplaceAll(strings.ReplaceAll(seg, "-", " "), "_", " ")), " ")
	}

	return "software engineer jobs"
}

func isDigits(s string) bool {
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
