package urlparse

import (
	"strings"

	"jobtrack-engine/internal/domain"
)

// vendors is the fixed dispatch table. Order matters: more specific hosts
// (boards.greenhouse.io) before generic ones is irrelevant here because host
// sets are disjoint, but keep ATS boards grouped together.
var vendors = []vendorRule{
	{Name: "linkedin", Hosts: []string{"linkedin.com"}, Parse: parseLinkedIn},
	{Name: "indeed", Hosts: []string{"indeed.com"}, Parse: parseIndeed},
	{Name: "glassdoor", Hosts: []string{"glassdoor.com", "glassdoor.co"}, Parse: parseGlassdoor},
	{Name: "wellfound", Hosts: []string{"wellfound.com", "angel.co"}, Parse: parseWellfound},
	{Name: "greenhouse", Hosts: []string{"greenhouse.io"}, Parse: parseGreenhouse},
	{Name: "lever", Hosts: []string{"lever.co"}, Parse: parseLever},
	{Name: "workday", Hosts: []string{"myworkdayjobs.com", "workday.com"}, Parse: parseWorkday},
	{Name: "ziprecruiter", Hosts: []string{"ziprecruiter.com"}, Parse: parseZipRecruiter},
	{Name: "monster", Hosts: []string{"monster.com"}, Parse: parseMonster},
	{Name: "simplyhired", Hosts: []string{"simplyhired.com"}, Parse: parseSimplyHired},
	{Name: "dice", Hosts: []string{"dice.com"}, Parse: parseDice},
	{Name: "careerbuilder", Hosts: []string{"careerbuilder.com"}, Parse: parseCareerBuilder},
	{Name: "bamboohr", Hosts: []string{"bamboohr.com"}, Parse: parseBambooHR},
	{Name: "smartrecruiters", Hosts: []string{"smartrecruiters.com"}, Parse: parseSmartRecruiters},
	{Name: "workable", Hosts: []string{"workable.com"}, Parse: parseWorkable},
}

// linkedin.com/jobs/view/senior-engineer-at-acme-4012345678
func parseLinkedIn(_ string, segs []string) domain.ExtractedJob {
	var rec domain.ExtractedJob
	slug := segAfter(segs, "view")
	if slug == "" {
		return rec
	}
	slug = trimTrailingID(slug)
	if pos, co, ok := splitAtMarker(slug, "-at-"); ok {
		rec.Position = CleanTitle(pos)
		rec.Company = CleanCompany(co)
		return rec
	}
	rec.Position = CleanTitle(slug)
	return rec
}

// indeed.com/cmp/acme-inc/jobs or /viewjob (fields live in the query there)
func parseIndeed(_ string, segs []string) domain.ExtractedJob {
	var rec domain.ExtractedJob
	if co := segAfter(segs, "cmp"); co != "" {
		rec.Company = CleanCompany(co)
	}
	return rec
}

// glassdoor.com/job-listing/senior-engineer-acme-corp-JV_IC123.htm
// The slug runs position-first; the last two hyphen tokens before the
// requisition id are the company.
func parseGlassdoor(_ string, segs []string) domain.ExtractedJob {
	var rec domain.ExtractedJob
	slug := segAfter(segs, "job-listing")
	if slug == "" && len(segs) > 0 {
		slug = segs[len(segs)-1]
	}
	if slug == "" {
		return rec
	}
	slug = strings.TrimSuffix(slug, ".htm")

	tokens := strings.Split(slug, "-")
	// drop trailing requisition tokens (JV_..., numeric ids)
	for len(tokens) > 0 && looksLikeReqID(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) < 3 {
		rec.Position = CleanTitle(strings.Join(tokens, " "))
		return rec
	}
	split := len(tokens) - 2
	rec.Position = CleanTitle(strings.Join(tokens[:split], " "))
	rec.Company = CleanCompany(strings.Join(tokens[split:], " "))
	return rec
}

// wellfound.com/company/acme/jobs/12345-senior-engineer
func parseWellfound(_ string, segs []string) domain.ExtractedJob {
	var rec domain.ExtractedJob
	if co := segAfter(segs, "company"); co != "" {
		rec.Company = CleanCompany(co)
	}
	if slug := segAfter(segs, "jobs"); slug != "" {
		rec.Position = CleanTitle(trimLeadingID(slug))
	}
	return rec
}

// boards.greenhouse.io/acme/jobs/12345 — company slug first, then /jobs/<id>
func parseGreenhouse(_ string, segs []string) domain.ExtractedJob {
	var rec domain.ExtractedJob
	if len(segs) > 0 && segs[0] != "jobs" && segs[0] != "embed" {
		rec.Company = CleanCompany(segs[0])
	}
	if slug := segAfter(segs, "jobs"); slug != "" && !isNumeric(slug) {
		rec.Position = CleanTitle(slug)
	}
	return rec
}

// jobs.lever.co/acme/7f1e2d3c-... — company slug first, posting id after
func parseLever(_ string, segs []string) domain.ExtractedJob {
	var rec domain.ExtractedJob
	if len(segs) > 0 {
		rec.Company = CleanCompany(segs[0])
	}
	return rec
}

// acme.wd5.myworkdayjobs.com/en-US/External/job/Dallas-TX/Senior-Engineer_R-12345
func parseWorkday(host string, segs []string) domain.ExtractedJob {
	var rec domain.ExtractedJob

	// tenant is the first label of the myworkdayjobs host
	if i := strings.Index(host, ".wd"); i > 0 {
		rec.Company = CleanCompany(host[:i])
	} else if labels := strings.Split(host, "."); len(labels) > 2 {
		rec.Company = CleanCompany(labels[0])
	}

	for i, s := range segs {
		if s != "job" {
			continue
		}
		// /job/<location>/<title-slug>_<reqid>
		if i+1 < len(segs) {
			rec.Location = CleanTitle(segs[i+1])
		}
		if i+2 < len(segs) {
			slug := segs[i+2]
			if j := strings.LastIndex(slug, "_"); j > 0 {
				slug = slug[:j]
			}
			rec.Position = CleanTitle(slug)
		}
		break
	}
	return rec
}

// ziprecruiter.com/c/Acme-Inc/Job/Senior-Engineer/-in-Dallas,TX
func parseZipRecruiter(_ string, segs []string) domain.ExtractedJob {
	var rec domain.ExtractedJob
	if co := segAfter(segs, "c"); co != "" {
		rec.Company = CleanCompany(co)
	}
	if slug := segAfter(segs, "job"); slug != "" {
		rec.Position = CleanTitle(slug)
	}
	return rec
}

// monster.com/job-openings/senior-engineer-dallas-tx--1a2b3c
func parseMonster(_ string, segs []string) domain.ExtractedJob {
	var rec domain.ExtractedJob
	if slug := segAfter(segs, "job-openings"); slug != "" {
		slug = strings.SplitN(slug, "--", 2)[0]
		rec.Position = CleanTitle(slug)
	}
	return rec
}

// simplyhired.com/job/<opaque-id> — nothing useful in the path
func parseSimplyHired(_ string, _ []string) domain.ExtractedJob {
	return domain.ExtractedJob{}
}

// dice.com/job-detail/<uuid> or /jobs/detail/<title>/<company>/<id>
func parseDice(_ string, segs []string) domain.ExtractedJob {
	var rec domain.ExtractedJob
	for i, s := range segs {
		if s == "detail" && i+1 < len(segs) && !isNumeric(segs[i+1]) {
			rec.Position = CleanTitle(segs[i+1])
			if i+2 < len(segs) && !isNumeric(segs[i+2]) {
				rec.Company = CleanCompany(segs[i+2])
			}
			break
		}
	}
	return rec
}

// careerbuilder.com/job/<id>/senior-engineer-acme
func parseCareerBuilder(_ string, segs []string) domain.ExtractedJob {
	var rec domain.ExtractedJob
	if slug := segAfter(segs, "job"); slug != "" {
		if isNumeric(slug) || strings.HasPrefix(slug, "j") && len(slug) > 20 {
			// opaque id; try the segment after it
			if i := indexOf(segs, slug); i >= 0 && i+1 < len(segs) {
				rec.Position = CleanTitle(segs[i+1])
			}
		} else {
			rec.Position = CleanTitle(slug)
		}
	}
	return rec
}

// acme.bamboohr.com/careers/42 — company rides on the subdomain
func parseBambooHR(host string, segs []string) domain.ExtractedJob {
	var rec domain.ExtractedJob
	if i := strings.Index(host, ".bamboohr.com"); i > 0 {
		rec.Company = CleanCompany(host[:i])
	}
	if slug := segAfter(segs, "careers"); slug != "" && !isNumeric(slug) {
		rec.Position = CleanTitle(slug)
	}
	return rec
}

// jobs.smartrecruiters.com/Acme/743999-senior-engineer
func parseSmartRecruiters(_ string, segs []string) domain.ExtractedJob {
	var rec domain.ExtractedJob
	if len(segs) > 0 {
		rec.Company = CleanCompany(segs[0])
	}
	if len(segs) > 1 {
		rec.Position = CleanTitle(trimLeadingID(segs[1]))
	}
	return rec
}

// apply.workable.com/acme/j/AB12CD34EF/ — company slug first
func parseWorkable(_ string, segs []string) domain.ExtractedJob {
	var rec domain.ExtractedJob
	if len(segs) > 0 && segs[0] != "j" {
		rec.Company = CleanCompany(segs[0])
	}
	return rec
}

// ---------------- slug helpers ----------------

func segAfter(segs []string, key string) string {
	for i, s := range segs {
		if s == key && i+1 < len(segs) {
			return segs[i+1]
		}
	}
	return ""
}

func indexOf(segs []string, v string) int {
	for i, s := range segs {
		if s == v {
			return i
		}
	}
	return -1
}

// trimTrailingID drops a trailing -1234567890 style id from a slug.
func trimTrailingID(slug string) string {
	if i := strings.LastIndex(slug, "-"); i > 0 && isNumeric(slug[i+1:]) {
		return slug[:i]
	}
	return slug
}

// trimLeadingID drops a leading 12345- style id from a slug.
func trimLeadingID(slug string) string {
	if i := strings.Index(slug, "-"); i > 0 && isNumeric(slug[:i]) {
		return slug[i+1:]
	}
	return slug
}

// splitAtMarker splits "senior-engineer-at-acme" around the marker.
func splitAtMarker(slug, marker string) (before, after string, ok bool) {
	i := strings.LastIndex(slug, marker)
	if i <= 0 {
		return "", "", false
	}
	return slug[:i], slug[i+len(marker):], true
}
