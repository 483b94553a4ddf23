package learn

import "sort"

// Insights is the derived per-domain view: recomputed from the whole
// feedback log whenever new feedback for the domain arrives, never merged
// incrementally, so it cannot drift from the log.
type Insights struct {
	Domain            string             `json:"domain"`
	FeedbackCount     int                `json:"feedbackCount"`
	FieldAccuracy     map[string]float64 `json:"fieldAccuracy"`
	CommonCorrections []Correction       `json:"commonCorrections,omitempty"`
	SuggestedPatterns []Pattern          `json:"suggestedPatterns,omitempty"`
}

// Correction is an aggregated original -> corrected edit for one field.
type Correction struct {
	Field     string `json:"field"`
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Count     int    `json:"count"`
}

// DomainInsights returns the cached insights for a domain, or a zero-value
// report when no feedback has been seen.
func (s *Store) DomainInsights(domainName string) Insights {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ins, ok := s.insights[domainName]; ok {
		return ins
	}
	return Insights{Domain: domainName, FieldAccuracy: map[string]float64{}}
}

// computeInsightsLocked rebuilds a domain's insights from scratch. Caller
// holds s.mu.
func (s *Store) computeInsightsLocked(domainName string) Insights {
	ins := Insights{
		Domain:        domainName,
		FieldAccuracy: make(map[string]float64),
	}

	type corrKey struct{ field, orig, corr string }
	corrCounts := make(map[corrKey]int)
	fieldSeen := make(map[string]int)
	fieldOK := make(map[string]int)

	for _, ev := range s.log {
		if ev.Domain != domainName {
			continue
		}
		ins.FeedbackCount++

		orig := fieldValues(ev.Original)
		corr := fieldValues(ev.Corrected)
		for field, ov := range orig {
			cv := corr[field]
			if ov == "" && cv == "" {
				continue
			}
			fieldSeen[field]++
			if ov == cv {
				fieldOK[field]++
			} else if cv != "" {
				corrCounts[corrKey{field, ov, cv}]++
			}
		}
	}

	for field, n := range fieldSeen {
		ins.FieldAccuracy[field] = float64(fieldOK[field]) / float64(n)
	}

	for k, n := range corrCounts {
		ins.CommonCorrections = append(ins.CommonCorrections, Correction{
			Field: k.field, Original: k.orig, Corrected: k.corr, Count: n,
		})
	}
	sort.Slice(ins.CommonCorrections, func(i, j int) bool {
		if ins.CommonCorrections[i].Count != ins.CommonCorrections[j].Count {
			return ins.CommonCorrections[i].Count > ins.CommonCorrections[j].Count
		}
		return ins.CommonCorrections[i].Field < ins.CommonCorrections[j].Field
	})

	for _, p := range s.patterns[domainName] {
		if p.Confidence > applyThreshold {
			ins.SuggestedPatterns = append(ins.SuggestedPatterns, *p)
		}
	}
	sort.Slice(ins.SuggestedPatterns, func(i, j int) bool {
		return ins.SuggestedPatterns[i].Confidence > ins.SuggestedPatterns[j].Confidence
	})

	return ins
}
