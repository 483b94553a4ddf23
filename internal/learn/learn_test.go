package learn

import (
	"context"
	"testing"

	"jobtrack-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobURL = "https://boards.greenhouse.io/acme/jobs/1"

func feedback(s *Store, n int) {
	orig := domain.ExtractedJob{Company: "Acme Holdings", Position: "Engineer"}
	corr := domain.ExtractedJob{Company: "Acme", Position: "Engineer"}
	for i := 0; i < n; i++ {
		s.RecordFeedback(context.Background(), jobURL, orig, corr, "url-pattern")
	}
}

func TestRecordFeedbackCreatesPattern(t *testing.T) {
	s := NewStore(nil)
	feedback(s, 1)

	ps := s.Patterns("boards.greenhouse.io")
	require.Len(t, ps, 1)
	assert.Equal(t, "company", ps[0].Field)
	assert.Equal(t, "Acme Holdings", ps[0].Original)
	assert.Equal(t, "Acme", ps[0].Corrected)
	assert.Equal(t, 0.5, ps[0].Confidence)
	assert.Equal(t, 1, ps[0].UsageCount)
}

func TestRepeatedFeedbackIncrementsAndCaps(t *testing.T) {
	s := NewStore(nil)
	feedback(s, 3)

	ps := s.Patterns("boards.greenhouse.io")
	require.Len(t, ps, 1)
	assert.Equal(t, 3, ps[0].UsageCount)
	assert.InDelta(t, 0.7, ps[0].Confidence, 1e-9)
	assert.LessOrEqual(t, ps[0].Confidence, 1.0)

	feedback(s, 10)
	ps = s.Patterns("boards.greenhouse.io")
	assert.Equal(t, 13, ps[0].UsageCount)
	assert.Equal(t, 1.0, ps[0].Confidence)
}

func TestApplyBelowThresholdLeavesDataAlone(t *testing.T) {
	s := NewStore(nil)
	feedback(s, 3) // confidence 0.7, not strictly above the bar

	data := domain.ExtractedJob{Company: "Acme Holdings"}
	out, applied := s.ApplyLearnedPatterns("boards.greenhouse.io", data)
	assert.False(t, applied)
	assert.Equal(t, "Acme Holdings", out.Company)
}

func TestApplyAboveThresholdOverrides(t *testing.T) {
	s := NewStore(nil)
	feedback(s, 4) // confidence 0.8

	data := domain.ExtractedJob{Company: "Acme Holdings", Position: "Engineer"}
	out, applied := s.ApplyLearnedPatterns("boards.greenhouse.io", data)
	assert.True(t, applied)
	assert.Equal(t, "Acme", out.Company)
	assert.Equal(t, "Engineer", out.Position)
}

func TestApplyRequiresExactValueMatch(t *testing.T) {
	s := NewStore(nil)
	feedback(s, 4)

	data := domain.ExtractedJob{Company: "Acme Holdings Inc"}
	out, applied := s.ApplyLearnedPatterns("boards.greenhouse.io", data)
	assert.False(t, applied)
	assert.Equal(t, "Acme Holdings Inc", out.Company)
}

func TestChangedCorrectionRestartsTrust(t *testing.T) {
	s := NewStore(nil)
	feedback(s, 4)

	s.RecordFeedback(context.Background(), jobURL,
		domain.ExtractedJob{Company: "Acme Holdings"},
		domain.ExtractedJob{Company: "Acme Group"},
		"url-pattern")

	ps := s.Patterns("boards.greenhouse.io")
	require.Len(t, ps, 1)
	assert.Equal(t, "Acme Group", ps[0].Corrected)
	assert.Equal(t, 0.5, ps[0].Confidence)
}

func TestDomainInsights(t *testing.T) {
	s := NewStore(nil)
	feedback(s, 2)

	ins := s.DomainInsights("boards.greenhouse.io")
	assert.Equal(t, 2, ins.FeedbackCount)
	// company was corrected both times, position kept both times
	assert.Equal(t, 0.0, ins.FieldAccuracy["company"])
	assert.Equal(t, 1.0, ins.FieldAccuracy["position"])
	require.NotEmpty(t, ins.CommonCorrections)
	assert.Equal(t, "company", ins.CommonCorrections[0].Field)
	assert.Equal(t, 2, ins.CommonCorrections[0].Count)
}

func TestInsightsForUnknownDomain(t *testing.T) {
	s := NewStore(nil)
	ins := s.DomainInsights("nowhere.example")
	assert.Equal(t, 0, ins.FeedbackCount)
	assert.Empty(t, ins.CommonCorrections)
}

func TestClear(t *testing.T) {
	s := NewStore(nil)
	feedback(s, 4)
	s.Clear(context.Background())

	assert.Empty(t, s.Patterns("boards.greenhouse.io"))
	assert.Equal(t, 0, s.DomainInsights("boards.greenhouse.io").FeedbackCount)
}
