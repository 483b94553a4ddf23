package learn

import (
	"context"
	"testing"

	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLearningSurvivesRestart(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))

	ctx := context.Background()

	s := NewStore(db.Pool)
	orig := domain.ExtractedJob{Company: "Acme Holdings", Position: "Engineer"}
	corr := domain.ExtractedJob{Company: "Acme", Position: "Engineer"}
	for i := 0; i < 3; i++ {
		s.RecordFeedback(ctx, jobURL, orig, corr, "url-pattern")
	}

	// fresh store over the same database, as after a process restart
	s2 := NewStore(db.Pool)
	require.NoError(t, s2.Load(ctx))

	ps := s2.Patterns("boards.greenhouse.io")
	require.Len(t, ps, 1)
	assert.Equal(t, "Acme", ps[0].Corrected)
	assert.Equal(t, 3, ps[0].UsageCount)
	assert.InDelta(t, 0.7, ps[0].Confidence, 1e-9)

	ins := s2.DomainInsights("boards.greenhouse.io")
	assert.Equal(t, 3, ins.FeedbackCount)
}
