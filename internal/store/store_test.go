package store

import (
	"context"
	"database/sql"
	"testing"

	"jobtrack-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)
	require.NoError(t, Migrate(db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, 1, v)
}

func TestExtractionRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id, err := SaveExtraction(ctx, db.Pool, Extraction{
		Data: domain.ExtractedJob{
			Company:   "Acme",
			Position:  "Engineer",
			Salary:    "$120,000",
			SourceURL: "https://boards.greenhouse.io/acme/jobs/1",
		},
		Strategy:   "url-pattern",
		Confidence: 0.82,
	})
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	got, err := GetExtraction(ctx, db.Pool, id)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Data.Company)
	assert.Equal(t, "Engineer", got.Data.Position)
	assert.Equal(t, "url-pattern", got.Strategy)
	assert.InDelta(t, 0.82, got.Confidence, 1e-9)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestListExtractionsFiltersBySourceURL(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, u := range []string{"https://a.example/j", "https://b.example/j", "https://a.example/j"} {
		_, err := SaveExtraction(ctx, db.Pool, Extraction{
			Data: domain.ExtractedJob{Company: "Acme", Position: "Engineer", SourceURL: u},
		})
		require.NoError(t, err)
	}

	all, err := ListExtractions(ctx, db.Pool, ListExtractionsOpts{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyA, err := ListExtractions(ctx, db.Pool, ListExtractionsOpts{SourceURL: "https://a.example/j"})
	require.NoError(t, err)
	assert.Len(t, onlyA, 2)
}

func TestUpdateAndDeleteExtraction(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id, err := SaveExtraction(ctx, db.Pool, Extraction{
		Data: domain.ExtractedJob{Company: "Acme", Position: "Engineer", SourceURL: "https://a.example/j"},
	})
	require.NoError(t, err)

	require.NoError(t, UpdateExtraction(ctx, db.Pool, id, domain.ExtractedJob{
		Company:  "Acme Robotics",
		Position: "Staff Engineer",
	}))

	got, err := GetExtraction(ctx, db.Pool, id)
	require.NoError(t, err)
	assert.Equal(t, "Acme Robotics", got.Data.Company)
	// source_url is immutable on update
	assert.Equal(t, "https://a.example/j", got.Data.SourceURL)

	require.NoError(t, DeleteExtraction(ctx, db.Pool, id))
	assert.ErrorIs(t, UpdateExtraction(ctx, db.Pool, id, domain.ExtractedJob{}), sql.ErrNoRows)
}
