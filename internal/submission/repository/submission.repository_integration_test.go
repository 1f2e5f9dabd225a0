package repository

import (
	"database/sql"
	"testing"

	"prophecyorb/config/database"
	"prophecyorb/internal/submission/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

// openTestDB gives each test a fresh in-memory SQLite database with the
// production schema. A single connection keeps :memory: stable across
// statements.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertThenRandomRoundTrip(t *testing.T) {
	repo := NewSubmissionRepository(openTestDB(t))

	id, err := repo.Insert("the river will remember", "")
	require.NoError(t, err)
	assert.Positive(t, id)

	s, err := repo.Random()
	require.NoError(t, err)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, "the river will remember", s.TextContent)
	assert.Equal(t, model.KindText, s.Kind)
	assert.False(t, s.CreatedAt.IsZero())
}

func TestRandomOnEmptyTable(t *testing.T) {
	repo := NewSubmissionRepository(openTestDB(t))

	_, err := repo.Random()
	assert.ErrorIs(t, err, ErrEmptyOrb)
}

func TestRandomSelectionIsRoughlyUniform(t *testing.T) {
	repo := NewSubmissionRepository(openTestDB(t))

	ids := make(map[int64]int)
	for _, text := range []string{"one", "two", "three"} {
		id, err := repo.Insert(text, "")
		require.NoError(t, err)
		ids[id] = 0
	}

	const draws = 600
	for i := 0; i < draws; i++ {
		s, err := repo.Random()
		require.NoError(t, err)
		ids[s.ID]++
	}

	// Expected 200 each; a bound of 120 is over five standard deviations out.
	for id, hits := range ids {
		assert.Greater(t, hits, 120, "submission %d drawn %d/%d times", id, hits, draws)
	}
}

func TestCountTracksInserts(t *testing.T) {
	repo := NewSubmissionRepository(openTestDB(t))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = repo.Insert("", "doodle-1.png")
	require.NoError(t, err)
	_, err = repo.Insert("text and art", "doodle-2.png")
	require.NoError(t, err)

	count, err = repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestKindConstraintEnforcedBySchema(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(
		`INSERT INTO submissions (text_content, doodle_filename, submission_type) VALUES (?, ?, ?)`,
		"x", nil, "sculpture",
	)
	assert.Error(t, err, "schema must reject unknown submission types")
}
