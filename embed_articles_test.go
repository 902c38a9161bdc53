package phylotree

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := initEmbeddingDB(filepath.Join(t.TempDir(), "embeddings.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

// TestEmbeddingDB_RoundTrip saves two embeddings and reads them back in
// requested label order, not insertion order.
func TestEmbeddingDB_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	first := NewsArticle{Category: "TECH", Headline: "First"}
	second := NewsArticle{Category: "SPORTS", Headline: "Second"}
	require.NoError(t, saveEmbedding(db, "TECH_000_First", first, []float64{1, 2, 3}))
	require.NoError(t, saveEmbedding(db, "SPORTS_001_Second", second, []float64{4, 5, 6}))

	embeddings, err := loadEmbeddingsByLabel(db, []string{"SPORTS_001_Second", "TECH_000_First"})
	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, []float64{4, 5, 6}, embeddings[0])
	assert.Equal(t, []float64{1, 2, 3}, embeddings[1])
}

func TestEmbeddingExists(t *testing.T) {
	db := openTestDB(t)

	exists, err := embeddingExists(db, "TECH_000_X")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, saveEmbedding(db, "TECH_000_X", NewsArticle{Category: "TECH", Headline: "X"}, []float64{1}))

	exists, err = embeddingExists(db, "TECH_000_X")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLoadEmbeddingsByLabel_MissingFails(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, saveEmbedding(db, "TECH_000_X", NewsArticle{Category: "TECH", Headline: "X"}, []float64{1}))

	_, err := loadEmbeddingsByLabel(db, []string{"TECH_000_X", "TECH_001_Y", "TECH_002_Z"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3")
}

// TestSaveEmbedding_DuplicateLabel checks the primary key rejects a
// second row for the same label.
func TestSaveEmbedding_DuplicateLabel(t *testing.T) {
	db := openTestDB(t)
	article := NewsArticle{Category: "TECH", Headline: "X"}
	require.NoError(t, saveEmbedding(db, "TECH_000_X", article, []float64{1}))
	require.Error(t, saveEmbedding(db, "TECH_000_X", article, []float64{2}))
}
