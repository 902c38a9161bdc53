package phylotree

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

var EmbedArticlesCmd = &cobra.Command{
	Use:   "embed-articles",
	Short: "Generate embeddings for all sampled articles",
	Run: func(cmd *cobra.Command, args []string) {
		if err := embedAllArticles(); err != nil {
			log.Printf("Failed to embed articles: %v", err)
			return
		}
		log.Println("Article embedding complete.")
	},
}

// embedAllArticles embeds every sampled article that is not already cached
func embedAllArticles() error {
	sample, err := loadArticleSample()
	if err != nil {
		return err
	}

	db, err := initEmbeddingDB("embeddings.db")
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	embedded := 0
	for i, label := range sample.Labels {
		// Check if embedding already exists
		exists, err := embeddingExists(db, label)
		if err != nil {
			return fmt.Errorf("failed to check existing embedding: %w", err)
		}

		if exists {
			continue
		}

		embedding, err := generateEmbedding(sample.Texts[i])
		if err != nil {
			return fmt.Errorf("failed to generate embedding for %s: %w", label, err)
		}

		if err := saveEmbedding(db, label, sample.Articles[i], embedding); err != nil {
			return fmt.Errorf("failed to save embedding: %w", err)
		}

		embedded++
		log.Printf("Generated embedding for article: %s", label)

		// Small delay to avoid rate limiting
		time.Sleep(100 * time.Millisecond)
	}

	log.Printf("📊 Embedded %d new articles (%d already cached)", embedded, len(sample.Labels)-embedded)
	return nil
}

// initEmbeddingDB initializes the SQLite database for embeddings
func initEmbeddingDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Create table if not exists
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS embeddings (
		label TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		headline TEXT NOT NULL,
		embedding_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_category ON embeddings(category);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
		return nil, err
	}

	return db, nil
}

// embeddingExists checks if an embedding already exists in the database
func embeddingExists(db *sql.DB, label string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM embeddings WHERE label = ?", label).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// saveEmbedding saves an embedding to the database
func saveEmbedding(db *sql.DB, label string, article NewsArticle, embedding []float64) error {
	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	insertSQL := `
	INSERT INTO embeddings (label, category, headline, embedding_json)
	VALUES (?, ?, ?, ?)
	`

	_, err = db.Exec(insertSQL, label, article.Category, article.Headline, string(embeddingJSON))
	if err != nil {
		return fmt.Errorf("failed to insert embedding: %w", err)
	}

	return nil
}

// loadEmbeddingsByLabel loads cached embeddings in the order of the given labels
func loadEmbeddingsByLabel(db *sql.DB, labels []string) ([][]float64, error) {
	rows, err := db.Query("SELECT label, embedding_json FROM embeddings")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Failed to close rows: %v", err)
		}
	}()

	byLabel := make(map[string][]float64)
	for rows.Next() {
		var label, embeddingJSON string
		if err := rows.Scan(&label, &embeddingJSON); err != nil {
			return nil, err
		}
		var embedding []float64
		if err := json.Unmarshal([]byte(embeddingJSON), &embedding); err != nil {
			return nil, fmt.Errorf("failed to parse embedding for %s: %w", label, err)
		}
		byLabel[label] = embedding
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	embeddings := make([][]float64, 0, len(labels))
	missing := 0
	for _, label := range labels {
		embedding, ok := byLabel[label]
		if !ok {
			missing++
			continue
		}
		embeddings = append(embeddings, embedding)
	}
	if missing > 0 {
		return nil, fmt.Errorf("%d of %d articles have no cached embedding (run 'embed-articles' first)", missing, len(labels))
	}

	return embeddings, nil
}
