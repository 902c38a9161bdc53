package phylotree

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

// AnalysisArtifact is trees/analysis_results.json: everything the tree build
// produced except the Newick text, which lives in trees/news_tree.txt
type AnalysisArtifact struct {
	Statistics           TreeStatistics `json:"statistics"`
	Clusters             [][]string     `json:"clusters"`
	Metadata             []NewsArticle  `json:"metadata"`
	CategoryDistribution map[string]int `json:"category_distribution"`
	NumArticles          int            `json:"num_articles"`
	EmbeddingModel       string         `json:"embedding_model"`
	EmbeddingDim         int            `json:"embedding_dim"`
	Labels               []string       `json:"labels"`
}

var BuildTreeCmd = &cobra.Command{
	Use:   "build-tree",
	Short: "Build a similarity tree from cached embeddings",
	Run: func(cmd *cobra.Command, args []string) {
		// Own flag set, so the default survives the chained pipeline
		threshold, _ := BuildTreeCmd.Flags().GetFloat64("threshold")
		if err := buildTreeFromSample(threshold); err != nil {
			log.Printf("Failed to build tree: %v", err)
			return
		}
		log.Println("Tree build complete.")
	},
}

func init() {
	BuildTreeCmd.Flags().Float64("threshold", DefaultClusterThreshold, "cumulative branch length that closes a cluster")
}

// buildTreeFromSample runs the engine over the cached embeddings and writes
// the trees/ artifacts
func buildTreeFromSample(threshold float64) error {
	sample, err := loadArticleSample()
	if err != nil {
		return err
	}

	db, err := sql.Open("sqlite3", "embeddings.db")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	embeddings, err := loadEmbeddingsByLabel(db, sample.Labels)
	if err != nil {
		return fmt.Errorf("failed to load embeddings: %w", err)
	}
	log.Printf("Loaded %d embeddings for tree construction", len(embeddings))

	result, err := AnalyzeEmbeddings(embeddings, sample.Labels, threshold)
	if err != nil {
		return fmt.Errorf("failed to build tree: %w", err)
	}

	artifact := AnalysisArtifact{
		Statistics:           result.Statistics,
		Clusters:             result.Clusters,
		Metadata:             sample.Articles,
		CategoryDistribution: sample.CategoryDistribution,
		NumArticles:          len(sample.Articles),
		EmbeddingModel:       EmbeddingModelName,
		EmbeddingDim:         EmbeddingDimensions,
		Labels:               sample.Labels,
	}

	if err := saveTreeArtifacts(result.Newick, artifact); err != nil {
		return err
	}

	printTreeQualityReport(result, threshold)
	return nil
}

// saveTreeArtifacts writes trees/news_tree.txt and trees/analysis_results.json
func saveTreeArtifacts(newick string, artifact AnalysisArtifact) error {
	if err := os.MkdirAll("trees", 0755); err != nil {
		return fmt.Errorf("failed to create trees directory: %w", err)
	}

	newickPath := filepath.Join("trees", "news_tree.txt")
	if err := os.WriteFile(newickPath, []byte(newick), 0644); err != nil {
		return fmt.Errorf("failed to write newick file: %w", err)
	}
	log.Printf("Saved Newick tree to %s", newickPath)

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analysis results: %w", err)
	}
	resultsPath := filepath.Join("trees", "analysis_results.json")
	if err := os.WriteFile(resultsPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write analysis results: %w", err)
	}
	log.Printf("Saved analysis results to %s", resultsPath)

	return nil
}

// printTreeQualityReport logs a summary of the built tree
func printTreeQualityReport(result *AnalysisResult, threshold float64) {
	stats := result.Statistics
	log.Printf("📊 Tree quality report:")
	log.Printf("  Tips: %d, internal nodes: %d", stats.NumTips, stats.NumInternalNodes)
	log.Printf("  Total branch length: %.4f, max tip distance: %.4f", stats.TotalBranchLength, stats.MaxTipDistance)
	log.Printf("  Clusters at threshold %.2f: %d", threshold, len(result.Clusters))

	// Cluster size histogram, largest first
	sizes := make([]int, 0, len(result.Clusters))
	for _, cluster := range result.Clusters {
		sizes = append(sizes, len(cluster))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	singletons := 0
	for _, size := range sizes {
		if size == 1 {
			singletons++
		}
	}
	if len(sizes) > 8 {
		log.Printf("  Cluster sizes (top 8): %v, singletons: %d", sizes[:8], singletons)
	} else {
		log.Printf("  Cluster sizes: %v, singletons: %d", sizes, singletons)
	}
	log.Printf("✅ Tree built for %d articles", result.NumItems)
}
