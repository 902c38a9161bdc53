package phylotree

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sosodev/duration"
	"github.com/spf13/cobra"
)

// NewsArticle represents one line of the JSON-lines news dataset
type NewsArticle struct {
	Category         string `json:"category"`
	Headline         string `json:"headline"`
	ShortDescription string `json:"short_description"`
	Authors          string `json:"authors"`
	Link             string `json:"link"`
	Date             string `json:"date"`
}

// ArticleSample is the artifact written by load-articles and consumed by the later steps
type ArticleSample struct {
	Labels               []string       `json:"labels"`
	Texts                []string       `json:"texts"`
	Articles             []NewsArticle  `json:"articles"`
	CategoryDistribution map[string]int `json:"category_distribution"`
}

// LoadArticlesCmd: Reads a JSON-lines dataset, saves articles/sample.json
var LoadArticlesCmd = &cobra.Command{
	Use:   "load-articles [dataset.json]",
	Short: "Load and sample news articles from a dataset",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// The argument is either a configured dataset name or a file path
		dataset := DatasetConfigs[0]
		if len(args) > 0 {
			if ds, ok := findDataset(args[0]); ok {
				dataset = ds
			} else {
				log.Printf("No configured dataset named %q (known: %s), treating it as a file path", args[0], getDatasetNames())
				dataset = DatasetConfig{Name: args[0], File: args[0]}
			}
		}

		// Read from the command's own flag set so the flags keep their
		// defaults when this step runs as part of the chained pipeline
		sampleSize, _ := LoadArticlesCmd.Flags().GetInt("sample-size")
		maxAge, _ := LoadArticlesCmd.Flags().GetString("max-age")
		if maxAge == "" {
			maxAge = dataset.MaxAge
		}

		articles, err := loadArticles(dataset.File, maxAge)
		if err != nil {
			log.Fatalf("Failed to load articles: %v", err)
		}
		log.Printf("Loaded %d articles from %s", len(articles), dataset.File)

		sampled := sampleArticles(articles, sampleSize)
		if len(sampled) < len(articles) {
			log.Printf("Sampled %d articles", len(sampled))
		}

		sample := buildArticleSample(sampled)
		if err := saveArticleSample(sample); err != nil {
			log.Fatalf("Failed to save sample: %v", err)
		}

		log.Printf("📊 Kept %d articles across %d categories", len(sample.Articles), len(sample.CategoryDistribution))
		log.Println("Article loading complete.")
	},
}

func init() {
	LoadArticlesCmd.Flags().Int("sample-size", 200, "number of articles to keep after stratified sampling")
	LoadArticlesCmd.Flags().String("max-age", "", "drop articles older than this ISO 8601 duration, e.g. P5Y")
}

// loadArticles reads a JSON-lines news dataset, dropping articles older than maxAge
func loadArticles(path string, maxAge string) ([]NewsArticle, error) {
	var cutoff time.Time
	if maxAge != "" {
		d, err := duration.Parse(maxAge)
		if err != nil {
			return nil, fmt.Errorf("invalid max-age %q: %w", maxAge, err)
		}
		cutoff = time.Now().Add(-d.ToTimeDuration())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close dataset file: %v", err)
		}
	}()

	var articles []NewsArticle
	dropped := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var article NewsArticle
		if err := json.Unmarshal([]byte(line), &article); err != nil {
			return nil, fmt.Errorf("failed to parse dataset line: %w", err)
		}
		if article.Category == "" {
			article.Category = "Unknown"
		}
		if !cutoff.IsZero() {
			published, err := time.Parse("2006-01-02", article.Date)
			if err == nil && published.Before(cutoff) {
				dropped++
				continue
			}
		}
		articles = append(articles, article)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	if dropped > 0 {
		log.Printf("Dropped %d articles older than %s", dropped, maxAge)
	}
	return articles, nil
}

// sampleArticles draws a stratified sample: per-category quotas proportional to
// category size, categories in sorted order, selection shuffled with seed 42 so
// repeated runs pick the same articles
func sampleArticles(articles []NewsArticle, sampleSize int) []NewsArticle {
	if sampleSize <= 0 || len(articles) <= sampleSize {
		return articles
	}

	byCategory := make(map[string][]NewsArticle)
	for _, article := range articles {
		byCategory[article.Category] = append(byCategory[article.Category], article)
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	rng := rand.New(rand.NewSource(42))
	var sampled []NewsArticle
	for _, category := range categories {
		group := byCategory[category]
		quota := sampleSize * len(group) / len(articles)
		if quota < 1 {
			quota = 1
		}
		if quota > len(group) {
			quota = len(group)
		}
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		sampled = append(sampled, group[:quota]...)
	}

	return sampled
}

// buildArticleSample derives embedding texts and tree labels for the sampled articles
func buildArticleSample(articles []NewsArticle) ArticleSample {
	sample := ArticleSample{
		Labels:               make([]string, 0, len(articles)),
		Texts:                make([]string, 0, len(articles)),
		Articles:             articles,
		CategoryDistribution: make(map[string]int),
	}

	for idx, article := range articles {
		sample.Texts = append(sample.Texts, buildEmbeddingText(article))
		sample.Labels = append(sample.Labels, buildLabel(article, idx))
		sample.CategoryDistribution[article.Category]++
	}

	return sample
}

// buildEmbeddingText combines category, headline and description into the text
// sent to the embedding model
func buildEmbeddingText(article NewsArticle) string {
	var parts []string
	if article.Category != "" {
		parts = append(parts, "Category: "+article.Category)
	}
	if article.Headline != "" {
		parts = append(parts, "Title: "+article.Headline)
	}
	if article.ShortDescription != "" {
		parts = append(parts, "Description: "+article.ShortDescription)
	}
	return strings.Join(parts, " ")
}

// buildLabel builds a tree label like POLITICS_007_Some_headline. The headline
// part is truncated to 50 runes; the whole label is made safe for Newick output.
func buildLabel(article NewsArticle, idx int) string {
	if article.Headline == "" {
		return fmt.Sprintf("Article_%03d", idx)
	}

	headline := article.Headline
	if runes := []rune(headline); len(runes) > 50 {
		headline = string(runes[:50]) + "..."
	}
	return sanitizeLabel(fmt.Sprintf("%s_%03d_%s", article.Category, idx, headline))
}

// sanitizeLabel replaces Newick-reserved characters and spaces with underscores
// and strips quotes
func sanitizeLabel(label string) string {
	var b strings.Builder
	for _, r := range label {
		switch {
		case r == '\'' || r == '"':
			// dropped
		case r == ' ' || strings.ContainsRune(newickReserved, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// saveArticleSample writes the sample artifact consumed by the embed and build steps
func saveArticleSample(sample ArticleSample) error {
	if err := os.MkdirAll("articles", 0755); err != nil {
		return fmt.Errorf("failed to create articles directory: %w", err)
	}

	data, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sample: %w", err)
	}

	if err := os.WriteFile(filepath.Join("articles", "sample.json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write sample file: %w", err)
	}

	return nil
}

// loadArticleSample reads articles/sample.json written by load-articles
func loadArticleSample() (ArticleSample, error) {
	data, err := os.ReadFile(filepath.Join("articles", "sample.json"))
	if err != nil {
		return ArticleSample{}, fmt.Errorf("failed to read sample file (run 'load-articles' first): %w", err)
	}

	var sample ArticleSample
	if err := json.Unmarshal(data, &sample); err != nil {
		return ArticleSample{}, fmt.Errorf("failed to parse sample file: %w", err)
	}

	return sample, nil
}
