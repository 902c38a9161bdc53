package phylotree

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/report.html
var htmlTemplate string

//go:embed templates/styles.css
var cssStyles string

// ClusterDigest is the structured summary of one article cluster
type ClusterDigest struct {
	Title    string   `json:"title" jsonschema:"description=Short descriptive title for this group of articles"`
	Summary  string   `json:"summary" jsonschema:"description=Two to three sentence summary of what connects the articles"`
	Keywords []string `json:"keywords" jsonschema:"description=Three to five keywords shared by the articles"`
}

// clusterSection pairs a digest with the cluster members it covers
type clusterSection struct {
	Digest    ClusterDigest
	Members   []string
	Headlines []string
}

var GenerateReportCmd = &cobra.Command{
	Use:   "generate-report",
	Short: "Generate cluster report in both markdown and HTML formats",
	Run: func(cmd *cobra.Command, args []string) {
		report := generateReportFromTree()
		if err := os.WriteFile("report.md", []byte(report), 0644); err != nil {
			log.Printf("Failed to write report file: %v", err)
			return
		}
		log.Println("Report generated: report.md")

		// Generate HTML version
		htmlContent := generateCompleteHTML(report)
		if err := os.WriteFile("report.html", []byte(htmlContent), 0644); err != nil {
			log.Printf("Failed to write HTML file: %v", err)
			return
		}
		log.Println("HTML report generated: report.html")
	},
}

// generateReportFromTree builds the markdown report from the tree build artifacts
func generateReportFromTree() string {
	artifact, err := loadAnalysisArtifact()
	if err != nil {
		log.Printf("Failed to load analysis results: %v", err)
		return "# News Similarity Report\n\nNo analysis results found. Run 'build-tree' first.\n"
	}

	if len(artifact.Clusters) == 0 {
		return "# News Similarity Report\n\nNo clusters found in the analysis results.\n"
	}

	sections := digestClusters(artifact)
	return formatFinalReport(artifact, sections)
}

// loadAnalysisArtifact reads trees/analysis_results.json
func loadAnalysisArtifact() (AnalysisArtifact, error) {
	data, err := os.ReadFile("trees/analysis_results.json")
	if err != nil {
		return AnalysisArtifact{}, fmt.Errorf("failed to read analysis results: %w", err)
	}

	var artifact AnalysisArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return AnalysisArtifact{}, fmt.Errorf("failed to parse analysis results: %w", err)
	}

	return artifact, nil
}

// digestClusters produces one section per cluster, largest clusters first.
// Clusters with at least two resolvable articles go through the AI digest;
// singletons and AI failures fall back to a digest built from the members.
func digestClusters(artifact AnalysisArtifact) []clusterSection {
	// Labels and metadata are parallel arrays from the build step
	byLabel := make(map[string]NewsArticle, len(artifact.Labels))
	for i, label := range artifact.Labels {
		if i < len(artifact.Metadata) {
			byLabel[label] = artifact.Metadata[i]
		}
	}

	sections := make([]clusterSection, 0, len(artifact.Clusters))
	for _, cluster := range artifact.Clusters {
		// Cluster members can include internal group names; only leaf
		// labels resolve to articles
		var articles []NewsArticle
		var headlines []string
		for _, member := range cluster {
			if article, ok := byLabel[member]; ok {
				articles = append(articles, article)
				headlines = append(headlines, article.Headline)
			}
		}

		var digest ClusterDigest
		if len(articles) >= 2 {
			aiDigest, err := digestClusterWithAI(articles)
			if err != nil {
				log.Printf("AI digest failed for cluster of %d articles: %v", len(articles), err)
				digest = fallbackDigest(cluster, articles)
			} else {
				digest = aiDigest
			}
		} else {
			digest = fallbackDigest(cluster, articles)
		}

		sections = append(sections, clusterSection{
			Digest:    digest,
			Members:   cluster,
			Headlines: headlines,
		})
	}

	// Largest clusters first; ties keep extraction order
	sort.SliceStable(sections, func(i, j int) bool {
		return len(sections[i].Members) > len(sections[j].Members)
	})

	return sections
}

// digestClusterWithAI uses OpenAI API to summarize the articles of one cluster
func digestClusterWithAI(articles []NewsArticle) (ClusterDigest, error) {
	apiKey := Config.OpenAIAPIKey

	clusterJSON, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return ClusterDigest{}, fmt.Errorf("failed to marshal cluster: %w", err)
	}

	// Generate JSON schema for structured output
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaObj := reflector.Reflect(&ClusterDigest{})

	if schemaObj.Type == "" {
		schemaObj.Type = "object"
	}

	// Convert to interface{} for OpenAI SDK
	schemaBytes, err := json.Marshal(schemaObj)
	if err != nil {
		return ClusterDigest{}, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schema any
	if err := json.Unmarshal(schemaBytes, &schema); err != nil {
		return ClusterDigest{}, fmt.Errorf("failed to unmarshal schema: %w", err)
	}

	// Create OpenAI client
	client := openai.NewClient(option.WithAPIKey(apiKey))

	systemContent := `You are an expert news editor. You are given a group of news articles that an embedding-based similarity tree placed together.

Your tasks:
1. Write a short descriptive title for the group
2. Write a two to three sentence summary of what connects the articles
3. List three to five keywords shared by the articles

Rules:
- Describe the common thread, not each article separately
- Keep the language plain and neutral
- If the articles share only a broad topic, say so`
	userContent := fmt.Sprintf("Summarize what connects these related news articles:\n\n%s", string(clusterJSON))

	// Create chat completion with structured outputs
	chatCompletion, err := client.Chat.Completions.New(context.TODO(), openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemContent),
			openai.UserMessage(userContent),
		},
		Model:       openai.ChatModelGPT4_1,
		MaxTokens:   openai.Int(500),
		Temperature: openai.Float(0.1),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "cluster_digest",
					Description: openai.String("Summarize a group of related news articles"),
					Schema:      schema,
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return ClusterDigest{}, fmt.Errorf("failed to call OpenAI API: %w", err)
	}

	if len(chatCompletion.Choices) == 0 || chatCompletion.Choices[0].Message.Content == "" {
		return ClusterDigest{}, fmt.Errorf("no content in digest response")
	}

	var digest ClusterDigest
	if err := json.Unmarshal([]byte(chatCompletion.Choices[0].Message.Content), &digest); err != nil {
		return ClusterDigest{}, fmt.Errorf("failed to parse digest: %w", err)
	}

	return digest, nil
}

// fallbackDigest builds a digest without AI from the dominant category and
// member headlines
func fallbackDigest(members []string, articles []NewsArticle) ClusterDigest {
	if len(articles) == 0 {
		// Cluster of internal group names only
		return ClusterDigest{
			Title:   strings.Join(members, ", "),
			Summary: fmt.Sprintf("Group of %d related tree nodes.", len(members)),
		}
	}

	counts := make(map[string]int)
	for _, article := range articles {
		counts[article.Category]++
	}
	dominant := ""
	for category, count := range counts {
		if dominant == "" || count > counts[dominant] || (count == counts[dominant] && category < dominant) {
			dominant = category
		}
	}

	if len(articles) == 1 {
		summary := articles[0].ShortDescription
		if summary == "" {
			summary = fmt.Sprintf("Single article in the %s category.", dominant)
		}
		return ClusterDigest{
			Title:    articles[0].Headline,
			Summary:  summary,
			Keywords: []string{dominant},
		}
	}

	keywords := make([]string, 0, len(counts))
	for category := range counts {
		keywords = append(keywords, category)
	}
	sort.Strings(keywords)

	return ClusterDigest{
		Title:    fmt.Sprintf("%s: %d related articles", dominant, len(articles)),
		Summary:  fmt.Sprintf("A group of %d articles dominated by the %s category.", len(articles), dominant),
		Keywords: keywords,
	}
}

// formatFinalReport converts cluster sections to final markdown format
func formatFinalReport(artifact AnalysisArtifact, sections []clusterSection) string {
	report := "# News Similarity Report\n\n"
	report += fmt.Sprintf("*%s - %d articles in %d clusters*\n\n",
		time.Now().Format("2 January 2006"), artifact.NumArticles, len(sections))

	stats := artifact.Statistics
	report += "## Tree Statistics\n\n"
	report += "| Metric | Value |\n|---|---|\n"
	report += fmt.Sprintf("| Articles (tips) | %d |\n", stats.NumTips)
	report += fmt.Sprintf("| Internal nodes | %d |\n", stats.NumInternalNodes)
	report += fmt.Sprintf("| Total branch length | %.4f |\n", stats.TotalBranchLength)
	report += fmt.Sprintf("| Max tip distance | %.4f |\n", stats.MaxTipDistance)
	report += fmt.Sprintf("| Embedding model | %s (%d dims) |\n\n", artifact.EmbeddingModel, artifact.EmbeddingDim)

	for i, section := range sections {
		report += fmt.Sprintf("## %d. %s\n\n", i+1, section.Digest.Title)
		report += fmt.Sprintf("%s\n\n", section.Digest.Summary)

		if len(section.Digest.Keywords) > 0 {
			report += fmt.Sprintf("**Keywords:** %s\n\n", strings.Join(section.Digest.Keywords, ", "))
		}

		if len(section.Headlines) > 0 {
			report += fmt.Sprintf("**Articles (%d):**\n\n", len(section.Headlines))
			for _, headline := range section.Headlines {
				report += fmt.Sprintf("- %s\n", headline)
			}
			report += "\n"
		}

		report += "---\n\n"
	}

	return report
}

// generateCompleteHTML generates a complete HTML document with embedded CSS
func generateCompleteHTML(markdownContent string) string {
	// Configure goldmark with extensions
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Linkify,
			extension.Strikethrough,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	// Convert markdown to HTML
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdownContent), &buf); err != nil {
		log.Printf("Failed to convert markdown to HTML: %v", err)
		return ""
	}

	// Parse the HTML template
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		log.Printf("Failed to parse HTML template: %v", err)
		return ""
	}

	// Prepare template data
	data := struct {
		Title string
		Date  string
		Body  template.HTML
		CSS   template.CSS
	}{
		Title: "News Similarity Report",
		Date:  time.Now().Format("2 January 2006"),
		Body:  template.HTML(buf.String()),
		CSS:   template.CSS(cssStyles),
	}

	// Execute template
	var result bytes.Buffer
	if err := tmpl.Execute(&result, data); err != nil {
		log.Printf("Failed to execute template: %v", err)
		return ""
	}

	return result.String()
}
