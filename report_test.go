package phylotree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackDigest_Singleton(t *testing.T) {
	articles := []NewsArticle{{Category: "TECH", Headline: "New chip", ShortDescription: "A faster chip."}}
	digest := fallbackDigest([]string{"TECH_000_New_chip"}, articles)
	assert.Equal(t, "New chip", digest.Title)
	assert.Equal(t, "A faster chip.", digest.Summary)
	assert.Equal(t, []string{"TECH"}, digest.Keywords)

	// Missing description gets a generated one.
	digest = fallbackDigest([]string{"x"}, []NewsArticle{{Category: "TECH", Headline: "New chip"}})
	assert.Equal(t, "Single article in the TECH category.", digest.Summary)
}

// TestFallbackDigest_DominantCategory checks the count tie breaks to the
// alphabetically smaller category.
func TestFallbackDigest_DominantCategory(t *testing.T) {
	articles := []NewsArticle{
		{Category: "WORLD", Headline: "a"},
		{Category: "TECH", Headline: "b"},
		{Category: "TECH", Headline: "c"},
		{Category: "WORLD", Headline: "d"},
	}
	digest := fallbackDigest([]string{"a", "b", "c", "d"}, articles)
	assert.Equal(t, "TECH: 4 related articles", digest.Title)
	assert.Equal(t, "A group of 4 articles dominated by the TECH category.", digest.Summary)
	assert.Equal(t, []string{"TECH", "WORLD"}, digest.Keywords)
}

func TestFallbackDigest_InternalNamesOnly(t *testing.T) {
	digest := fallbackDigest([]string{"TECH_cluster", "WORLD_mixed"}, nil)
	assert.Equal(t, "TECH_cluster, WORLD_mixed", digest.Title)
	assert.Equal(t, "Group of 2 related tree nodes.", digest.Summary)
	assert.Empty(t, digest.Keywords)
}

// TestDigestClusters_FallbackPaths keeps every cluster below two
// resolvable articles so no digest needs the AI path, then checks the
// size ordering of the sections.
func TestDigestClusters_FallbackPaths(t *testing.T) {
	artifact := AnalysisArtifact{
		Labels: []string{"TECH_000_a", "TECH_001_b"},
		Metadata: []NewsArticle{
			{Category: "TECH", Headline: "a headline"},
			{Category: "TECH", Headline: "b headline"},
		},
		Clusters: [][]string{
			{"TECH_cluster"},
			{"TECH_000_a"},
			{"TECH_001_b", "SPORTS_cluster"},
		},
	}

	sections := digestClusters(artifact)
	require.Len(t, sections, 3)

	// Two-member cluster first, then the singletons in extraction order.
	assert.Equal(t, []string{"TECH_001_b", "SPORTS_cluster"}, sections[0].Members)
	assert.Equal(t, "b headline", sections[0].Digest.Title)
	assert.Equal(t, []string{"b headline"}, sections[0].Headlines, "internal names carry no headline")
	assert.Equal(t, "TECH_cluster", sections[1].Digest.Title)
	assert.Equal(t, "a headline", sections[2].Digest.Title)
}

func TestFormatFinalReport_Structure(t *testing.T) {
	artifact := AnalysisArtifact{
		Statistics: TreeStatistics{
			NumTips:           4,
			NumInternalNodes:  2,
			TotalBranchLength: 15,
			MaxTipDistance:    9,
		},
		NumArticles:    4,
		EmbeddingModel: "test-model",
		EmbeddingDim:   8,
	}
	sections := []clusterSection{
		{
			Digest: ClusterDigest{
				Title:    "Budget fights",
				Summary:  "Two articles about budget negotiations.",
				Keywords: []string{"budget", "senate"},
			},
			Members:   []string{"a", "b"},
			Headlines: []string{"headline one", "headline two"},
		},
	}

	report := formatFinalReport(artifact, sections)
	assert.True(t, strings.HasPrefix(report, "# News Similarity Report\n"))
	assert.Contains(t, report, "| Articles (tips) | 4 |")
	assert.Contains(t, report, "| Embedding model | test-model (8 dims) |")
	assert.Contains(t, report, "## 1. Budget fights")
	assert.Contains(t, report, "**Keywords:** budget, senate")
	assert.Contains(t, report, "**Articles (2):**")
	assert.Contains(t, report, "- headline one")
}

func TestGenerateCompleteHTML(t *testing.T) {
	html := generateCompleteHTML("# Hello\n\nSome **bold** text.")
	assert.Contains(t, html, "<title>News Similarity Report</title>")
	assert.Contains(t, html, "Hello</h1>")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, ".report {", "stylesheet must be inlined")
}
