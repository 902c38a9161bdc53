package phylotree

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
)

// NodeInfo describes a tree node resolved against Wikipedia
type NodeInfo struct {
	Query       string `json:"query"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}

// searchNodeInfo resolves a tree node name to a Wikipedia page summary.
// Lookup failures degrade to a plain web search link, never an error.
func searchNodeInfo(nodeName string) NodeInfo {
	query := cleanNodeName(nodeName)
	info := NodeInfo{
		Query: query,
		URL:   "https://www.google.com/search?q=" + url.QueryEscape(query),
	}

	title, err := resolveWikipediaTitle(query)
	if err != nil {
		log.Printf("⚠️ Wikipedia search failed for %q: %v", query, err)
		return info
	}
	info.Title = title

	if err := fetchPageSummary(title, &info); err != nil {
		log.Printf("⚠️ Wikipedia summary failed for %q: %v", title, err)
		return info
	}

	return info
}

// resolveWikipediaTitle finds the best matching page title for a query
func resolveWikipediaTitle(query string) (string, error) {
	searchURL := "https://en.wikipedia.org/w/api.php?action=opensearch&format=json&limit=1&search=" + url.QueryEscape(query)

	resp, err := http.Get(searchURL)
	if err != nil {
		return "", fmt.Errorf("failed to search Wikipedia: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Wikipedia search returned status %d", resp.StatusCode)
	}

	// Opensearch responds with a positional array: [query, titles, descriptions, urls]
	var result []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode search response: %w", err)
	}
	if len(result) < 2 {
		return "", fmt.Errorf("unexpected search response with %d elements", len(result))
	}

	var titles []string
	if err := json.Unmarshal(result[1], &titles); err != nil {
		return "", fmt.Errorf("failed to decode search titles: %w", err)
	}
	if len(titles) == 0 {
		return "", fmt.Errorf("no page found for %q", query)
	}

	return titles[0], nil
}

// fetchPageSummary fills info from the Wikipedia REST summary endpoint
func fetchPageSummary(title string, info *NodeInfo) error {
	summaryURL := "https://en.wikipedia.org/api/rest_v1/page/summary/" + url.PathEscape(title)

	resp, err := http.Get(summaryURL)
	if err != nil {
		return fmt.Errorf("failed to fetch page summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("summary endpoint returned status %d", resp.StatusCode)
	}

	var summary struct {
		Title       string `json:"title"`
		Extract     string `json:"extract"`
		Description string `json:"description"`
		Thumbnail   struct {
			Source string `json:"source"`
		} `json:"thumbnail"`
		ContentURLs struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return fmt.Errorf("failed to decode summary response: %w", err)
	}

	if summary.Title != "" {
		info.Title = summary.Title
	}
	info.Summary = summary.Extract
	info.Description = summary.Description
	info.ImageURL = summary.Thumbnail.Source
	if summary.ContentURLs.Desktop.Page != "" {
		info.URL = summary.ContentURLs.Desktop.Page
	}

	return nil
}

var clusterMarkers = map[string]bool{
	"cluster": true,
	"mixed":   true,
	"node":    true,
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isUpperWord(s string) bool {
	return s == strings.ToUpper(s) && s != strings.ToLower(s)
}

// isClusterMarker reports whether a token is a cluster marker word,
// with or without a fused numeric suffix like "cluster2"
func isClusterMarker(token string) bool {
	word := strings.TrimRight(strings.ToLower(token), "0123456789")
	return clusterMarkers[word]
}

// cleanNodeName turns a tree node label into a searchable query.
// Labels carry structural noise from labeling and sanitization:
// "POLITICS_042_Senate_Passes_Budget_Bill" should search for
// "Senate Passes Budget Bill" and "SPORTS_cluster_2" for "SPORTS".
func cleanNodeName(name string) string {
	s := strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(name)
	tokens := strings.Fields(s)

	// Leading numeric index
	if len(tokens) > 0 && isDigits(tokens[0]) {
		tokens = tokens[1:]
	}

	// Trailing cluster markers and their counters. A bare trailing
	// number without a marker word stays ("Apollo 11").
	for len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		if isClusterMarker(last) {
			tokens = tokens[:len(tokens)-1]
			continue
		}
		if isDigits(last) && len(tokens) > 1 && isClusterMarker(tokens[len(tokens)-2]) {
			tokens = tokens[:len(tokens)-1]
			continue
		}
		break
	}

	// Leading category and article index from sample labels, dropped
	// only when headline tokens remain after them
	if len(tokens) >= 3 && isUpperWord(tokens[0]) {
		rest := tokens[1:]
		if len(tokens) >= 5 && tokens[1] == "&" && isUpperWord(tokens[2]) {
			rest = tokens[3:]
		}
		if len(rest) >= 2 && isDigits(rest[0]) {
			tokens = rest[1:]
		}
	}

	if len(tokens) == 0 {
		return strings.TrimSpace(name)
	}

	return strings.Join(tokens, " ")
}
