package phylotree

import "strings"

// DatasetConfig describes a news dataset the pipeline can load
type DatasetConfig struct {
	Name        string
	File        string
	Type        string
	Description string
	MaxAge      string // ISO 8601 duration; articles older than this are dropped, empty keeps everything
}

// DatasetConfigs contains all configured datasets. The first entry is the
// default for load-articles when no path argument is given.
var DatasetConfigs = []DatasetConfig{
	{
		Name:        "News Dataset (JSON)",
		File:        "datasets/News_Category_Dataset_v3.json",
		Type:        "json",
		Description: "HuffPost news headlines, one JSON article per line",
	},
	{
		Name:        "Recent News (JSON)",
		File:        "datasets/News_Category_Dataset_v3.json",
		Type:        "json",
		Description: "Same dataset restricted to the last five years",
		MaxAge:      "P5Y",
	},
	{
		Name:        "News Articles",
		File:        "datasets/news.txt",
		Type:        "newick",
		Description: "News articles analyzed with OpenAI embeddings",
	},
}

// findDataset looks up a dataset configuration by name (case insensitive)
func findDataset(name string) (DatasetConfig, bool) {
	for _, ds := range DatasetConfigs {
		if strings.EqualFold(ds.Name, name) {
			return ds, true
		}
	}
	return DatasetConfig{}, false
}

// getDatasetNames returns a comma-separated list of configured dataset names
func getDatasetNames() string {
	var names []string
	for _, ds := range DatasetConfigs {
		names = append(names, ds.Name)
	}
	return strings.Join(names, ", ")
}
