package phylotree

import "errors"

// Failure classes for the tree engine. Detail messages wrap these
// sentinels, so callers can classify with errors.Is.
var (
	// ErrValidation marks a malformed matrix or label set; retrying
	// without fixing the input cannot succeed.
	ErrValidation = errors.New("phylotree: invalid input")

	// ErrInsufficientData marks inputs with fewer than three items.
	ErrInsufficientData = errors.New("phylotree: insufficient data")

	// ErrSerialization marks a reserved character reaching the Newick
	// writer, or Newick text the parser cannot read.
	ErrSerialization = errors.New("phylotree: newick serialization failed")
)

// AnalysisResult is everything one analysis run produces.
type AnalysisResult struct {
	Newick     string         `json:"newick"`
	Statistics TreeStatistics `json:"statistics"`
	Clusters   [][]string     `json:"clusters"`
	NumItems   int            `json:"num_sequences"`
}

// Analyze runs the full engine over a raw distance matrix: validation,
// Neighbor-Joining construction, internal node labeling, statistics,
// threshold clustering and Newick serialization. It returns a complete
// result or an error, never a partial tree. Each call is independent,
// so concurrent analyses need no locking.
func Analyze(dist [][]float64, labels []string, threshold float64) (*AnalysisResult, error) {
	dm, err := NewDistanceMatrix(dist, labels)
	if err != nil {
		return nil, err
	}
	return analyzeMatrix(dm, threshold)
}

// AnalyzeEmbeddings runs the same engine over embedding vectors,
// converting them to a cosine distance matrix first.
func AnalyzeEmbeddings(embeddings [][]float64, labels []string, threshold float64) (*AnalysisResult, error) {
	dm, err := CosineDistanceMatrix(embeddings, labels)
	if err != nil {
		return nil, err
	}
	return analyzeMatrix(dm, threshold)
}

func analyzeMatrix(dm *DistanceMatrix, threshold float64) (*AnalysisResult, error) {
	tree, err := BuildTree(dm)
	if err != nil {
		return nil, err
	}
	LabelInternalNodes(tree)
	newick, err := WriteNewick(tree)
	if err != nil {
		return nil, err
	}
	return &AnalysisResult{
		Newick:     newick,
		Statistics: ComputeStatistics(tree),
		Clusters:   ExtractClusters(tree, threshold),
		NumItems:   dm.Size(),
	}, nil
}
