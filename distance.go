package phylotree

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// floatTol bounds the floating noise accepted by the symmetry, diagonal
// and negativity checks.
const floatTol = 1e-9

// newickReserved holds the characters Newick names must not contain.
const newickReserved = ":;,()[]"

// DistanceMatrix is a validated pairwise distance matrix with one
// unique, Newick-safe label per row. It is immutable once constructed:
// the constructor copies its inputs and tree construction works on its
// own copy.
type DistanceMatrix struct {
	dist   [][]float64
	labels []string
}

// NewDistanceMatrix validates and copies a raw matrix and its labels.
// Shape, symmetry, diagonal, negativity and label problems fail with
// ErrValidation; fewer than three rows fails with ErrInsufficientData.
func NewDistanceMatrix(dist [][]float64, labels []string) (*DistanceMatrix, error) {
	n := len(dist)
	for i, row := range dist {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrValidation, i, len(row), n)
		}
	}
	if len(labels) != n {
		return nil, fmt.Errorf("%w: %d labels for %d rows", ErrValidation, len(labels), n)
	}
	for i := 0; i < n; i++ {
		if math.Abs(dist[i][i]) > floatTol {
			return nil, fmt.Errorf("%w: non-zero diagonal at [%d][%d]", ErrValidation, i, i)
		}
		for j := i + 1; j < n; j++ {
			if math.Abs(dist[i][j]-dist[j][i]) > floatTol {
				return nil, fmt.Errorf("%w: asymmetric at [%d][%d]", ErrValidation, i, j)
			}
			if dist[i][j] < -floatTol {
				return nil, fmt.Errorf("%w: negative distance at [%d][%d]", ErrValidation, i, j)
			}
		}
	}
	seen := make(map[string]bool, n)
	for i, label := range labels {
		if label == "" {
			return nil, fmt.Errorf("%w: empty label at index %d", ErrValidation, i)
		}
		if strings.ContainsAny(label, newickReserved) {
			return nil, fmt.Errorf("%w: label %q contains a newick-reserved character", ErrValidation, label)
		}
		if seen[label] {
			return nil, fmt.Errorf("%w: duplicate label %q", ErrValidation, label)
		}
		seen[label] = true
	}
	if n < 3 {
		return nil, fmt.Errorf("%w: need at least 3 items, got %d", ErrInsufficientData, n)
	}

	copied := make([][]float64, n)
	for i := range dist {
		copied[i] = make([]float64, n)
		copy(copied[i], dist[i])
	}
	return &DistanceMatrix{
		dist:   copied,
		labels: append([]string(nil), labels...),
	}, nil
}

// Size returns the number of items.
func (m *DistanceMatrix) Size() int {
	return len(m.dist)
}

// Labels returns a copy of the item labels in row order.
func (m *DistanceMatrix) Labels() []string {
	return append([]string(nil), m.labels...)
}

// At returns the distance between items i and j.
func (m *DistanceMatrix) At(i, j int) float64 {
	return m.dist[i][j]
}

// CosineDistanceMatrix builds a validated distance matrix from embedding
// vectors: rows are L2-normalized, pairwise similarity is the normalized
// dot product, distance is 1 minus similarity with the diagonal forced
// to zero. Float noise pushing a similarity past 1 is clamped back so
// distances stay non-negative.
func CosineDistanceMatrix(embeddings [][]float64, labels []string) (*DistanceMatrix, error) {
	n := len(embeddings)
	if n < 3 {
		return nil, fmt.Errorf("%w: need at least 3 embeddings, got %d", ErrInsufficientData, n)
	}
	dim := len(embeddings[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-dimensional embeddings", ErrValidation)
	}
	for i, e := range embeddings {
		if len(e) != dim {
			return nil, fmt.Errorf("%w: embedding %d has dimension %d, want %d", ErrValidation, i, len(e), dim)
		}
	}

	normalized := mat.NewDense(n, dim, nil)
	for i, e := range embeddings {
		var sq float64
		for _, v := range e {
			sq += v * v
		}
		norm := math.Sqrt(sq)
		if norm == 0 {
			return nil, fmt.Errorf("%w: zero-length embedding at index %d", ErrValidation, i)
		}
		for j, v := range e {
			normalized.Set(i, j, v/norm)
		}
	}

	var similarity mat.Dense
	similarity.Mul(normalized, normalized.T())

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	// Mirror the upper triangle so the matrix is exactly symmetric.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := 1 - similarity.At(i, j)
			if d < 0 {
				d = 0
			}
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return NewDistanceMatrix(dist, labels)
}
