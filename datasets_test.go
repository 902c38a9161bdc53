package phylotree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindDataset_CaseInsensitive(t *testing.T) {
	ds, ok := findDataset("recent news (json)")
	assert.True(t, ok)
	assert.Equal(t, "Recent News (JSON)", ds.Name)
	assert.Equal(t, "P5Y", ds.MaxAge)

	_, ok = findDataset("no such dataset")
	assert.False(t, ok)
}

func TestGetDatasetNames(t *testing.T) {
	names := getDatasetNames()
	assert.Contains(t, names, "News Dataset (JSON)")
	assert.Contains(t, names, ", ")
}
