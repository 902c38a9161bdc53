package phylotree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanNodeName(t *testing.T) {
	cases := map[string]struct {
		name string
		want string
	}{
		"leaf label":                {"POLITICS_042_Senate_Passes_Budget_Bill", "Senate Passes Budget Bill"},
		"cluster with counter":      {"SPORTS_cluster_2", "SPORTS"},
		"cluster without counter":   {"TECH_cluster", "TECH"},
		"two word category":         {"ARTS_&_CULTURE_012_Gallery_Opens", "Gallery Opens"},
		"mixed node":                {"WORLD_NEWS_mixed", "WORLD NEWS"},
		"bare trailing number":      {"Apollo_11", "Apollo 11"},
		"all noise falls back":      {"node42", "node42"},
		"mixed with counter":        {"TECH_SPORTS_mixed_3", "TECH SPORTS"},
		"dots and dashes":           {"COMEDY_007_Stand-up.night", "Stand up night"},
		"lowercase prefix stays":    {"lower_042_keeps_prefix", "lower 042 keeps prefix"},
		"category without headline": {"TECH_099", "TECH 099"},
	}

	for name, tc := range cases {
		assert.Equal(t, tc.want, cleanNodeName(tc.name), name)
	}
}

func TestIsClusterMarker(t *testing.T) {
	assert.True(t, isClusterMarker("cluster"))
	assert.True(t, isClusterMarker("cluster12"))
	assert.True(t, isClusterMarker("Mixed"))
	assert.False(t, isClusterMarker("clustering"))
	assert.False(t, isClusterMarker("42"))
}
