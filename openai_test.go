package phylotree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseRetryAfter("5"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("not-a-delay"))

	// HTTP date values become a relative delay.
	future := time.Now().Add(time.Minute).UTC().Format(time.RFC1123)
	delay := parseRetryAfter(future)
	assert.Greater(t, delay, 55*time.Second)
	assert.LessOrEqual(t, delay, time.Minute)
}
