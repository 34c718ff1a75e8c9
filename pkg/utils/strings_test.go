package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveEmptyStrings(t *testing.T) {
	got := RemoveEmptyStrings([]string{"a", "", "b", ""})
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fraud Detection", "fraud-detection"},
		{"  AI / Credit  Scoring ", "ai-credit-scoring"},
		{"already-a-slug", "already-a-slug"},
		{"___", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}
