package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveName(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "URL with hyphenated slug",
			raw:      "fs://spool/abc-123",
			expected: "Abc 123",
		},
		{
			name:     "Trailing slash",
			raw:      "https://example.com/spools/prusament-pla/",
			expected: "Prusament Pla",
		},
		{
			name:     "Underscores",
			raw:      "fs://spool/galaxy_black_petg",
			expected: "Galaxy Black Petg",
		},
		{
			name:     "Bare word",
			raw:      "overture",
			expected: "Overture",
		},
		{
			name:     "Whitespace around payload",
			raw:      "  fs://spool/tpu-95a  ",
			expected: "Tpu 95a",
		},
		{
			name:     "Empty after trimming",
			raw:      "///",
			expected: "Unknown Spool",
		},
		{
			name:     "Empty string",
			raw:      "",
			expected: "Unknown Spool",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DeriveName(tc.raw))
		})
	}
}
