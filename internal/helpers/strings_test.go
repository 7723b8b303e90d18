package helpers_test

import (
	"testing"

	"github.com/AlejandroCarbajalHernandez/aws-image-optimizer/internal/helpers"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	testCases := []struct {
		Name     string
		Input    string
		Length   int
		Expected string
	}{
		{
			Name:     "shorter_than_limit",
			Input:    "Original Status 404",
			Length:   64,
			Expected: "Original Status 404",
		},
		{
			Name:     "exact_limit",
			Input:    "abcdef",
			Length:   6,
			Expected: "abcdef",
		},
		{
			Name:     "truncated",
			Input:    "Error: object not found",
			Length:   10,
			Expected: "Error: ...",
		},
		{
			Name:     "tiny_limit",
			Input:    "abcdef",
			Length:   2,
			Expected: "ab",
		},
		{
			Name:     "multibyte_boundary",
			Input:    "ab€cdefgh",
			Length:   6,
			Expected: "ab...",
		},
		{
			Name:     "multibyte_tiny_limit",
			Input:    "€€",
			Length:   2,
			Expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, helpers.Truncate(tc.Input, tc.Length))
		})
	}
}
