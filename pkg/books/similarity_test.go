package books

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := map[string]struct {
		a        []float32
		b        []float32
		expected float64
	}{
		"identical vectors": {
			a:        []float32{1, 2, 3},
			b:        []float32{1, 2, 3},
			expected: 1,
		},
		"orthogonal vectors": {
			a:        []float32{1, 0},
			b:        []float32{0, 1},
			expected: 0,
		},
		"opposite vectors": {
			a:        []float32{1, 0},
			b:        []float32{-1, 0},
			expected: -1,
		},
		"mismatched lengths": {
			a:        []float32{1, 2},
			b:        []float32{1, 2, 3},
			expected: 0,
		},
		"empty vectors": {
			a:        nil,
			b:        nil,
			expected: 0,
		},
		"zero magnitude": {
			a:        []float32{0, 0},
			b:        []float32{1, 1},
			expected: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosineSimilarityScaleInvariant(t *testing.T) {
	a := []float32{0.3, 0.5, 0.2}
	scaled := []float32{0.6, 1.0, 0.4}

	assert.InDelta(t, 1, CosineSimilarity(a, scaled), 1e-6)
}

func TestParseVector(t *testing.T) {
	vec, err := ParseVector("[0.1,0.2,0.3]")
	require.NoError(t, err)
	require.Len(t, vec, 3)
	assert.InDelta(t, 0.1, vec[0], 1e-6)
	assert.InDelta(t, 0.3, vec[2], 1e-6)
}

func TestParseVectorWithSpaces(t *testing.T) {
	vec, err := ParseVector(" [1, -2.5, 3] ")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -2.5, 3}, vec)
}

func TestParseVectorEmpty(t *testing.T) {
	vec, err := ParseVector("[]")
	require.NoError(t, err)
	assert.Empty(t, vec)
}

func TestParseVectorMalformed(t *testing.T) {
	for _, input := range []string{"", "0.1,0.2", "[0.1,0.2", "[a,b]", "{0.1}"} {
		_, err := ParseVector(input)
		assert.Error(t, err, "input %q should not parse", input)
	}
}

func TestParseVectorRoundTripsCosine(t *testing.T) {
	// A vector parsed from pgvector's text form must rank the same as the
	// original float slice.
	original := []float32{0.25, 0.5, 0.75}
	parsed, err := ParseVector("[0.25,0.5,0.75]")
	require.NoError(t, err)

	assert.InDelta(t, 1, CosineSimilarity(original, parsed), 1e-6)
}
