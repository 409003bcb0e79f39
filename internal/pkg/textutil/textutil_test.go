package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/pkg/errors"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses whitespace", "hello   world\n\tfoo", "hello world foo"},
		{"strips special characters", "price: $100 @store #deal", "price 100 store deal"},
		{"keeps basic punctuation", "Really? Yes, really! End.", "Really? Yes, really! End."},
		{"keeps hyphens", "state-of-the-art", "state-of-the-art"},
		{"trims", "  padded  ", "padded"},
		{"empty", "", ""},
		{"only whitespace", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestSplitIntoChunks(t *testing.T) {
	t.Run("empty text yields no chunks", func(t *testing.T) {
		chunks, err := SplitIntoChunks("", 512, 50)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("short text yields one chunk", func(t *testing.T) {
		chunks, err := SplitIntoChunks("short text", 512, 50)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "short text", chunks[0])
	})

	t.Run("chunks overlap by the configured amount", func(t *testing.T) {
		text := strings.Repeat("a", 95) + strings.Repeat("b", 95)
		chunks, err := SplitIntoChunks(text, 100, 20)
		require.NoError(t, err)
		require.True(t, len(chunks) >= 2)

		first := []rune(chunks[0])
		second := []rune(chunks[1])
		assert.Equal(t, string(first[len(first)-20:]), string(second[:20]))
	})

	t.Run("all content is covered", func(t *testing.T) {
		text := strings.Repeat("x", 1000)
		chunks, err := SplitIntoChunks(text, 100, 10)
		require.NoError(t, err)

		total := 0
		for i, c := range chunks {
			if i > 0 {
				total -= 10 // shared prefix with the previous chunk
			}
			total += len(c)
		}
		assert.Equal(t, 1000, total)
	})

	t.Run("deterministic", func(t *testing.T) {
		text := "The quick brown fox jumps over the lazy dog. " + strings.Repeat("More text here. ", 50)
		a, err := SplitIntoChunks(text, 64, 16)
		require.NoError(t, err)
		b, err := SplitIntoChunks(text, 64, 16)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		cases := []struct {
			chunkSize int
			overlap   int
		}{
			{0, 0},
			{-1, 0},
			{100, -1},
			{100, 100},
			{100, 150},
		}
		for _, c := range cases {
			_, err := SplitIntoChunks("some text", c.chunkSize, c.overlap)
			require.Error(t, err)
			assert.Equal(t, errors.ErrInvalidChunkParams.Code, errors.GetCode(err))
		}
	})
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 0, EstimateTokens("abc"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("a", 100)))
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched dims", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 2}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", TruncateString("abc", 10))
	assert.Equal(t, "abc", TruncateString("abcdef", 3))
	assert.Equal(t, "", TruncateString("abc", 0))
	assert.Equal(t, "héllo", TruncateString("héllo world", 5))
}
