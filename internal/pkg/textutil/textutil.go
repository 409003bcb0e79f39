// Package textutil provides text normalization, chunking and vector helpers
// for the ingestion and retrieval pipeline.
package textutil

import (
	"math"
	"regexp"
	"strings"

	"github.com/kart-io/docqa/pkg/errors"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// keeps word characters, whitespace and basic punctuation
	punctuationRe = regexp.MustCompile(`[^\w\s.,!?-]`)
)

// CleanText normalizes raw extracted text: all whitespace runs collapse to a
// single space, characters outside word characters and basic punctuation are
// removed, and the result is trimmed.
func CleanText(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = punctuationRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// SplitIntoChunks splits cleaned text into overlapping windows of chunkSize
// runes, stepping by chunkSize-overlap. The input is cleaned first, so the
// output is deterministic for a given input and parameters. Empty text yields
// no chunks. Every rune of the cleaned text appears in at least one chunk,
// and consecutive chunks share exactly overlap runes except possibly the
// final pair.
func SplitIntoChunks(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, errors.ErrInvalidChunkParams.WithMessagef(
			"invalid chunking parameters: chunk_size=%d overlap=%d", chunkSize, overlap)
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return nil, nil
	}

	runes := []rune(cleaned)
	if len(runes) <= chunkSize {
		return []string{cleaned}, nil
	}

	step := chunkSize - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}

// EstimateTokens approximates the token count of text as one token per four
// characters.
func EstimateTokens(text string) int {
	return len([]rune(text)) / 4
}

// CosineSimilarity computes the cosine similarity of two vectors.
// Mismatched dimensions or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TruncateString returns at most max runes of s.
func TruncateString(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
