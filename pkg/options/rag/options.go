// Package rag provides retrieval and chunking configuration options.
package rag

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/kart-io/docqa/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains chunking, retrieval and generation configuration.
type Options struct {
	// ChunkSize is the size of text chunks, in characters.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the overlap between consecutive chunks, in characters.
	// Must be non-negative and strictly smaller than ChunkSize.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// TopK is the maximum number of chunks returned by similarity search.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// SimilarityThreshold filters out chunks scoring below it.
	SimilarityThreshold float64 `json:"similarity-threshold" mapstructure:"similarity-threshold"`

	// EmbeddingDim is the dimension of embedding vectors.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// MaxQueryLength bounds the length of query text, in characters.
	MaxQueryLength int `json:"max-query-length" mapstructure:"max-query-length"`

	// AnswerLogLength bounds how much of the generated answer is kept in the
	// query audit log, in characters.
	AnswerLogLength int `json:"answer-log-length" mapstructure:"answer-log-length"`

	// EmbedWorkers is the number of concurrent embedding workers used
	// during ingestion.
	EmbedWorkers int `json:"embed-workers" mapstructure:"embed-workers"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:           512,
		ChunkOverlap:        50,
		TopK:                5,
		SimilarityThreshold: 0.5,
		EmbeddingDim:        768, // nomic-embed-text dimension
		MaxQueryLength:      2000,
		AnswerLogLength:     500,
		EmbedWorkers:        4,
	}
}

// AddFlags adds flags for RAG options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"rag.chunk-size", o.ChunkSize, "Size of text chunks in characters.")
	fs.IntVar(&o.ChunkOverlap, options.Join(prefixes...)+"rag.chunk-overlap", o.ChunkOverlap, "Overlap between consecutive chunks.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"rag.top-k", o.TopK, "Number of results from similarity search.")
	fs.Float64Var(&o.SimilarityThreshold, options.Join(prefixes...)+"rag.similarity-threshold", o.SimilarityThreshold, "Minimum similarity score for retrieved chunks.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"rag.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.IntVar(&o.MaxQueryLength, options.Join(prefixes...)+"rag.max-query-length", o.MaxQueryLength, "Maximum query length in characters.")
	fs.IntVar(&o.AnswerLogLength, options.Join(prefixes...)+"rag.answer-log-length", o.AnswerLogLength, "Maximum answer length kept in the query log.")
	fs.IntVar(&o.EmbedWorkers, options.Join(prefixes...)+"rag.embed-workers", o.EmbedWorkers, "Concurrent embedding workers during ingestion.")
}

// Validate validates the RAG options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk-overlap must be non-negative and smaller than chunk-size"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k must be positive"))
	}
	if o.SimilarityThreshold < -1 || o.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("similarity-threshold must be within [-1, 1]"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("embedding-dim must be positive"))
	}
	if o.MaxQueryLength <= 0 {
		errs = append(errs, fmt.Errorf("max-query-length must be positive"))
	}
	if o.AnswerLogLength <= 0 {
		errs = append(errs, fmt.Errorf("answer-log-length must be positive"))
	}
	return errs
}

// Complete completes the RAG options with defaults.
func (o *Options) Complete() error {
	if o.EmbedWorkers <= 0 {
		o.EmbedWorkers = 4
	}
	return nil
}
