package biz

import (
	"context"

	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/pkg/errors"
)

// Retriever embeds a question and finds the user's most similar chunks.
type Retriever struct {
	store    store.Factory
	embedder *Embedder
}

// NewRetriever creates a retriever.
func NewRetriever(factory store.Factory, embedder *Embedder) *Retriever {
	return &Retriever{
		store:    factory,
		embedder: embedder,
	}
}

// Retrieve returns up to topK chunks most similar to the question among
// the user's indexed documents, excluding chunks scoring below threshold.
// An empty documentIDs means all of the user's documents.
func (r *Retriever) Retrieve(ctx context.Context, userID uint64, question string, documentIDs []uint64, topK int, threshold float64) ([]*model.ScoredChunk, error) {
	embedding, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	results, err := r.store.Chunks().Search(ctx, store.SearchParams{
		UserID:      userID,
		DocumentIDs: documentIDs,
		Query:       embedding,
		TopK:        topK,
		Threshold:   threshold,
	})
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	logger.Infow("Chunks retrieved",
		"user_id", userID,
		"results", len(results),
		"top_k", topK,
		"threshold", threshold,
	)
	return results, nil
}
