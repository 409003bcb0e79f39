package biz

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/kart-io/docqa/pkg/errors"
	"github.com/kart-io/docqa/pkg/llm"
)

// embedBatchSize is how many texts go to the provider in one request.
const embedBatchSize = 16

// Embedder embeds large text sets concurrently while preserving input
// order in the output.
type Embedder struct {
	provider  llm.EmbeddingProvider
	pool      *ants.Pool
	dimension int
}

// NewEmbedder creates an embedder with the given number of workers.
// A nil provider is a configuration error.
func NewEmbedder(provider llm.EmbeddingProvider, workers, dimension int) (*Embedder, error) {
	if provider == nil {
		return nil, errors.ErrProviderNotConfigured.WithMessage("embedding provider is not configured")
	}
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &Embedder{provider: provider, pool: pool, dimension: dimension}, nil
}

// Dimension returns the configured embedding vector dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed embeds a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embedding, err := e.provider.EmbedSingle(ctx, text)
	if err != nil {
		return nil, errors.ErrEmbeddingFailed.WithCause(err)
	}
	return embedding, nil
}

// EmbedBatch embeds all texts, batching requests across the worker pool.
// The result slice is index-aligned with texts; the first error wins.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([][]float32, len(texts))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end

		wg.Add(1)
		task := func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			embeddings, err := e.provider.Embed(ctx, texts[start:end])
			if err != nil {
				setErr(err)
				return
			}
			if len(embeddings) != end-start {
				setErr(errors.ErrEmbeddingFailed.WithMessagef(
					"provider returned %d embeddings for %d texts", len(embeddings), end-start))
				return
			}
			copy(results[start:end], embeddings)
		}

		// Run inline if the pool cannot take the task.
		if err := e.pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	if firstErr != nil {
		if errors.IsCode(firstErr, errors.ErrEmbeddingFailed.Code) {
			return nil, firstErr
		}
		return nil, errors.ErrEmbeddingFailed.WithCause(firstErr)
	}
	return results, nil
}

// Close releases the worker pool.
func (e *Embedder) Close() {
	e.pool.Release()
}
