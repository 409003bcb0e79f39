package store

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/internal/pkg/textutil"
	"github.com/kart-io/docqa/pkg/errors"
	"github.com/kart-io/docqa/pkg/utils/json"
)

// searchBatchSize bounds how many candidate chunks are held in memory at
// once during a similarity scan.
const searchBatchSize = 500

type chunks struct {
	db *gorm.DB
}

func newChunks(db *gorm.DB) *chunks {
	return &chunks{db}
}

// EncodeVector serializes an embedding for storage.
func EncodeVector(v []float32) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeVector deserializes a stored embedding.
func DecodeVector(data []byte) ([]float32, error) {
	var v []float32
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// CreateBatch inserts chunks in batches.
func (c *chunks) CreateBatch(ctx context.Context, items []*model.Chunk) error {
	if len(items) == 0 {
		return nil
	}
	return c.db.WithContext(ctx).CreateInBatches(items, 100).Error
}

// ListByDocument returns a document's chunks in chunk-index order.
func (c *chunks) ListByDocument(ctx context.Context, docID uint64) ([]*model.Chunk, error) {
	var items []*model.Chunk
	err := c.db.WithContext(ctx).Where("document_id = ?", docID).Order("chunk_index").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CountByDocument counts the chunks belonging to a document.
func (c *chunks) CountByDocument(ctx context.Context, docID uint64) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).Model(&model.Chunk{}).Where("document_id = ?", docID).Count(&count).Error
	return count, err
}

// DeleteByDocument removes all chunks of a document.
func (c *chunks) DeleteByDocument(ctx context.Context, docID uint64) error {
	return c.db.WithContext(ctx).Where("document_id = ?", docID).Delete(&model.Chunk{}).Error
}

// Search scans the user's indexed chunks, scores them by cosine similarity
// against the query embedding, and returns up to TopK chunks scoring at or
// above the threshold. Results order by descending score; equal scores
// order by ascending chunk ID, so results are stable across runs.
func (c *chunks) Search(ctx context.Context, params SearchParams) ([]*model.ScoredChunk, error) {
	q := c.db.WithContext(ctx).Model(&model.Chunk{}).
		Select("chunks.*").
		Joins("JOIN documents ON documents.id = chunks.document_id").
		Where("documents.user_id = ?", params.UserID).
		Where("documents.status = ?", model.DocumentStatusIndexed)
	if len(params.DocumentIDs) > 0 {
		q = q.Where("chunks.document_id IN ?", params.DocumentIDs)
	}

	var scored []*model.ScoredChunk
	var batch []*model.Chunk
	res := q.Order("chunks.id").FindInBatches(&batch, searchBatchSize, func(_ *gorm.DB, _ int) error {
		for _, chunk := range batch {
			embedding, err := DecodeVector(chunk.Embedding)
			if err != nil {
				return err
			}
			// A dimension mismatch means the stored vector came from a
			// different embedding model than the query. Scoring it would
			// silently produce garbage ranks.
			if len(embedding) != len(params.Query) {
				return errors.ErrConfig.WithMessagef(
					"chunk %d embedding dimension %d does not match query dimension %d (model %q)",
					chunk.ID, len(embedding), len(params.Query), chunk.EmbeddingModel)
			}
			score := textutil.CosineSimilarity(params.Query, embedding)
			if score < params.Threshold {
				continue
			}
			scored = append(scored, &model.ScoredChunk{Chunk: chunk, Score: score})
		}
		// batch is reused between iterations
		batch = nil
		return nil
	})
	if res.Error != nil {
		return nil, res.Error
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})

	if params.TopK > 0 && len(scored) > params.TopK {
		scored = scored[:params.TopK]
	}
	return scored, nil
}
