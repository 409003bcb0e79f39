package biz

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kart-io/logger"
	"gorm.io/gorm"

	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/internal/pkg/extract"
	"github.com/kart-io/docqa/internal/pkg/textutil"
	"github.com/kart-io/docqa/pkg/errors"
)

// DocumentConfig configures document ingestion.
type DocumentConfig struct {
	// ChunkSize is the chunk window size in characters.
	ChunkSize int
	// ChunkOverlap is the overlap between consecutive chunks.
	ChunkOverlap int
	// EmbeddingModel is recorded on every chunk.
	EmbeddingModel string
}

// DocumentService handles document ingestion and lifecycle.
type DocumentService struct {
	store    store.Factory
	embedder *Embedder
	config   *DocumentConfig
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(factory store.Factory, embedder *Embedder, config *DocumentConfig) *DocumentService {
	return &DocumentService{
		store:    factory,
		embedder: embedder,
		config:   config,
	}
}

// Ingest runs the full ingestion pipeline: create the document row, extract
// text, chunk it, embed the chunks and persist everything in one
// transaction. The row is created up front with status pending; if any
// later step fails it is deleted again so no half-indexed document
// survives. A document whose text normalizes to nothing indexes with zero
// chunks.
func (s *DocumentService) Ingest(ctx context.Context, userID uint64, filename string, content []byte) (doc *model.Document, err error) {
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound.WithMessagef("user %d not found", userID)
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	if int64(len(content)) > extract.MaxFileSize {
		return nil, errors.ErrBadRequest.WithMessagef("file exceeds the %d byte limit", extract.MaxFileSize)
	}

	doc = &model.Document{
		UserID:   userID,
		Filename: filename,
		FileType: strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."),
		FileSize: int64(len(content)),
		Status:   model.DocumentStatusPending,
	}
	if err := s.store.Documents().Create(ctx, doc); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	// Compensating delete: the pending row must not outlive a failed
	// pipeline.
	defer func() {
		if err == nil {
			return
		}
		if delErr := s.store.Documents().Delete(context.WithoutCancel(ctx), doc.ID); delErr != nil {
			logger.Errorw("Failed to delete document after ingestion failure",
				"document_id", doc.ID, "error", delErr.Error())
		}
		doc = nil
	}()

	if _, ok := extract.SupportedType(filename); !ok {
		return nil, errors.ErrUnsupportedFormat.WithMessagef("unsupported file type: %s", filename)
	}
	text, err := extract.Text(filename, content)
	if err != nil {
		return nil, err
	}

	pieces, err := textutil.SplitIntoChunks(text, s.config.ChunkSize, s.config.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return nil, err
	}

	chunks := make([]*model.Chunk, len(pieces))
	for i, piece := range pieces {
		embedding, encErr := store.EncodeVector(embeddings[i])
		if encErr != nil {
			return nil, errors.ErrInternal.WithCause(encErr)
		}
		chunks[i] = &model.Chunk{
			DocumentID:     doc.ID,
			ChunkIndex:     i,
			Content:        piece,
			TokenCount:     textutil.EstimateTokens(piece),
			Embedding:      embedding,
			EmbeddingModel: s.config.EmbeddingModel,
		}
	}

	err = s.store.Tx(ctx, func(tx store.Factory) error {
		if err := tx.Chunks().CreateBatch(ctx, chunks); err != nil {
			return err
		}
		doc.Status = model.DocumentStatusIndexed
		doc.TotalChunks = len(chunks)
		return tx.Documents().Update(ctx, doc)
	})
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	logger.Infow("Document indexed",
		"document_id", doc.ID,
		"user_id", userID,
		"filename", filename,
		"chunks", len(chunks),
	)
	return doc, nil
}

// Get returns a document by ID.
func (s *DocumentService) Get(ctx context.Context, docID uint64) (*model.Document, error) {
	doc, err := s.store.Documents().Get(ctx, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrDocumentNotFound.WithMessagef("document %d not found", docID)
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return doc, nil
}

// List returns the user's documents, newest first.
func (s *DocumentService) List(ctx context.Context, userID uint64, offset, limit int) (*model.DocumentList, error) {
	total, docs, err := s.store.Documents().ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &model.DocumentList{TotalCount: total, Items: docs}, nil
}

// Delete removes a document and its chunks.
func (s *DocumentService) Delete(ctx context.Context, docID uint64) error {
	if _, err := s.Get(ctx, docID); err != nil {
		return err
	}
	if err := s.store.Documents().Delete(ctx, docID); err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	logger.Infow("Document deleted", "document_id", docID)
	return nil
}
