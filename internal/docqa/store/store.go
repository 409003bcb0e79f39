// Package store provides persistence for users, documents, chunks and
// query logs.
package store

import (
	"context"

	"github.com/kart-io/docqa/internal/model"
)

// Factory defines the factory interface for creating stores.
// Tx runs fn inside a database transaction; every store obtained from the
// factory passed to fn operates on that transaction.
type Factory interface {
	Users() UserStore
	Documents() DocumentStore
	Chunks() ChunkStore
	QueryLogs() QueryLogStore
	Tx(ctx context.Context, fn func(Factory) error) error
	AutoMigrate() error
	Close() error
}

// UserStore defines the user storage interface.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, userID uint64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, offset, limit int) (int64, []*model.User, error)
	Delete(ctx context.Context, userID uint64) error
}

// DocumentStore defines the document storage interface.
type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	Get(ctx context.Context, docID uint64) (*model.Document, error)
	Update(ctx context.Context, doc *model.Document) error
	// Delete removes the document and all of its chunks.
	Delete(ctx context.Context, docID uint64) error
	ListByUser(ctx context.Context, userID uint64, offset, limit int) (int64, []*model.Document, error)
}

// SearchParams constrains a chunk similarity search.
type SearchParams struct {
	// UserID scopes the search to one user's documents.
	UserID uint64
	// DocumentIDs optionally narrows the search to specific documents.
	// Empty means all of the user's documents.
	DocumentIDs []uint64
	// Query is the embedding to compare candidates against.
	Query []float32
	// TopK bounds the number of results.
	TopK int
	// Threshold drops candidates scoring below it.
	Threshold float64
}

// ChunkStore defines the chunk storage interface.
type ChunkStore interface {
	CreateBatch(ctx context.Context, chunks []*model.Chunk) error
	// ListByDocument returns the document's chunks in chunk-index order.
	ListByDocument(ctx context.Context, docID uint64) ([]*model.Chunk, error)
	CountByDocument(ctx context.Context, docID uint64) (int64, error)
	DeleteByDocument(ctx context.Context, docID uint64) error
	// Search returns the best-scoring chunks ordered by descending
	// similarity; equal scores order by ascending chunk ID.
	Search(ctx context.Context, params SearchParams) ([]*model.ScoredChunk, error)
}

// QueryLogStore defines the query audit log storage interface.
type QueryLogStore interface {
	Create(ctx context.Context, log *model.QueryLog) error
	// ListByUser returns the newest logs first.
	ListByUser(ctx context.Context, userID uint64, limit int) ([]*model.QueryLog, error)
}
