package model

import "time"

// Chunk represents one text chunk of a document together with its
// embedding. The embedding is stored as a JSON-serialized []float32.
type Chunk struct {
	ID         uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	DocumentID uint64    `json:"document_id" gorm:"index:idx_chunk_doc;not null"`
	ChunkIndex int       `json:"chunk_index" gorm:"not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	TokenCount int       `json:"token_count" gorm:"default:0"`
	Embedding  []byte    `json:"-" gorm:"type:bytes"`
	// EmbeddingModel records which model produced the embedding so stale
	// vectors are detectable after a model change.
	EmbeddingModel string    `json:"embedding_model" gorm:"size:128"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (Chunk) TableName() string {
	return "chunks"
}

// ScoredChunk pairs a chunk with its similarity score from retrieval.
type ScoredChunk struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
}
