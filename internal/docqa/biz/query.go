package biz

import (
	"context"
	"strings"
	"time"

	"github.com/kart-io/logger"
	"gorm.io/gorm"

	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/internal/pkg/textutil"
	"github.com/kart-io/docqa/pkg/errors"
)

// QueryConfig configures query handling.
type QueryConfig struct {
	// MaxQueryLength bounds query text length in characters.
	MaxQueryLength int
	// AnswerLogLength bounds how much of the answer goes into the audit log.
	AnswerLogLength int
	// DefaultTopK applies when a request does not set top_k.
	DefaultTopK int
	// DefaultSimilarityThreshold applies when a request does not set
	// similarity_threshold.
	DefaultSimilarityThreshold float64
}

// QueryParams carries one question. TopK and SimilarityThreshold are
// optional; nil means the configured default.
type QueryParams struct {
	UserID              uint64
	QueryText           string
	DocumentIDs         []uint64
	TopK                *int
	SimilarityThreshold *float64
}

// RetrievedChunk is one chunk that grounded the answer.
type RetrievedChunk struct {
	ID         uint64  `json:"id"`
	DocumentID uint64  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	TokenCount int     `json:"token_count"`
	Score      float64 `json:"score"`
}

// QueryResult is the answer to a question. Chunks lists the retrieved
// chunks in rank order, so callers can see what grounded the answer.
type QueryResult struct {
	QueryText       string           `json:"query_text"`
	Response        string           `json:"response"`
	Chunks          []RetrievedChunk `json:"chunks"`
	RetrievedChunks int              `json:"retrieved_chunks"`
	ResponseTimeMs  int64            `json:"response_time_ms"`
}

// QueryService answers questions over a user's documents.
type QueryService struct {
	store     store.Factory
	retriever *Retriever
	generator *Generator
	config    *QueryConfig
}

// NewQueryService creates a new QueryService.
func NewQueryService(factory store.Factory, retriever *Retriever, generator *Generator, config *QueryConfig) *QueryService {
	return &QueryService{
		store:     factory,
		retriever: retriever,
		generator: generator,
		config:    config,
	}
}

// Query retrieves the chunks most relevant to the question, generates a
// grounded answer and records the exchange in the query log. A generation
// failure degrades the answer without failing the query; every attempt
// that reaches synthesis produces exactly one audit row.
func (s *QueryService) Query(ctx context.Context, params QueryParams) (*QueryResult, error) {
	start := time.Now()

	question := strings.TrimSpace(params.QueryText)
	if question == "" {
		return nil, errors.ErrInvalidParam.WithMessage("query_text is required")
	}
	if len([]rune(question)) > s.config.MaxQueryLength {
		return nil, errors.ErrQueryTooLong.WithMessagef("query exceeds %d characters", s.config.MaxQueryLength)
	}

	if _, err := s.store.Users().Get(ctx, params.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound.WithMessagef("user %d not found", params.UserID)
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}

	topK := s.config.DefaultTopK
	if params.TopK != nil && *params.TopK > 0 {
		topK = *params.TopK
	}
	threshold := s.config.DefaultSimilarityThreshold
	if params.SimilarityThreshold != nil {
		threshold = *params.SimilarityThreshold
	}

	chunks, err := s.retriever.Retrieve(ctx, params.UserID, question, params.DocumentIDs, topK, threshold)
	if err != nil {
		return nil, err
	}

	answer := s.generator.Answer(ctx, question, chunks)
	elapsed := time.Since(start).Milliseconds()

	retrieved := make([]RetrievedChunk, len(chunks))
	for i, sc := range chunks {
		retrieved[i] = RetrievedChunk{
			ID:         sc.Chunk.ID,
			DocumentID: sc.Chunk.DocumentID,
			ChunkIndex: sc.Chunk.ChunkIndex,
			Content:    sc.Chunk.Content,
			TokenCount: sc.Chunk.TokenCount,
			Score:      sc.Score,
		}
	}

	// The audit log must not fail the query.
	logEntry := &model.QueryLog{
		UserID:          params.UserID,
		QueryText:       question,
		Response:        textutil.TruncateString(answer, s.config.AnswerLogLength),
		RetrievedChunks: len(chunks),
		ResponseTimeMs:  elapsed,
	}
	if logErr := s.store.QueryLogs().Create(ctx, logEntry); logErr != nil {
		logger.Warnw("Failed to record query log", "user_id", params.UserID, "error", logErr.Error())
	}

	return &QueryResult{
		QueryText:       question,
		Response:        answer,
		Chunks:          retrieved,
		RetrievedChunks: len(chunks),
		ResponseTimeMs:  elapsed,
	}, nil
}

// History returns the user's most recent queries, newest first.
func (s *QueryService) History(ctx context.Context, userID uint64, limit int) (*model.QueryLogList, error) {
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound.WithMessagef("user %d not found", userID)
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}

	logs, err := s.store.QueryLogs().ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &model.QueryLogList{TotalCount: int64(len(logs)), Items: logs}, nil
}
