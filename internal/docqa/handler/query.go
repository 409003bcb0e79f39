package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/docqa/internal/docqa/biz"
	"github.com/kart-io/docqa/internal/pkg/httputils"
	"github.com/kart-io/docqa/pkg/errors"
)

// queryTimeout bounds retrieval plus generation for one question.
const queryTimeout = 120 * time.Second

// QueryHandler handles question answering HTTP requests.
type QueryHandler struct {
	service *biz.QueryService
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(service *biz.QueryService) *QueryHandler {
	return &QueryHandler{service: service}
}

// QueryRequest is the payload for a question. TopK and
// SimilarityThreshold fall back to the configured defaults when omitted.
type QueryRequest struct {
	UserID              uint64   `json:"user_id" binding:"required"`
	QueryText           string   `json:"query_text" binding:"required"`
	DocumentIDs         []uint64 `json:"document_ids,omitempty"`
	TopK                *int     `json:"top_k,omitempty"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
}

// Query answers a question over the user's documents.
func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteError(c, errors.ErrValidationFailed.WithCause(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	result, err := h.service.Query(ctx, biz.QueryParams{
		UserID:              req.UserID,
		QueryText:           req.QueryText,
		DocumentIDs:         req.DocumentIDs,
		TopK:                req.TopK,
		SimilarityThreshold: req.SimilarityThreshold,
	})
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteSuccess(c, result)
}

// History returns the user's recent queries, newest first.
func (h *QueryHandler) History(c *gin.Context) {
	userID, err := httputils.PathID(c, "user_id")
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	limit := httputils.QueryInt(c, "limit", 10)

	history, err := h.service.History(c.Request.Context(), userID, limit)
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteSuccess(c, history)
}
