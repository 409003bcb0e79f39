package handler

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/docqa/internal/docqa/biz"
	"github.com/kart-io/docqa/internal/pkg/httputils"
	"github.com/kart-io/docqa/pkg/errors"
)

// DocumentHandler handles document HTTP requests.
type DocumentHandler struct {
	service       *biz.DocumentService
	maxUploadSize int64
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(service *biz.DocumentService, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{service: service, maxUploadSize: maxUploadSize}
}

// Upload ingests a document from a multipart form. The form carries a
// user_id field and a file field.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, err := strconv.ParseUint(c.PostForm("user_id"), 10, 64)
	if err != nil || userID == 0 {
		httputils.WriteError(c, errors.ErrInvalidParam.WithMessage("user_id is required"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httputils.WriteError(c, errors.ErrInvalidParam.WithMessage("file is required"))
		return
	}
	if fileHeader.Size > h.maxUploadSize {
		httputils.WriteError(c, errors.ErrBadRequest.WithMessagef("file exceeds the %d byte limit", h.maxUploadSize))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httputils.WriteError(c, errors.ErrBadRequest.WithCause(err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		httputils.WriteError(c, errors.ErrBadRequest.WithCause(err))
		return
	}
	if int64(len(content)) > h.maxUploadSize {
		httputils.WriteError(c, errors.ErrBadRequest.WithMessagef("file exceeds the %d byte limit", h.maxUploadSize))
		return
	}

	doc, err := h.service.Ingest(c.Request.Context(), userID, fileHeader.Filename, content)
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteSuccess(c, doc)
}

// Get returns a document by ID.
func (h *DocumentHandler) Get(c *gin.Context) {
	docID, err := httputils.PathID(c, "id")
	if err != nil {
		httputils.WriteError(c, err)
		return
	}

	doc, err := h.service.Get(c.Request.Context(), docID)
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteSuccess(c, doc)
}

// ListByUser returns a user's documents, newest first.
func (h *DocumentHandler) ListByUser(c *gin.Context) {
	userID, err := httputils.PathID(c, "user_id")
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	offset := httputils.QueryInt(c, "offset", 0)
	limit := httputils.QueryInt(c, "limit", 20)

	docs, err := h.service.List(c.Request.Context(), userID, offset, limit)
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteSuccess(c, docs)
}

// Delete removes a document and its chunks.
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, err := httputils.PathID(c, "id")
	if err != nil {
		httputils.WriteError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteSuccess(c, nil)
}
