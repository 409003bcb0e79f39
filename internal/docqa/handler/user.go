// Package handler provides HTTP handlers for the docqa service.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/docqa/internal/docqa/biz"
	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/internal/pkg/httputils"
	"github.com/kart-io/docqa/pkg/errors"
)

// UserHandler handles user HTTP requests.
type UserHandler struct {
	service *biz.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *biz.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// CreateUserRequest is the payload for user registration.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// Create registers a new user.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteError(c, errors.ErrValidationFailed.WithCause(err))
		return
	}

	user := &model.User{Username: req.Username, Email: req.Email}
	if err := h.service.Create(c.Request.Context(), user); err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteSuccess(c, user)
}

// Get returns a user by ID.
func (h *UserHandler) Get(c *gin.Context) {
	userID, err := httputils.PathID(c, "id")
	if err != nil {
		httputils.WriteError(c, err)
		return
	}

	user, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteSuccess(c, user)
}

// List returns users with pagination.
func (h *UserHandler) List(c *gin.Context) {
	offset := httputils.QueryInt(c, "offset", 0)
	limit := httputils.QueryInt(c, "limit", 20)

	users, err := h.service.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputils.WriteError(c, err)
		return
	}
	httputils.WriteSuccess(c, users)
}
