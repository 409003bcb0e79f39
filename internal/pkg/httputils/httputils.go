// Package httputils writes the unified response envelope for gin handlers.
package httputils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/docqa/pkg/errors"
	"github.com/kart-io/docqa/pkg/middleware"
	"github.com/kart-io/docqa/pkg/response"
)

// WriteSuccess writes the success envelope with the request ID attached.
func WriteSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, response.Success(data).WithRequestID(middleware.GetRequestID(c)))
}

// WriteError maps the error to its registered HTTP status and writes the
// error envelope with the request ID attached.
func WriteError(c *gin.Context, err error) {
	e := errors.FromError(err)
	c.JSON(e.HTTPStatus(), response.Err(e).WithRequestID(middleware.GetRequestID(c)))
}

// PathID parses a numeric path parameter.
func PathID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.ErrInvalidParam.WithMessagef("invalid %s", name)
	}
	return id, nil
}

// QueryInt parses an optional integer query parameter.
func QueryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
