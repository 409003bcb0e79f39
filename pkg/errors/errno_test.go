package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestMakeCode(t *testing.T) {
	tests := []struct {
		name     string
		service  int
		category int
		seq      int
		want     int
	}{
		{"common request", ServiceCommon, CategoryRequest, 0, 1000},
		{"common resource seq1", ServiceCommon, CategoryResource, 1, 4001},
		{"docqa provider", ServiceDocQA, CategoryProvider, 0, 2010000},
		{"docqa config seq1", ServiceDocQA, CategoryConfig, 1, 2012001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MakeCode(tt.service, tt.category, tt.seq))
		})
	}
}

func TestErrnoWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ErrDatabase.WithCause(cause)

	assert.Equal(t, ErrDatabase.Code, err.Code)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, cause, stderrors.Unwrap(err))

	// original stays untouched
	assert.Nil(t, ErrDatabase.cause)
}

func TestErrnoWithMessage(t *testing.T) {
	err := ErrUnsupportedFormat.WithMessagef("unsupported file format: %s", ".exe")

	assert.Equal(t, ErrUnsupportedFormat.Code, err.Code)
	assert.Equal(t, "unsupported file format: .exe", err.Message)
	assert.Equal(t, "Unsupported file format", ErrUnsupportedFormat.Message)
}

func TestErrnoIs(t *testing.T) {
	err := ErrUserNotFound.WithCause(fmt.Errorf("record not found"))

	assert.True(t, stderrors.Is(err, ErrUserNotFound))
	assert.False(t, stderrors.Is(err, ErrDocumentNotFound))
}

func TestFromError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, FromError(nil))
	})

	t.Run("errno passthrough", func(t *testing.T) {
		assert.Equal(t, ErrQueryTooLong, FromError(ErrQueryTooLong))
	})

	t.Run("plain error wrapped as internal", func(t *testing.T) {
		e := FromError(fmt.Errorf("boom"))
		require.NotNil(t, e)
		assert.Equal(t, ErrInternal.Code, e.Code)
		assert.Contains(t, e.Error(), "boom")
	})
}

func TestHTTPAndGRPCMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ErrDocumentNotFound.HTTPStatus())
	assert.Equal(t, codes.NotFound, ErrDocumentNotFound.GRPCStatus())

	assert.Equal(t, http.StatusBadGateway, ErrEmbeddingFailed.HTTPStatus())
	assert.Equal(t, codes.Unavailable, ErrEmbeddingFailed.GRPCStatus())
}

func TestRegistryUniqueness(t *testing.T) {
	e, ok := Lookup(ErrUserNotFound.Code)
	require.True(t, ok)
	assert.Equal(t, ErrUserNotFound, e)

	assert.Panics(t, func() {
		Register(&Errno{Code: ErrUserNotFound.Code, Message: "dup"})
	})
}

func TestIsCodeAndGetCode(t *testing.T) {
	assert.True(t, IsCode(ErrQueryTooLong, ErrQueryTooLong.Code))
	assert.False(t, IsCode(fmt.Errorf("plain"), ErrQueryTooLong.Code))
	assert.Equal(t, -1, GetCode(fmt.Errorf("plain")))
	assert.Equal(t, ErrInternal.Code, GetCode(ErrInternal))
}
