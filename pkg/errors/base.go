package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// OK represents a successful operation.
var OK = Register(&Errno{
	Code:     0,
	HTTP:     http.StatusOK,
	GRPCCode: codes.OK,
	Message:  "Success",
})

// ============================================================================
// Request Errors (Category: 01)
// ============================================================================

var (
	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = Register(&Errno{
		Code:     MakeCode(ServiceCommon, CategoryRequest, 0),
		HTTP:     http.StatusBadRequest,
		GRPCCode: codes.InvalidArgument,
		Message:  "Bad request",
	})

	// ErrInvalidParam indicates an invalid parameter.
	ErrInvalidParam = Register(&Errno{
		Code:     MakeCode(ServiceCommon, CategoryRequest, 1),
		HTTP:     http.StatusBadRequest,
		GRPCCode: codes.InvalidArgument,
		Message:  "Invalid parameter",
	})

	// ErrValidationFailed indicates validation failure.
	ErrValidationFailed = Register(&Errno{
		Code:     MakeCode(ServiceCommon, CategoryRequest, 2),
		HTTP:     http.StatusBadRequest,
		GRPCCode: codes.InvalidArgument,
		Message:  "Validation failed",
	})
)

// ============================================================================
// Resource Errors (Category: 04)
// ============================================================================

var (
	// ErrNotFound indicates the resource is not found.
	ErrNotFound = Register(&Errno{
		Code:     MakeCode(ServiceCommon, CategoryResource, 0),
		HTTP:     http.StatusNotFound,
		GRPCCode: codes.NotFound,
		Message:  "Resource not found",
	})

	// ErrUserNotFound indicates the user is not found.
	ErrUserNotFound = Register(&Errno{
		Code:     MakeCode(ServiceCommon, CategoryResource, 1),
		HTTP:     http.StatusNotFound,
		GRPCCode: codes.NotFound,
		Message:  "User not found",
	})

	// ErrDocumentNotFound indicates the document is not found.
	ErrDocumentNotFound = Register(&Errno{
		Code:     MakeCode(ServiceCommon, CategoryResource, 2),
		HTTP:     http.StatusNotFound,
		GRPCCode: codes.NotFound,
		Message:  "Document not found",
	})
)

// ============================================================================
// Conflict Errors (Category: 05)
// ============================================================================

var (
	// ErrAlreadyExists indicates the resource already exists.
	ErrAlreadyExists = Register(&Errno{
		Code:     MakeCode(ServiceCommon, CategoryConflict, 0),
		HTTP:     http.StatusConflict,
		GRPCCode: codes.AlreadyExists,
		Message:  "Resource already exists",
	})
)

// ============================================================================
// Internal Errors (Category: 07)
// ============================================================================

var (
	// ErrInternal indicates an internal server error.
	ErrInternal = Register(&Errno{
		Code:     MakeCode(ServiceCommon, CategoryInternal, 0),
		HTTP:     http.StatusInternalServerError,
		GRPCCode: codes.Internal,
		Message:  "Internal server error",
	})
)

// ============================================================================
// Database Errors (Category: 08)
// ============================================================================

var (
	// ErrDatabase indicates a database error.
	ErrDatabase = Register(&Errno{
		Code:     MakeCode(ServiceCommon, CategoryDatabase, 0),
		HTTP:     http.StatusInternalServerError,
		GRPCCode: codes.Internal,
		Message:  "Database error",
	})

	// ErrDBTransaction indicates database transaction failure.
	ErrDBTransaction = Register(&Errno{
		Code:     MakeCode(ServiceCommon, CategoryDatabase, 1),
		HTTP:     http.StatusInternalServerError,
		GRPCCode: codes.Internal,
		Message:  "Database transaction failed",
	})
)

// ============================================================================
// Configuration Errors (Category: 12)
// ============================================================================

var (
	// ErrConfig indicates a configuration error.
	ErrConfig = Register(&Errno{
		Code:     MakeCode(ServiceCommon, CategoryConfig, 0),
		HTTP:     http.StatusInternalServerError,
		GRPCCode: codes.Internal,
		Message:  "Configuration error",
	})
)

// ============================================================================
// DocQA Service Errors (Service: 20)
// ============================================================================

var (
	// ErrUnsupportedFormat indicates the uploaded file format is not supported.
	ErrUnsupportedFormat = Register(&Errno{
		Code:     MakeCode(ServiceDocQA, CategoryRequest, 0),
		HTTP:     http.StatusBadRequest,
		GRPCCode: codes.InvalidArgument,
		Message:  "Unsupported file format",
	})

	// ErrExtractionFailed indicates text extraction from the upload failed.
	ErrExtractionFailed = Register(&Errno{
		Code:     MakeCode(ServiceDocQA, CategoryRequest, 1),
		HTTP:     http.StatusUnprocessableEntity,
		GRPCCode: codes.InvalidArgument,
		Message:  "Failed to extract text from document",
	})

	// ErrQueryTooLong indicates the query text exceeds the allowed length.
	ErrQueryTooLong = Register(&Errno{
		Code:     MakeCode(ServiceDocQA, CategoryRequest, 2),
		HTTP:     http.StatusBadRequest,
		GRPCCode: codes.InvalidArgument,
		Message:  "Query text exceeds maximum length",
	})

	// ErrInvalidChunkParams indicates invalid chunking parameters.
	// Overlap must be non-negative and strictly smaller than chunk size.
	ErrInvalidChunkParams = Register(&Errno{
		Code:     MakeCode(ServiceDocQA, CategoryConfig, 0),
		HTTP:     http.StatusInternalServerError,
		GRPCCode: codes.Internal,
		Message:  "Invalid chunking parameters",
	})

	// ErrProviderNotConfigured indicates the embedding or generation provider
	// is missing required configuration (e.g. no API key).
	ErrProviderNotConfigured = Register(&Errno{
		Code:     MakeCode(ServiceDocQA, CategoryConfig, 1),
		HTTP:     http.StatusInternalServerError,
		GRPCCode: codes.FailedPrecondition,
		Message:  "Provider not configured",
	})

	// ErrEmbeddingFailed indicates the embedding provider returned an error.
	ErrEmbeddingFailed = Register(&Errno{
		Code:     MakeCode(ServiceDocQA, CategoryProvider, 0),
		HTTP:     http.StatusBadGateway,
		GRPCCode: codes.Unavailable,
		Message:  "Failed to generate embedding",
	})

	// ErrGenerationFailed indicates the generation provider returned an error.
	ErrGenerationFailed = Register(&Errno{
		Code:     MakeCode(ServiceDocQA, CategoryProvider, 1),
		HTTP:     http.StatusBadGateway,
		GRPCCode: codes.Unavailable,
		Message:  "Failed to generate response",
	})

	// ErrProviderError indicates a generic provider transport or model failure.
	ErrProviderError = Register(&Errno{
		Code:     MakeCode(ServiceDocQA, CategoryProvider, 2),
		HTTP:     http.StatusBadGateway,
		GRPCCode: codes.Unavailable,
		Message:  "Provider request failed",
	})
)
