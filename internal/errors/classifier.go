package errors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

type ErrorClass int

const (
	ClassInternal ErrorClass = iota
	ClassValidation
	ClassAuthorization
	ClassConflict
	ClassRateLimit
	ClassExternal
)

type ClassifiedError struct {
	Class         ErrorClass
	InternalError error
	ClientMessage string
	OperationName string
	Metadata      map[string]interface{}
}

type ErrorClassifier struct {
	logger *slog.Logger
}

func NewErrorClassifier(logger *slog.Logger) *ErrorClassifier {
	return &ErrorClassifier{logger: logger}
}

var errorPool = sync.Pool{
	New: func() interface{} {
		return &ClassifiedError{
			Metadata: make(map[string]interface{}, 4), // Pre-size for common case
		}
	},
}

func (ec *ErrorClassifier) Classify(err error, operation string) *ClassifiedError {
	// Get a pooled error object
	classified := errorPool.Get().(*ClassifiedError)
	classified.InternalError = err
	classified.OperationName = operation

	switch {
	case errors.Is(err, ErrZeroAddress), errors.Is(err, ErrInvalidTarget),
		errors.Is(err, ErrListTooLong), errors.Is(err, ErrUnsupportedAsset):
		classified.Class = ClassValidation
		classified.ClientMessage = err.Error()
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrForbidden),
		errors.Is(err, ErrWrongCaller), errors.Is(err, ErrInvalidTransfer),
		errors.Is(err, ErrInvalidDestination):
		classified.Class = ClassAuthorization
		classified.ClientMessage = err.Error()
	case errors.Is(err, ErrAlreadyPending), errors.Is(err, ErrNotPending),
		errors.Is(err, ErrDuplicateAddress), errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrReentrantCall):
		classified.Class = ClassConflict
		classified.ClientMessage = err.Error()
	case errors.Is(err, ErrOverPerCountLimit), errors.Is(err, ErrOverPerDayAmountLimit),
		errors.Is(err, ErrOverPerDayCountLimit):
		classified.Class = ClassRateLimit
		classified.ClientMessage = err.Error()
	case errors.Is(err, ErrTransferFailed):
		classified.Class = ClassExternal
		classified.ClientMessage = "token transfer failed"
	default:
		classified.Class = ClassInternal
		classified.ClientMessage = "An unexpected internal error occurred"
	}

	return classified
}

func (ec *ErrorClassifier) LogAndSanitize(ctx context.Context, classified *ClassifiedError) error {
	defer ec.putError(classified) // Return the object to the pool

	ec.logger.ErrorContext(ctx, "operation failed",
		"operation", classified.OperationName,
		"error_class", classified.Class,
		"internal_error", classified.InternalError.Error(),
		"metadata", classified.Metadata,
	)

	return ec.toHTTPError(classified)
}

func (ec *ErrorClassifier) toHTTPError(classified *ClassifiedError) error {
	var code int

	switch classified.Class {
	case ClassValidation:
		code = http.StatusBadRequest
	case ClassAuthorization:
		code = http.StatusForbidden
	case ClassConflict:
		code = http.StatusConflict
	case ClassRateLimit:
		code = http.StatusTooManyRequests
	case ClassExternal:
		code = http.StatusBadGateway
	default:
		code = http.StatusInternalServerError
	}

	return echo.NewHTTPError(code, classified.ClientMessage)
}

func (ec *ErrorClassifier) putError(err *ClassifiedError) {
	// Clear per-request data before pooling
	err.InternalError = nil
	for k := range err.Metadata {
		delete(err.Metadata, k)
	}
	err.OperationName = ""
	errorPool.Put(err)
}
