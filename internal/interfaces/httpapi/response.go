package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/courtline/tennis-data-api/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "tennis-data-api"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(err)
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: err.Error(),
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	const msg = "internal server error"

	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  "internalError",
					Message: msg,
				},
			},
		},
	})
}

func mapError(err error) mappedError {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{
			HTTPStatus: http.StatusBadRequest,
			Reason:     "invalidInput",
			Status:     "INVALID_ARGUMENT",
		}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{
			HTTPStatus: http.StatusNotFound,
			Reason:     "notFound",
			Status:     "NOT_FOUND",
		}
	case errors.Is(err, usecase.ErrUnauthorized):
		return mappedError{
			HTTPStatus: http.StatusUnauthorized,
			Reason:     "unauthorized",
			Status:     "UNAUTHENTICATED",
		}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{
			HTTPStatus: http.StatusServiceUnavailable,
			Reason:     "dependencyUnavailable",
			Status:     "UNAVAILABLE",
		}
	default:
		return mappedError{
			HTTPStatus: http.StatusInternalServerError,
			Reason:     "internalError",
			Status:     "INTERNAL",
		}
	}
}

type ingestionResultDTO struct {
	Status    string `json:"status"`
	Count     int    `json:"count"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type,omitempty"`
}

// writeIngestionResult maps the tri-state ingestion outcome onto HTTP:
// full success is 200, partial progress is 207, and failures pick a
// status from the error classification.
func writeIngestionResult(ctx context.Context, w http.ResponseWriter, result usecase.IngestionResult) {
	ctx, span := startSpan(ctx, "httpapi.writeIngestionResult")
	defer span.End()

	dto := ingestionResultDTO{
		Status:    string(result.Status),
		Count:     result.Count,
		Message:   result.Message,
		ErrorType: result.ErrorType,
	}

	switch result.Status {
	case usecase.IngestionSuccess:
		writeSuccess(ctx, w, http.StatusOK, dto)
	case usecase.IngestionPartialSuccess:
		writeSuccess(ctx, w, http.StatusMultiStatus, dto)
	default:
		writeJSON(ctx, w, failureHTTPStatus(result.ErrorType), googleResponseEnvelope{
			APIVersion: googleAPIVersion,
			Data:       dto,
			Error: &googleErrorBody{
				Code:    failureHTTPStatus(result.ErrorType),
				Message: result.Message,
				Status:  "FAILED_PRECONDITION",
				Errors: []googleErrorItem{
					{
						Domain:  errorDomain,
						Reason:  result.ErrorType,
						Message: result.Message,
					},
				},
			},
		})
	}
}

func failureHTTPStatus(errorType string) int {
	switch {
	case errorType == usecase.ErrorTypeInvalidRange:
		return http.StatusBadRequest
	case strings.HasPrefix(errorType, usecase.ErrorTypeAPI):
		// Upstream trouble, including the per-status API_ERROR_n tags.
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
