package usecase

import "strconv"

type IngestionStatus string

const (
	IngestionSuccess        IngestionStatus = "success"
	IngestionPartialSuccess IngestionStatus = "partial_success"
	IngestionFailure        IngestionStatus = "failure"
)

// Error classifications reported on non-success outcomes.
const (
	ErrorTypeAPI            = "API_ERROR"
	ErrorTypePartialSuccess = "PARTIAL_SUCCESS"
	ErrorTypeUnknown        = "UNKNOWN"
	ErrorTypeInvalidRange   = "INVALID_RANGE"
)

// IngestionResult is the outcome of one ingestion flow: how many
// records were written, a human-readable message, and for non-success
// outcomes a machine-readable error classification.
type IngestionResult struct {
	Status    IngestionStatus
	Count     int
	Message   string
	ErrorType string
}

// IsSuccess treats partial success as success: some records were
// persisted and callers that only branch on overall success should
// proceed.
func (r IngestionResult) IsSuccess() bool {
	return r.Status == IngestionSuccess || r.Status == IngestionPartialSuccess
}

func SuccessResult(count int, message string) IngestionResult {
	return IngestionResult{
		Status:  IngestionSuccess,
		Count:   count,
		Message: message,
	}
}

func PartialSuccessResult(count int, message string) IngestionResult {
	return IngestionResult{
		Status:    IngestionPartialSuccess,
		Count:     count,
		Message:   message,
		ErrorType: ErrorTypePartialSuccess,
	}
}

func FailureResult(message, errorType string) IngestionResult {
	if errorType == "" {
		errorType = ErrorTypeUnknown
	}
	return IngestionResult{
		Status:    IngestionFailure,
		Message:   message,
		ErrorType: errorType,
	}
}

// APIErrorType builds the per-status classification tag.
func APIErrorType(status int) string {
	return ErrorTypeAPI + "_" + strconv.Itoa(status)
}

// FailureForStatus maps an upstream HTTP status to a failure result
// with an operator-facing hint. dateRanged adds the smaller-range
// suggestion to 500 responses from range queries.
func FailureForStatus(status int, dateRanged bool) IngestionResult {
	var message string
	switch status {
	case 429:
		message = "rate limit exceeded - wait a few minutes before retrying"
	case 500:
		message = "API server error"
		if dateRanged {
			message += " (try a smaller date range or wait and retry)"
		}
	case 502, 503, 504:
		message = "API service temporarily unavailable"
	case 401, 403:
		message = "authentication error - check API key"
	case 404:
		message = "endpoint not found"
	default:
		message = "HTTP " + strconv.Itoa(status)
	}
	return FailureResult(message, APIErrorType(status))
}
