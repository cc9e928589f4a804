package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/courtline/tennis-data-api/internal/usecase"
)

const maxPredictionsUploadBytes = 4 << 20

// VerifyPredictions accepts a CSV upload, either as the raw request
// body or as a multipart "file" part, and settles it against stored
// fixtures.
func (h *Handler) VerifyPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.VerifyPredictions")
	defer span.End()

	reader, err := predictionsReader(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := usecase.ParsePredictionsCSV(io.LimitReader(reader, maxPredictionsUploadBytes))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.verificationService.Verify(ctx, rows)
	if err != nil {
		h.logger.WarnContext(ctx, "verify predictions failed", "rows", len(rows), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func predictionsReader(r *http.Request) (io.Reader, error) {
	contentType := strings.TrimSpace(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return r.Body, nil
	}

	if err := r.ParseMultipartForm(maxPredictionsUploadBytes); err != nil {
		return nil, fmt.Errorf("%w: parse multipart form: %v", usecase.ErrInvalidInput, err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: multipart upload needs a \"file\" part", usecase.ErrInvalidInput)
	}
	return file, nil
}
