package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"wagedash/internal/engine"
	"wagedash/internal/models"
	"wagedash/internal/views"
)

var (
	// ErrLoading is returned until the datasets have been published.
	ErrLoading = errors.New("datasets are still loading")
	// ErrFormat is returned for an unsupported output format.
	ErrFormat = errors.New("unsupported format")
)

// apiError maps an error to a status code and payload.
func apiError(err error) (int, models.APIError) {
	body := models.APIError{Message: err.Error()}

	var stageErr *views.StageError
	if errors.As(err, &stageErr) {
		body.View = string(stageErr.View)
		body.Stage = string(stageErr.Stage)
	}

	var httpErr *echo.HTTPError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		body.Code = statusCode(httpErr.Code)
		body.Message = fmt.Sprint(httpErr.Message)
	case errors.Is(err, ErrLoading):
		status, body.Code = http.StatusServiceUnavailable, "LOADING"
	case errors.Is(err, ErrFormat):
		status, body.Code = http.StatusBadRequest, "UNSUPPORTED_FORMAT"
	case errors.Is(err, views.ErrUnknownView):
		status, body.Code = http.StatusBadRequest, "UNKNOWN_VIEW"
	case errors.Is(err, views.ErrSelection):
		status, body.Code = http.StatusBadRequest, "INVALID_SELECTION"
	// checked before the engine sentinels it wraps
	case errors.Is(err, views.ErrDatasetUnavailable):
		body.Code = "DATASET_UNAVAILABLE"
	case errors.Is(err, engine.ErrDegenerateRange):
		status, body.Code = http.StatusUnprocessableEntity, "DEGENERATE_RANGE"
	case errors.Is(err, engine.ErrSchema):
		status, body.Code = http.StatusUnprocessableEntity, "SCHEMA_ERROR"
	case errors.Is(err, engine.ErrDecode):
		body.Code = "DECODE_ERROR"
	case errors.Is(err, engine.ErrIO):
		body.Code = "IO_ERROR"
	default:
		body.Code = "INTERNAL"
		body.Message = http.StatusText(http.StatusInternalServerError)
	}
	return status, body
}

func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
