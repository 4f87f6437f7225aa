package identifications

import (
	"errors"
	"net/http"
)

// Domain errors for identification operations.
var (
	ErrNotFound      = errors.New("identification not found")
	ErrDuplicate     = errors.New("identification already exists for image")
	ErrInvalidID     = errors.New("invalid identification id")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidImage  = errors.New("invalid image")
	ErrImageTooLarge = errors.New("image exceeds maximum upload size")
	ErrImageNotFound = errors.New("image not found")
)

// Messages persisted on records.
const (
	MessageScheduleFailed = "could not schedule identification"
	MessageNotFound       = "not found"
)

// MapHTTPStatus maps identification domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidImage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
