package httpadapter

import (
	"net/http"

	"github.com/skillgap/analyzer/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case domain.IsKind(err, domain.ErrUnsupportedType),
		domain.IsKind(err, domain.ErrTooLarge),
		domain.IsKind(err, domain.ErrEmptyFile),
		domain.IsKind(err, domain.ErrInsufficientText),
		domain.IsKind(err, domain.ErrExtractionFailed),
		domain.IsKind(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
