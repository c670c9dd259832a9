package gateway

import (
	"context"
	"errors"
	"net/http"

	"wavecast-hq/tunegate/pkg/formats"
	"wavecast-hq/tunegate/pkg/upstream"
)

// StatusFor maps a domain error to the HTTP status and error kind the
// route boundary answers with. Unknown errors map to 500.
func StatusFor(err error) (int, string) {
	var (
		validation *upstream.ValidationError
		badQuality *formats.UnknownQualityError
		notFound   *upstream.NotFoundError
		noFormat   *formats.NoFormatError
		upErr      *upstream.UpstreamError
		timeout    *upstream.TimeoutError
		parseErr   *upstream.ParseError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &badQuality):
		return http.StatusBadRequest, ErrKindInvalidRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound, ErrKindNotFound
	case errors.As(err, &noFormat):
		return http.StatusUnprocessableEntity, ErrKindNoMatchingFormat
	case errors.As(err, &upErr), errors.As(err, &timeout), errors.As(err, &parseErr):
		return http.StatusInternalServerError, ErrKindUpstream
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusInternalServerError, ErrKindUpstream
	default:
		return http.StatusInternalServerError, ErrKindInternal
	}
}

// WriteDomainError converts err at the route boundary. The message is
// the error's own text, so provider failures carry the provider's
// wording to the client.
func WriteDomainError(w http.ResponseWriter, err error) {
	status, kind := StatusFor(err)
	WriteError(w, status, kind, err.Error())
}

// ErrorType buckets err for metrics labels. The buckets are closed so
// label cardinality stays fixed.
func ErrorType(err error) string {
	var (
		validation *upstream.ValidationError
		badQuality *formats.UnknownQualityError
		notFound   *upstream.NotFoundError
		noFormat   *formats.NoFormatError
		upErr      *upstream.UpstreamError
		timeout    *upstream.TimeoutError
		parseErr   *upstream.ParseError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &badQuality):
		return "validation"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &noFormat):
		return "no_format"
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &upErr):
		return "upstream"
	default:
		return "other"
	}
}
