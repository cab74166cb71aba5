package domainapi

import (
	"errors"
	"net/http"

	"github.com/ignite/golden-ipa/internal/domain"
	"github.com/ignite/golden-ipa/internal/pkg/httputil"
	"github.com/ignite/golden-ipa/internal/pkg/logger"
)

// ErrBadRequest marks a request whose body or path cannot be used.
var ErrBadRequest = errors.New("bad request")

// BadRequestError is a malformed request: empty or unparseable body, or a
// body that contradicts the path.
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string { return e.Reason }

func (e *BadRequestError) Unwrap() error { return ErrBadRequest }

func badRequest(reason string) error {
	return &BadRequestError{Reason: reason}
}

// statusFor maps an error to the HTTP status a domain API answers with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err on the call's entry and writes the mapped response.
// 5xx responses carry a generic message only.
func respondError(w http.ResponseWriter, log *logger.Entry, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("failed", "status", status, "error", err.Error())
		httputil.Error(w, status, "internal server error")
		return
	}
	log.Warn("rejected", "status", status, "error", err.Error())
	httputil.Error(w, status, err.Error())
}
