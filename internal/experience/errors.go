package experience

import (
	"errors"
	"net/http"

	"github.com/ignite/golden-ipa/internal/domain"
	"github.com/ignite/golden-ipa/internal/relay"
)

var (
	// ErrBadEvent marks a resolver event that cannot be decoded.
	ErrBadEvent = errors.New("malformed resolver event")
	// ErrUnknownField marks an event for a field no resolver serves.
	ErrUnknownField = errors.New("unknown field")
)

// ErrorResponse is the failure body of the resolve endpoint.
type ErrorResponse struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
}

// classify maps a resolver error to the public status and error type.
// Anything unrecognised is reported without detail.
func classify(err error) (int, ErrorResponse) {
	var dce *relay.DomainCallError
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, ErrorResponse{ErrorType: "ValidationError", ErrorMessage: err.Error()}
	case errors.Is(err, ErrUnknownField):
		return http.StatusBadRequest, ErrorResponse{ErrorType: "UnknownField", ErrorMessage: err.Error()}
	case errors.Is(err, ErrBadEvent):
		return http.StatusBadRequest, ErrorResponse{ErrorType: "BadRequest", ErrorMessage: err.Error()}
	case errors.As(err, &dce):
		msg := dce.Operation + " failed"
		if dce.Category == relay.CategoryStatus {
			msg = dce.Error()
		}
		return http.StatusBadGateway, ErrorResponse{ErrorType: "DomainCallError", ErrorMessage: msg}
	default:
		return http.StatusInternalServerError, ErrorResponse{ErrorType: "InternalError", ErrorMessage: "internal error"}
	}
}
