package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"stayhub/internal/domain"
)

// envelope is the uniform response wrapper: every success and every failure
// share this shape, only `error` and the status code vary.
type envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, code domain.ErrCode) {
	c := string(code)
	writeJSON(w, statusOf(code), envelope{Success: false, Error: &c})
}

// writeFailure translates any service error into the envelope. Unclassified
// errors are logged and rendered as a generic 500 with nothing leaked.
func writeFailure(w http.ResponseWriter, err error) {
	code, ok := domain.CodeOf(err)
	if !ok {
		log.Error().Err(err).Msg("unclassified error")
		code = domain.CodeInternal
	}
	writeError(w, code)
}

func statusOf(code domain.ErrCode) int {
	switch code {
	case domain.CodeInvalidRequest,
		domain.CodeEmailAlreadyExists,
		domain.CodeRoomAlreadyExists,
		domain.CodeRoomNotAvailable,
		domain.CodeAlreadyCancelled,
		domain.CodeAlreadyReviewed,
		domain.CodeInvalidDates,
		domain.CodeInvalidCapacity,
		domain.CodeCancellationDeadlinePassed,
		domain.CodeBookingNotEligible:
		return http.StatusBadRequest
	case domain.CodeUnauthorized, domain.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeHotelNotFound, domain.CodeRoomNotFound, domain.CodeBookingNotFound:
		return http.StatusNotFound
	case domain.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
