package domain

import "errors"

// ErrCode is the closed set of failure discriminants. The values double as
// the wire `error` field, so they stay UPPER_SNAKE.
type ErrCode string

const (
	CodeInvalidRequest             ErrCode = "INVALID_REQUEST"
	CodeInvalidCredentials         ErrCode = "INVALID_CREDENTIALS"
	CodeUnauthorized               ErrCode = "UNAUTHORIZED"
	CodeForbidden                  ErrCode = "FORBIDDEN"
	CodeHotelNotFound              ErrCode = "HOTEL_NOT_FOUND"
	CodeRoomNotFound               ErrCode = "ROOM_NOT_FOUND"
	CodeBookingNotFound            ErrCode = "BOOKING_NOT_FOUND"
	CodeRoomNotAvailable           ErrCode = "ROOM_NOT_AVAILABLE"
	CodeAlreadyCancelled           ErrCode = "ALREADY_CANCELLED"
	CodeAlreadyReviewed            ErrCode = "ALREADY_REVIEWED"
	CodeEmailAlreadyExists         ErrCode = "EMAIL_ALREADY_EXISTS"
	CodeRoomAlreadyExists          ErrCode = "ROOM_ALREADY_EXISTS"
	CodeInvalidDates               ErrCode = "INVALID_DATES"
	CodeInvalidCapacity            ErrCode = "INVALID_CAPACITY"
	CodeCancellationDeadlinePassed ErrCode = "CANCELLATION_DEADLINE_PASSED"
	CodeBookingNotEligible         ErrCode = "BOOKING_NOT_ELIGIBLE"
	CodeInternal                   ErrCode = "INTERNAL_SERVER_ERROR"
)

// ErrNotFound is the storage-level miss sentinel; callers translate it to
// the entity-specific NOT_FOUND variant.
var ErrNotFound = errors.New("not found")

// Error is the only error type that crosses the app/storage boundary with
// client-visible meaning; anything else renders as a 500.
type Error struct {
	Code ErrCode
}

func (e *Error) Error() string { return string(e.Code) }

func E(code ErrCode) error { return &Error{Code: code} }

// CodeOf unwraps the discriminant; ok is false for unclassified errors.
func CodeOf(err error) (ErrCode, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}

// Is lets errors.Is match two domain errors by code.
func (e *Error) Is(target error) bool {
	var de *Error
	return errors.As(target, &de) && de.Code == e.Code
}
