package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrContentRejected = errors.New("content rejected")
	ErrRoomInactive    = errors.New("room inactive")
	ErrTransient       = errors.New("temporary store failure")
)

// ContentRejected wraps ErrContentRejected with the moderation reason so it can
// be surfaced verbatim to the caller.
func ContentRejected(reason string) error {
	return fmt.Errorf("%w: %s", ErrContentRejected, reason)
}

func Validation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

// Kind returns the stable taxonomy name for an error. REST handlers put it in
// the JSON body, the websocket gateway puts it in the error event.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrContentRejected):
		return "content_rejected"
	case errors.Is(err, ErrRoomInactive):
		return "room_inactive"
	case errors.Is(err, ErrTransient):
		return "transient"
	default:
		return "internal"
	}
}

func HTTPStatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation), errors.Is(err, ErrRoomInactive):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrContentRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
