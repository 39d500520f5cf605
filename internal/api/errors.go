package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/mediqa-api/internal/service/auth"
	"github.com/phrazzld/mediqa-api/internal/service/gamification"
	"github.com/phrazzld/mediqa-api/internal/service/review"
	"github.com/phrazzld/mediqa-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so
// handlers never leak internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, gamification.ErrUserNotFound),
		errors.Is(err, gamification.ErrAchievementNotFound),
		errors.Is(err, review.ErrUserNotFound),
		errors.Is(err, review.ErrCardNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, review.ErrInvalidQuality),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for an
// internal error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, gamification.ErrUserNotFound),
		errors.Is(err, review.ErrUserNotFound),
		errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, gamification.ErrAchievementNotFound):
		return "Achievement not found"

	case errors.Is(err, review.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, review.ErrInvalidQuality):
		return "Quality must be between 0 and 5"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleServiceError writes the mapped status and safe message for err.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
