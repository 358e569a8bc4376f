package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/api/handler"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status and stable error tag.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders every failure in the canonical envelope.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, tag := resolveError(err, log, c)
		_ = c.JSON(code, handler.Envelope{
			Success: false,
			Code:    code,
			Message: msg,
			Error:   tag,
		})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, string) {
	var alreadyErr *domain.AlreadyProcessedError
	var missingErr *domain.MissingVariablesError

	// Known domain errors → deterministic codes and tags.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password", "UNAUTHORIZED"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusBadRequest, "An account with this email already exists", "DUPLICATE_EMAIL"
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, "Role must be PARTNER or PARENT", "VALIDATION_ERROR"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found", "NOT_FOUND"
	case errors.Is(err, domain.ErrParentNotFound):
		return http.StatusNotFound, "Parent not found for given email address", "NOT_FOUND"
	case errors.Is(err, domain.ErrInvitationNotFound):
		return http.StatusNotFound, "Invitation not found", "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidInviteID):
		return http.StatusBadRequest, "Invalid invite", "INVALID_INVITE"
	case errors.Is(err, domain.ErrInvitationGone):
		return http.StatusGone, "Invitation is no longer available", "GONE"
	case errors.Is(err, domain.ErrInvitationExpired):
		return http.StatusGone, "Invitation has expired", "EXPIRED"
	case errors.As(err, &alreadyErr):
		return http.StatusBadRequest, fmt.Sprintf("Invitation already %s", alreadyErr.Status), "ALREADY_PROCESSED"
	case errors.Is(err, domain.ErrTemplateNotFound):
		return http.StatusNotFound, "Email template not found", "TEMPLATE_NOT_FOUND"
	case errors.Is(err, domain.ErrGlobalTemplateNotFound):
		return http.StatusNotFound, "Global email template not found", "TEMPLATE_NOT_FOUND"
	case errors.As(err, &missingErr):
		return http.StatusBadRequest, missingErr.Error(), "VALIDATION_ERROR"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests. Please try again later", "RATE_LIMITED"
	}

	// Echo's own errors (bind failures, validation, 404 from router, auth
	// middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message), tagForStatus(he.Code)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusNotImplemented, "Something went wrong. Please try again later", "INTERNAL_SERVER_ERROR"
}

func tagForStatus(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}
