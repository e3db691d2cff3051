package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopline/internal/middleware"
	"shopline/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// sessionCookie correlates an anonymous visitor's cart across requests.
const sessionCookie = "session_id"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeDomainError maps a service error to an HTTP response. Unrecognised
// errors become opaque 500s.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg("unexpected service error")
		writeError(w, http.StatusInternalServerError, "internal server error", logger)
		return
	}

	writeError(w, statusForCode(domainErr.Code), domainErr.Message, logger)
}

func statusForCode(code string) int {
	switch code {
	case model.ErrCodeProductNotFound,
		model.ErrCodeCartNotFound,
		model.ErrCodeCartItemNotFound,
		model.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeOrderConflict:
		return http.StatusConflict
	case model.ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		// Validation-shaped failures: bad payloads, insufficient stock,
		// empty carts, gateway rejections.
		return http.StatusBadRequest
	}
}

// ownerFromRequest resolves the cart/order owner for optional-auth routes:
// the authenticated user when present, otherwise the anonymous session,
// minting a session id on first use.
func ownerFromRequest(w http.ResponseWriter, r *http.Request) model.Owner {
	if user := middleware.UserFrom(r); user != nil {
		return model.UserOwner(user.ID)
	}
	return model.SessionOwner(ensureSession(w, r))
}

// ensureSession returns the request's session id, minting one and setting
// the cookie when the visitor has none yet.
func ensureSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	sid := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

// sessionFromRequest returns the existing session id without minting one.
func sessionFromRequest(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}
