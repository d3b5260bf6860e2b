package jwt

import (
	"context"
	"net/http"
	"strings"

	"dmline/internal/pkg/errs"
	"dmline/internal/pkg/logx"
	"dmline/internal/pkg/resp"
)

// Context key for storing the Payload struct, preventing key collisions with other packages.
type contextKey string

const (
	// ContextAuthPayloadKey is the key used to store the parsed jwt.Payload (user identity) in the request Context.
	ContextAuthPayloadKey contextKey = "auth_payload"
)

// SessionValidator reports whether a raw token string corresponds to a live,
// unexpired session in the durable session store.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (bool, error)
}

// BearerToken extracts the raw token from an "Authorization: Bearer <token>" header.
// It returns the empty string when the header is missing or malformed.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// Authenticator returns a middleware that requires a valid JWT backed by a
// live session row. The signature check alone is not enough: a token whose
// session was deleted by logout (or has expired) is rejected even if the JWT
// itself would still verify. On success the Payload is injected into the
// request Context; on any failure the request is terminated with 401.
func Authenticator(secretKey string, sessions SessionValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := BearerToken(r)
			if tokenString == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			payload, err := ParseToken(tokenString, secretKey)
			if err != nil {
				logx.Warn("Invalid or expired JWT provided", "error", err)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			ok, err := sessions.ValidateSession(r.Context(), tokenString)
			if err != nil {
				logx.Error(err, "Session lookup failed during authentication")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
			if !ok {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			ctx := context.WithValue(r.Context(), ContextAuthPayloadKey, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPayloadFromContext safely extracts the authenticated Payload from the request Context.
// A nil return means the request did not pass the Authenticator.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)

	if !ok {
		return nil
	}

	return payload
}
