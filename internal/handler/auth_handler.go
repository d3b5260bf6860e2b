/*
Package handler provides HTTP handler functions for authentication, user
lookup, messaging, and the AI chat proxy.

This file holds the login/register/logout flows. Every successful
authentication issues a JWT and records a matching session row; users may
hold any number of concurrent sessions, and logout revokes only the
presented token.
*/
package handler

import (
	"net/http"
	"regexp"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"dmline/internal/app/db"
	"dmline/internal/app/store"
	"dmline/internal/pkg/auth/jwt"
	"dmline/internal/pkg/errs"
	"dmline/internal/pkg/logx"
	"dmline/internal/pkg/req"
	"dmline/internal/pkg/resp"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// issueSession signs a JWT for the user and records the backing session row.
func issueSession(r *http.Request, deps *AppDeps, user store.User) (string, error) {
	payload := &jwt.Payload{
		UserID: user.ID,
		Email:  user.Email,
	}

	token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.SessionExpiration)
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(jwt.SessionExpiration)
	if err := deps.Sessions.Create(r.Context(), user.ID, token, expiresAt); err != nil {
		return "", err
	}

	return token, nil
}

// authResponse is the common success payload of all three login flows.
func authResponse(token string, user store.User) map[string]any {
	return map[string]any{
		"token": token,
		"user": map[string]any{
			"id":      user.ID,
			"email":   user.Email,
			"name":    user.Name,
			"picture": user.Picture,
		},
	}
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// HandleRegister creates a new password-based account and signs it in.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !emailRegex.MatchString(input.Email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < 6 || passwordLen > 72 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		if input.Name == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrNameRequired))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		user, err := deps.Users.Create(r.Context(), input.Email, input.Name, string(hashedPassword))
		if err != nil {
			if db.IsUniqueViolation(err) {
				logx.Warn("registration conflict: email already exists", "email", input.Email)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user")
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistence))
			return
		}

		token, err := issueSession(r, deps, user)
		if err != nil {
			logx.Error(err, "failed to issue session after registration", "user_id", user.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondCreated(w, r, authResponse(token, user))
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies email/password credentials and issues a fresh session.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Email == "" || input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		user, err := deps.Users.GetByEmail(r.Context(), input.Email)
		if err != nil {
			logx.Warn("login: user fetch failed", "email", input.Email, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		// OAuth-only accounts have no password hash and cannot password-login.
		if user.PasswordHash == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "email", input.Email)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := deps.Users.SetOnline(r.Context(), user.ID, true, time.Now()); err != nil {
			logx.Error(err, "login: failed to update online flag", "user_id", user.ID)
		}

		token, err := issueSession(r, deps, user)
		if err != nil {
			logx.Error(err, "login: failed to issue session", "user_id", user.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, authResponse(token, user))
	}
}

type GoogleLoginInput struct {
	TokenID string `json:"tokenId"`
}

// HandleGoogleLogin verifies a Google ID token, finds or creates the matching
// account, and issues a session for it.
func HandleGoogleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input GoogleLoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.TokenID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if deps.GoogleVerifier == nil {
			logx.Warn("google login attempted but GOOGLE_CLIENT_ID is not configured")
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidGoogleToken))
			return
		}

		identity, err := deps.GoogleVerifier.Verify(r.Context(), input.TokenID)
		if err != nil {
			logx.Warn("google login: token verification failed", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidGoogleToken))
			return
		}

		user, err := deps.Users.GetByGoogleID(r.Context(), identity.GoogleID)
		switch {
		case err == nil:
			if err := deps.Users.SetOnline(r.Context(), user.ID, true, time.Now()); err != nil {
				logx.Error(err, "google login: failed to update online flag", "user_id", user.ID)
			}

		case db.IsNotFound(err):
			if identity.Email == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidGoogleToken))
				return
			}

			user, err = deps.Users.UpsertGoogle(r.Context(), identity.GoogleID, identity.Email, identity.Name, identity.Picture)
			if err != nil {
				logx.Error(err, "google login: failed to upsert user", "google_id", identity.GoogleID)
				resp.RespondError(w, r, errs.NewError(errs.ErrPersistence))
				return
			}

		default:
			logx.Error(err, "google login: user lookup failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistence))
			return
		}

		token, err := issueSession(r, deps, user)
		if err != nil {
			logx.Error(err, "google login: failed to issue session", "user_id", user.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, authResponse(token, user))
	}
}

// HandleLogout revokes the presented session token, best effort. It always
// reports success: a missing or already-revoked token leaves nothing to do.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := jwt.BearerToken(r)
		if token != "" {
			if err := deps.Sessions.DeleteByToken(r.Context(), token); err != nil {
				logx.Error(err, "logout: failed to delete session")
			}

			// The durable flag is a best-effort mirror; live presence is
			// still governed by the websocket lifecycle.
			if payload, err := jwt.ParseToken(token, deps.Config.JWTSecret); err == nil {
				if err := deps.Users.SetOnline(r.Context(), payload.UserID, false, time.Now()); err != nil {
					logx.Error(err, "logout: failed to update online flag", "user_id", payload.UserID)
				}
			}
		}

		resp.RespondSuccess(w, r, map[string]string{"message": "Logged out successfully"})
	}
}
