/*
Package handler provides HTTP handler functions for authentication, user
lookup, messaging, and the AI chat proxy.

This file contains the WebSocket admission path: rate limiting, handshake
authentication, connection upgrading, and handing the connection to the Hub.
*/
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"dmline/internal/app/chat"
	"dmline/internal/pkg/auth/jwt"
	"dmline/internal/pkg/errs"
	"dmline/internal/pkg/limiter"
	"dmline/internal/pkg/logx"
	"dmline/internal/pkg/resp"
)

// wsCloseUserNotFound is a custom WebSocket close code (4000-4999 range)
// signalling that the token was valid but its account no longer exists.
const wsCloseUserNotFound = 4004

// handshakeToken extracts the auth token from the connection's handshake
// data: the `token` query parameter, with the Authorization header as a
// fallback for clients that can set it.
func handshakeToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	return jwt.BearerToken(r)
}

// HandleWebSocket authenticates and admits new bidirectional connections.
// A connection that fails authentication is rejected before it can touch the
// presence registry: invalid tokens never reach the upgrade, and a valid
// token whose user row has vanished gets an auth:error frame plus a close
// frame immediately after the upgrade.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		token := handshakeToken(r)
		if token == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		payload, err := jwt.ParseToken(token, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket connection rejected: invalid token.", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		live, err := deps.Sessions.ValidateSession(r.Context(), token)
		if err != nil {
			logx.Error(err, "WebSocket handshake: session lookup failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if !live {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		exists, err := deps.Users.Exists(r.Context(), payload.UserID)
		if err != nil {
			logx.Error(err, "WebSocket handshake: user existence check failed", "user_id", payload.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		if !exists {
			logx.Warn("WebSocket connection rejected: user not found.", "user_id", payload.UserID)
			rejectAfterUpgrade(conn, wsCloseUserNotFound, "User not found. Please login again.")
			return
		}

		client := chat.NewClient(deps.Hub, conn, payload.UserID)

		go client.WritePump()

		deps.Hub.Register(client)

		logx.Info("WebSocket connection established", "user_id", payload.UserID, "ip", ip)

		client.ReadPump()
	}
}

// rejectAfterUpgrade sends an auth:error frame and a close frame, then drops
// the connection without it ever reaching the registry.
func rejectAfterUpgrade(conn *websocket.Conn, closeCode int, message string) {
	deadline := time.Now().Add(5 * time.Second)

	frame, err := json.Marshal(chat.NewEvent(chat.EventAuthError, chat.AuthErrorPayload{Message: message}))
	if err == nil {
		conn.SetWriteDeadline(deadline)
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			logx.Warn("Failed to write auth:error frame before close.", "error", err)
		}
	}

	closeFrame := websocket.FormatCloseMessage(closeCode, message)
	if err := conn.WriteControl(websocket.CloseMessage, closeFrame, deadline); err != nil {
		logx.Warn("Failed to write close frame.", "error", err)
	}

	conn.Close()
}
