/*
Package handler provides HTTP handler functions for authentication, user
lookup, messaging, and the AI chat proxy.

This file holds the message delivery flow. A send request moves through
received -> persisted -> dispatched: the durable insert is the commit point,
and only a stored message is pushed to the live connections of both parties.
*/
package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dmline/internal/app/chat"
	"dmline/internal/pkg/auth/jwt"
	"dmline/internal/pkg/errs"
	"dmline/internal/pkg/logx"
	"dmline/internal/pkg/req"
	"dmline/internal/pkg/resp"
)

// MaxContentBytes caps the size of a single message body.
const MaxContentBytes = 5000

type SendMessageInput struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// HandleSendMessage persists a new message and dispatches it live to both
// parties. Dispatch is best-effort: an offline party simply receives nothing,
// and that is not an error.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input SendMessageInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.ReceiverID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrReceiverRequired))
			return
		}

		if strings.TrimSpace(input.Content) == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageContentEmpty))
			return
		}

		if len(input.Content) > MaxContentBytes {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageContentTooLong))
			return
		}

		exists, err := deps.Users.Exists(r.Context(), input.ReceiverID)
		if err != nil {
			logx.Error(err, "send: receiver existence check failed", "receiver_id", input.ReceiverID)
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistence))
			return
		}
		if !exists {
			resp.RespondError(w, r, errs.NewError(errs.ErrReceiverNotFound))
			return
		}

		message, err := deps.Messages.Create(r.Context(), identity.UserID, input.ReceiverID, input.Content)
		if err != nil {
			logx.Error(err, "send: failed to persist message", "receiver_id", input.ReceiverID)
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistence))
			return
		}

		// Durably stored; now push to whoever is connected. The payloads are
		// identical, the event name tells each side whether it sent or
		// received this message.
		deps.Hub.SendToUser(message.ReceiverID, chat.NewEvent(chat.EventMessageReceive, message))
		deps.Hub.SendToUser(message.SenderID, chat.NewEvent(chat.EventMessageSent, message))

		resp.RespondCreated(w, r, message)
	}
}

// HandleGetConversation returns the full exchange between the caller and the
// other user, oldest first, and durably marks everything the other user sent
// as read. No live read-receipt event is emitted.
func HandleGetConversation(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		otherID := chi.URLParam(r, "userId")
		if otherID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		messages, err := deps.Messages.Conversation(r.Context(), identity.UserID, otherID)
		if err != nil {
			logx.Error(err, "failed to fetch conversation", "other_id", otherID)
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistence))
			return
		}

		if _, err := deps.Messages.MarkRead(r.Context(), otherID, identity.UserID); err != nil {
			logx.Error(err, "failed to mark conversation read", "other_id", otherID)
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistence))
			return
		}

		resp.RespondSuccess(w, r, messages)
	}
}

// HandleUnreadCount returns the number of unread messages addressed to the caller.
func HandleUnreadCount(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		count, err := deps.Messages.CountUnread(r.Context(), identity.UserID)
		if err != nil {
			logx.Error(err, "failed to count unread messages")
			resp.RespondError(w, r, errs.NewError(errs.ErrPersistence))
			return
		}

		resp.RespondSuccess(w, r, map[string]int64{"count": count})
	}
}
