package handler

import (
	"net/http"

	"dmline/internal/app/ai"
	"dmline/internal/pkg/auth/jwt"
	"dmline/internal/pkg/errs"
	"dmline/internal/pkg/logx"
	"dmline/internal/pkg/req"
	"dmline/internal/pkg/resp"
)

type AIChatInput struct {
	Message string           `json:"message"`
	History []ai.ChatMessage `json:"history,omitempty"`
}

// HandleAIChat forwards a user message (with optional conversation history)
// to the configured AI provider and returns its reply.
func HandleAIChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input AIChatInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Message == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if deps.AI == nil {
			logx.Warn("ai chat attempted but no provider is configured")
			resp.RespondError(w, r, errs.NewError(errs.ErrAIProviderFailed))
			return
		}

		reply, err := deps.AI.Chat(r.Context(), input.Message, input.History)
		if err != nil {
			logx.Error(err, "ai provider call failed", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrAIProviderFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{"message": reply})
	}
}
