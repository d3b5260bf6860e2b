package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"dmline/internal/app/ai"
	"dmline/internal/app/store"
	"dmline/internal/pkg/errs"
)

func TestAIChatForwardsMessageAndHistory(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	provider := &fakeAI{reply: "Hello there!"}
	env.deps.AI = provider

	caller := env.users.add(store.User{Email: "alice@example.com", Name: "Alice"})
	token := env.login(t, caller.ID, caller.Email)

	rr, res := env.do(t, http.MethodPost, "/api/ai/chat", token, map[string]any{
		"message": "Hi!",
		"history": []map[string]string{
			{"role": "user", "content": "earlier question"},
			{"role": "assistant", "content": "earlier answer"},
		},
	})

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"message": "Hello there!"}`, string(res.Data))

	require.Equal(t, "Hi!", provider.lastMsg)
	require.Equal(t, []ai.ChatMessage{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}, provider.history)
}

func TestAIChatRequiresMessage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.deps.AI = &fakeAI{reply: "unused"}

	caller := env.users.add(store.User{Email: "alice@example.com", Name: "Alice"})
	token := env.login(t, caller.ID, caller.Email)

	rr, res := env.do(t, http.MethodPost, "/api/ai/chat", token, map[string]any{"message": ""})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, errs.ErrInvalidParams, res.Code)
}

func TestAIChatWithoutProviderConfigured(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	caller := env.users.add(store.User{Email: "alice@example.com", Name: "Alice"})
	token := env.login(t, caller.ID, caller.Email)

	rr, res := env.do(t, http.MethodPost, "/api/ai/chat", token, map[string]any{"message": "Hi!"})

	require.Equal(t, http.StatusBadGateway, rr.Code)
	require.Equal(t, errs.ErrAIProviderFailed, res.Code)
}

func TestAIChatSurfacesProviderFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.deps.AI = &fakeAI{err: errStoreDown}

	caller := env.users.add(store.User{Email: "alice@example.com", Name: "Alice"})
	token := env.login(t, caller.ID, caller.Email)

	rr, res := env.do(t, http.MethodPost, "/api/ai/chat", token, map[string]any{"message": "Hi!"})

	require.Equal(t, http.StatusBadGateway, rr.Code)
	require.Equal(t, errs.ErrAIProviderFailed, res.Code)
}
