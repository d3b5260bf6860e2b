package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"dmline/internal/app/ai"
	"dmline/internal/app/chat"
	"dmline/internal/app/store"
	"dmline/internal/configs"
	"dmline/internal/pkg/auth/google"
	"dmline/internal/pkg/auth/jwt"
)

type onlineWrite struct {
	userID string
	online bool
}

type fakeUsers struct {
	mu        sync.Mutex
	users     map[string]store.User
	createErr error
	listErr   error
	existsErr error
	onlineLog []onlineWrite
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]store.User)}
}

func (f *fakeUsers) add(u store.User) store.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUsers) Create(_ context.Context, email, name, passwordHash string) (store.User, error) {
	if f.createErr != nil {
		return store.User{}, f.createErr
	}

	return f.add(store.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		IsOnline:     true,
		CreatedAt:    time.Now(),
	}), nil
}

func (f *fakeUsers) UpsertGoogle(_ context.Context, googleID, email, name, picture string) (store.User, error) {
	f.mu.Lock()
	for id, u := range f.users {
		if u.Email == email {
			u.GoogleID = googleID
			u.Name = name
			u.Picture = picture
			u.IsOnline = true
			f.users[id] = u
			f.mu.Unlock()
			return u, nil
		}
	}
	f.mu.Unlock()

	return f.add(store.User{
		Email:     email,
		Name:      name,
		GoogleID:  googleID,
		Picture:   picture,
		IsOnline:  true,
		CreatedAt: time.Now(),
	}), nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return store.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return store.User{}, pgx.ErrNoRows
}

func (f *fakeUsers) GetByGoogleID(_ context.Context, googleID string) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.GoogleID == googleID {
			return u, nil
		}
	}
	return store.User{}, pgx.ErrNoRows
}

func (f *fakeUsers) Exists(_ context.Context, id string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeUsers) List(_ context.Context, excludeID string) ([]store.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := []store.User{}
	for id, u := range f.users {
		if id != excludeID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) SetOnline(_ context.Context, id string, online bool, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.onlineLog = append(f.onlineLog, onlineWrite{userID: id, online: online})

	if u, ok := f.users[id]; ok {
		u.IsOnline = online
		f.users[id] = u
	}
	return nil
}

func (f *fakeUsers) onlineWrites() []onlineWrite {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]onlineWrite, len(f.onlineLog))
	copy(out, f.onlineLog)
	return out
}

type fakeSessions struct {
	mu        sync.Mutex
	tokens    map[string]time.Time
	createErr error
	lookupErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: make(map[string]time.Time)}
}

func (f *fakeSessions) put(token string, expiresAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = expiresAt
}

func (f *fakeSessions) has(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[token]
	return ok
}

func (f *fakeSessions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

func (f *fakeSessions) Create(_ context.Context, _ string, token string, expiresAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.put(token, expiresAt)
	return nil
}

func (f *fakeSessions) ValidateSession(_ context.Context, token string) (bool, error) {
	if f.lookupErr != nil {
		return false, f.lookupErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	expiresAt, ok := f.tokens[token]
	return ok && expiresAt.After(time.Now()), nil
}

func (f *fakeSessions) DeleteByToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

type fakeMessages struct {
	mu           sync.Mutex
	created      []store.Message
	conversation []store.Message
	unread       int64
	markCalls    [][2]string
	createErr    error
	convErr      error
	markErr      error
	countErr     error
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{}
}

func (f *fakeMessages) Create(_ context.Context, senderID, receiverID, content string) (store.Message, error) {
	if f.createErr != nil {
		return store.Message{}, f.createErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	m := store.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	f.created = append(f.created, m)
	return m, nil
}

func (f *fakeMessages) Conversation(_ context.Context, _, _ string) ([]store.Message, error) {
	if f.convErr != nil {
		return nil, f.convErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conversation, nil
}

func (f *fakeMessages) MarkRead(_ context.Context, senderID, receiverID string) (int64, error) {
	if f.markErr != nil {
		return 0, f.markErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.markCalls = append(f.markCalls, [2]string{senderID, receiverID})
	return int64(len(f.conversation)), nil
}

func (f *fakeMessages) CountUnread(_ context.Context, _ string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.unread, nil
}

func (f *fakeMessages) createdMessages() []store.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]store.Message, len(f.created))
	copy(out, f.created)
	return out
}

type fakeVerifier struct {
	identity *google.Identity
	err      error
}

func (f *fakeVerifier) Verify(_ context.Context, _ string) (*google.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

type fakeAI struct {
	reply string
	err   error

	mu      sync.Mutex
	lastMsg string
	history []ai.ChatMessage
}

func (f *fakeAI) Chat(_ context.Context, message string, history []ai.ChatMessage) (string, error) {
	f.mu.Lock()
	f.lastMsg = message
	f.history = history
	f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// testEnv bundles the fakes behind an AppDeps and the router built over them.
type testEnv struct {
	deps     *AppDeps
	router   http.Handler
	users    *fakeUsers
	sessions *fakeSessions
	messages *fakeMessages
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newFakeUsers()
	sessions := newFakeSessions()
	messages := newFakeMessages()

	deps := &AppDeps{
		Hub: chat.NewHub(users),
		Config: &configs.AppConfig{
			Environment: "development",
			Port:        4000,
			JWTSecret:   "test-secret",
		},
		Users:    users,
		Sessions: sessions,
		Messages: messages,
	}
	t.Cleanup(deps.Hub.Shutdown)

	return &testEnv{
		deps:     deps,
		router:   Router(deps),
		users:    users,
		sessions: sessions,
		messages: messages,
	}
}

// login seeds a live session for the user and returns its bearer token.
func (env *testEnv) login(t *testing.T, userID, email string) string {
	t.Helper()

	token, err := jwt.GenerateToken(&jwt.Payload{UserID: userID, Email: email}, env.deps.Config.JWTSecret, jwt.SessionExpiration)
	require.NoError(t, err)

	env.sessions.put(token, time.Now().Add(jwt.SessionExpiration))
	return token
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do runs one request through the router and decodes the JSON envelope.
func (env *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, r)

	var decoded apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decoded), "response body: %s", rr.Body.String())

	return rr, decoded
}

var errStoreDown = errors.New("store down")
