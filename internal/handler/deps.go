package handler

import (
	"context"
	"time"

	"dmline/internal/app/ai"
	"dmline/internal/app/chat"
	"dmline/internal/app/storage"
	"dmline/internal/app/store"
	"dmline/internal/configs"
	"dmline/internal/pkg/auth/google"
)

// UserStore is the durable user store consumed by the HTTP layer.
type UserStore interface {
	Create(ctx context.Context, email, name, passwordHash string) (store.User, error)
	UpsertGoogle(ctx context.Context, googleID, email, name, picture string) (store.User, error)
	GetByID(ctx context.Context, id string) (store.User, error)
	GetByEmail(ctx context.Context, email string) (store.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (store.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, excludeID string) ([]store.User, error)
	SetOnline(ctx context.Context, id string, online bool, at time.Time) error
}

// SessionStore is the durable record of issued login tokens.
type SessionStore interface {
	Create(ctx context.Context, userID, token string, expiresAt time.Time) error
	ValidateSession(ctx context.Context, token string) (bool, error)
	DeleteByToken(ctx context.Context, token string) error
}

// MessageStore is the durable message store.
type MessageStore interface {
	Create(ctx context.Context, senderID, receiverID, content string) (store.Message, error)
	Conversation(ctx context.Context, userA, userB string) ([]store.Message, error)
	MarkRead(ctx context.Context, senderID, receiverID string) (int64, error)
	CountUnread(ctx context.Context, receiverID string) (int64, error)
}

// AppDeps bundles everything the HTTP handlers depend on. The Hub is passed
// explicitly so the message flow never reaches into process-wide state.
type AppDeps struct {
	Hub      *chat.Hub
	Config   *configs.AppConfig
	Users    UserStore
	Sessions SessionStore
	Messages MessageStore

	// GoogleVerifier is nil when Google sign-in is not configured.
	GoogleVerifier google.TokenVerifier

	// AI is nil when no provider API key is configured.
	AI ai.Provider

	// StorageService is nil when S3 avatar storage is not configured.
	StorageService storage.StorageService
}
