/*
Package store implements the durable persistence layer over PostgreSQL.

It exposes one query type per aggregate (Users, Sessions, Messages), each a
thin wrapper around a pgx connection pool. The in-memory presence registry is
deliberately not part of this package: rows here are the best-effort durable
mirror, while live connection state belongs to the chat package.
*/
package store

import "time"

// User is the durable record of an account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	IsOnline  bool      `json:"isOnline"`
	LastSeen  time.Time `json:"lastSeen"`
	CreatedAt time.Time `json:"createdAt"`

	// PasswordHash is empty for OAuth-only accounts. Never serialized.
	PasswordHash string `json:"-"`

	// GoogleID is empty for password-only accounts. Never serialized.
	GoogleID string `json:"-"`
}

// UserSummary is the compact sender representation embedded in messages.
type UserSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Summary projects the compact representation of a user.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Picture: u.Picture}
}

// Session is one issued login token. A user may hold any number of live
// sessions at once; logout removes only the presented one.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Message is one durable direct message between two users.
type Message struct {
	ID         string       `json:"id"`
	SenderID   string       `json:"senderId"`
	ReceiverID string       `json:"receiverId"`
	Content    string       `json:"content"`
	Read       bool         `json:"read"`
	CreatedAt  time.Time    `json:"createdAt"`
	Sender     *UserSummary `json:"sender,omitempty"`
}
