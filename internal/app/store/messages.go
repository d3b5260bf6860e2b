package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Messages provides query access to the messages table.
type Messages struct {
	pool *pgxpool.Pool
}

// NewMessages constructs a Messages store over the given connection pool.
func NewMessages(pool *pgxpool.Pool) *Messages {
	return &Messages{pool: pool}
}

const messageColumns = `m.id::text, m.sender_id::text, m.receiver_id::text, m.content, m.read, m.created_at,
	u.id::text, u.name, u.picture`

func scanMessage(row interface{ Scan(...any) error }) (Message, error) {
	var m Message
	var sender UserSummary

	err := row.Scan(
		&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Read, &m.CreatedAt,
		&sender.ID, &sender.Name, &sender.Picture,
	)
	if err != nil {
		return Message{}, err
	}

	m.Sender = &sender
	return m, nil
}

// Create persists a new unread message and returns it with the sender summary
// attached, ready for live dispatch. This insert is the durability commit
// point of the send flow.
func (s *Messages) Create(ctx context.Context, senderID, receiverID, content string) (Message, error) {
	row := s.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO messages (sender_id, receiver_id, content)
			VALUES ($1::uuid, $2::uuid, $3)
			RETURNING id, sender_id, receiver_id, content, read, created_at
		)
		SELECT `+messageColumns+`
		FROM inserted m
		JOIN users u ON u.id = m.sender_id`,
		senderID, receiverID, content)

	return scanMessage(row)
}

// Conversation returns every message exchanged between the two users, oldest first.
func (s *Messages) Conversation(ctx context.Context, userA, userB string) ([]Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE (m.sender_id = $1::uuid AND m.receiver_id = $2::uuid)
		   OR (m.sender_id = $2::uuid AND m.receiver_id = $1::uuid)
		ORDER BY m.created_at ASC`,
		userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// MarkRead flips every unread message from senderID to receiverID to read and
// returns how many rows changed. Already-read rows and the opposite direction
// are untouched.
func (s *Messages) MarkRead(ctx context.Context, senderID, receiverID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE messages SET read = TRUE
		WHERE sender_id = $1::uuid AND receiver_id = $2::uuid AND read = FALSE`,
		senderID, receiverID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountUnread returns the number of unread messages addressed to the user.
func (s *Messages) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE receiver_id = $1::uuid AND read = FALSE`,
		receiverID).Scan(&count)
	return count, err
}
