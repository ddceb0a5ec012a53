package storage

import (
	"context"
	"fmt"

	"github.com/user/portfolio-go/contact"
)

// MessageStore implements contact.Store.
type MessageStore struct{ base }

var _ contact.Store = (*MessageStore)(nil)

// Create inserts a contact message.
func (s *MessageStore) Create(ctx context.Context, msg *contact.Message) error {
	msg.CreatedAt = now()
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO messages (id, name, email, message, created_at) VALUES (:id, :name, :email, :message, :created_at)`,
		msg)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// List returns all messages, newest first.
func (s *MessageStore) List(ctx context.Context) ([]contact.Message, error) {
	list := []contact.Message{}
	err := s.db.SelectContext(ctx, &list,
		`SELECT id, name, email, message, created_at FROM messages ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return list, nil
}
