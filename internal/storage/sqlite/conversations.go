package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/hetulpatel/intellichat/internal/models"
)

// CreateConversation inserts a conversation row. A blank sessionID gets a
// generated UUID. session_id is UNIQUE, so re-creating an existing session
// fails with a constraint error.
func (s *Store) CreateConversation(ctx context.Context, sessionID, modelName, title string) (*models.Conversation, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	const query = `
	INSERT INTO conversations (session_id, model_name, title)
	VALUES (?, ?, ?)
	RETURNING id, created_at, updated_at`

	conv := &models.Conversation{
		SessionID: sessionID,
		ModelName: modelName,
		Title:     title,
	}
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, query, sessionID, modelName, nullString(title)).
		Scan(&conv.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	conv.CreatedAt = parseTimestamp(createdAt)
	conv.UpdatedAt = parseTimestamp(updatedAt)
	return conv, nil
}

// ConversationBySession looks a conversation up by its session identifier.
// Returns sql.ErrNoRows when the session is unknown.
func (s *Store) ConversationBySession(ctx context.Context, sessionID string) (*models.Conversation, error) {
	const query = `
	SELECT id, session_id, created_at, updated_at, title, model_name
	FROM conversations
	WHERE session_id = ?`
	return s.scanConversation(s.db.QueryRowContext(ctx, query, sessionID))
}

// ListConversations returns every conversation, most recently updated first.
func (s *Store) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	const query = `
	SELECT id, session_id, created_at, updated_at, title, model_name
	FROM conversations
	ORDER BY updated_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := make([]models.Conversation, 0)
	for rows.Next() {
		conv, err := s.scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *conv)
	}
	return conversations, rows.Err()
}

// UpdateConversationTitle sets the title of a conversation.
func (s *Store) UpdateConversationTitle(ctx context.Context, id int64, title string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE conversations SET title = ? WHERE id = ?", nullString(title), id)
	return err
}

// DeleteConversation removes a conversation; the foreign key cascades the
// delete to its messages.
func (s *Store) DeleteConversation(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanConversation(row rowScanner) (*models.Conversation, error) {
	var (
		conv      models.Conversation
		createdAt string
		updatedAt string
		title     sql.NullString
	)
	if err := row.Scan(&conv.ID, &conv.SessionID, &createdAt, &updatedAt, &title, &conv.ModelName); err != nil {
		return nil, err
	}
	conv.CreatedAt = parseTimestamp(createdAt)
	conv.UpdatedAt = parseTimestamp(updatedAt)
	conv.Title = title.String
	return &conv, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
