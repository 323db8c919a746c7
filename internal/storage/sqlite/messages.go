package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hetulpatel/intellichat/internal/models"
)

// AppendMessage inserts a message and fills in its ID and timestamp. The
// parent conversation's updated_at is bumped by the insert trigger.
func (s *Store) AppendMessage(ctx context.Context, msg *models.Message) error {
	if !msg.Role.Valid() {
		return fmt.Errorf("invalid role %q", msg.Role)
	}
	const query = `
	INSERT INTO messages (conversation_id, role, content, token_count)
	VALUES (?, ?, ?, ?)
	RETURNING id, timestamp`

	var ts string
	err := s.db.QueryRowContext(ctx, query, msg.ConversationID, string(msg.Role), msg.Content, msg.TokenCount).
		Scan(&msg.ID, &ts)
	if err != nil {
		return err
	}
	msg.Timestamp = parseTimestamp(ts)
	return nil
}

// ConversationHistory returns the most recent messages of a conversation,
// newest first, capped at limit.
func (s *Store) ConversationHistory(ctx context.Context, conversationID int64, limit int) ([]models.Message, error) {
	const query = `
	SELECT id, conversation_id, role, content, timestamp, token_count
	FROM messages
	WHERE conversation_id = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var (
			msg    models.Message
			role   string
			ts     string
			tokens sql.NullInt64
		)
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content, &ts, &tokens); err != nil {
			return nil, err
		}
		msg.Role = models.Role(role)
		msg.Timestamp = parseTimestamp(ts)
		if tokens.Valid {
			msg.TokenCount = &tokens.Int64
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MessageCountsByRole groups the messages table by role.
func (s *Store) MessageCountsByRole(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT role, COUNT(*) FROM messages GROUP BY role")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			role  string
			count int64
		)
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts[role] = count
	}
	return counts, rows.Err()
}
