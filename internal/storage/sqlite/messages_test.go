package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/intellichat/internal/models"
)

func TestAppendMessageRejectsUnknownRole(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "session-1", "gpt-4o", "")
	require.NoError(t, err)

	msg := &models.Message{ConversationID: conv.ID, Role: "bot", Content: "hello"}
	require.Error(t, store.AppendMessage(ctx, msg))

	// The CHECK constraint backs the Go-side validation.
	err = store.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO messages (conversation_id, role, content) VALUES (?, 'bot', 'hello')", conv.ID)
		return err
	})
	require.Error(t, err)
}

func TestAppendMessageRequiresConversation(t *testing.T) {
	store := newTestStore(t)

	msg := &models.Message{ConversationID: 9999, Role: models.RoleUser, Content: "orphan"}
	require.Error(t, store.AppendMessage(context.Background(), msg))
}

func TestAppendMessageBumpsConversationTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "session-1", "gpt-4o", "")
	require.NoError(t, err)

	msg := &models.Message{ConversationID: conv.ID, Role: models.RoleUser, Content: "hello"}
	require.NoError(t, store.AppendMessage(ctx, msg))
	require.False(t, msg.Timestamp.IsZero())

	updated, err := store.ConversationBySession(ctx, "session-1")
	require.NoError(t, err)
	require.False(t, updated.UpdatedAt.Before(msg.Timestamp))
}

func TestConversationHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "session-1", "gpt-4o", "")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		msg := &models.Message{ConversationID: conv.ID, Role: role, Content: fmt.Sprintf("turn %d", i)}
		require.NoError(t, store.AppendMessage(ctx, msg))
	}

	history, err := store.ConversationHistory(ctx, conv.ID, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, "turn 4", history[0].Content)
	require.Equal(t, "turn 2", history[2].Content)
}

func TestMessageCountsByRole(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "session-1", "gpt-4o", "")
	require.NoError(t, err)

	for _, role := range []models.Role{models.RoleSystem, models.RoleUser, models.RoleAssistant, models.RoleUser} {
		msg := &models.Message{ConversationID: conv.ID, Role: role, Content: "x"}
		require.NoError(t, store.AppendMessage(ctx, msg))
	}

	counts, err := store.MessageCountsByRole(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, counts["user"])
	require.EqualValues(t, 1, counts["assistant"])
	require.EqualValues(t, 1, counts["system"])
}
