package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/intellichat/internal/models"
)

func TestCreateConversationGeneratesSessionID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "", "gpt-4o", "")
	require.NoError(t, err)
	require.NotEmpty(t, conv.SessionID)
	require.Positive(t, conv.ID)
	require.False(t, conv.CreatedAt.IsZero())
	require.False(t, conv.UpdatedAt.IsZero())
}

func TestCreateConversationSessionIDUnique(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateConversation(ctx, "session-1", "gpt-4o", "")
	require.NoError(t, err)

	_, err = store.CreateConversation(ctx, "session-1", "gpt-4o", "")
	require.Error(t, err)
}

func TestConversationBySession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateConversation(ctx, "session-1", "llama3.1:8b", "intro chat")
	require.NoError(t, err)

	conv, err := store.ConversationBySession(ctx, "session-1")
	require.NoError(t, err)
	require.Equal(t, created.ID, conv.ID)
	require.Equal(t, "intro chat", conv.Title)
	require.Equal(t, "llama3.1:8b", conv.ModelName)

	_, err = store.ConversationBySession(ctx, "no-such-session")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpdateConversationTitle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "session-1", "gpt-4o", "")
	require.NoError(t, err)
	require.NoError(t, store.UpdateConversationTitle(ctx, conv.ID, "renamed"))

	conv, err = store.ConversationBySession(ctx, "session-1")
	require.NoError(t, err)
	require.Equal(t, "renamed", conv.Title)
}

func TestListConversations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, session := range []string{"a", "b", "c"} {
		_, err := store.CreateConversation(ctx, session, "gpt-4o", "")
		require.NoError(t, err)
	}

	conversations, err := store.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 3)
	// Same-second timestamps fall back to id ordering, newest first.
	require.Equal(t, "c", conversations[0].SessionID)
}

func TestDeleteConversationCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "session-1", "gpt-4o", "")
	require.NoError(t, err)
	keep, err := store.CreateConversation(ctx, "session-2", "gpt-4o", "")
	require.NoError(t, err)

	for _, target := range []*models.Conversation{conv, conv, keep} {
		msg := &models.Message{ConversationID: target.ID, Role: models.RoleUser, Content: "hello"}
		require.NoError(t, store.AppendMessage(ctx, msg))
	}

	require.NoError(t, store.DeleteConversation(ctx, conv.ID))

	rows, err := store.Query(ctx, "SELECT COUNT(*) AS n FROM messages WHERE conversation_id = ?", conv.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, rows[0]["n"])

	remaining, err := store.ConversationHistory(ctx, keep.ID, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
}
