package chatlog

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/intellichat/internal/config"
	"github.com/hetulpatel/intellichat/internal/models"
	sqlstore "github.com/hetulpatel/intellichat/internal/storage/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := sqlstore.Open(filepath.Join(t.TempDir(), "conversations.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.CreateSchema(context.Background()))
	return New(store, nil, nil, nil)
}

func TestOpenFromConfig(t *testing.T) {
	cfg := config.Config{DBPath: filepath.Join(t.TempDir(), "conversations.db")}
	ctx := context.Background()

	svc, err := Open(ctx, cfg, nil)
	require.NoError(t, err)

	_, err = svc.Append(ctx, "session-1", "gpt-4o", models.RoleUser, "hello", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Close())
}

func TestAppendCreatesConversationOnFirstMessage(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Append(ctx, "session-1", "gpt-4o", models.RoleUser, "hello", nil)
	require.NoError(t, err)
	require.Positive(t, first.ConversationID)

	second, err := svc.Append(ctx, "session-1", "gpt-4o", models.RoleAssistant, "hi!", nil)
	require.NoError(t, err)
	require.Equal(t, first.ConversationID, second.ConversationID)
}

func TestAppendRejectsInvalidRole(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Append(context.Background(), "session-1", "gpt-4o", "bot", "hello", nil)
	require.Error(t, err)
}

func TestHistoryNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		_, err := svc.Append(ctx, "session-1", "gpt-4o", models.RoleUser, content, nil)
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, "session-1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "three", history[0].Content)
	require.Equal(t, "two", history[1].Content)
}

func TestHistoryUnknownSession(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.History(context.Background(), "no-such-session", 10)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeleteConversation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Append(ctx, "session-1", "gpt-4o", models.RoleUser, "hello", nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteConversation(ctx, "session-1"))

	_, err = svc.History(ctx, "session-1", 10)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRecordUsageWithoutPublisher(t *testing.T) {
	svc := newTestService(t)

	rec, err := svc.RecordUsage(context.Background(), "gpt-4o", 128, 0.92)
	require.NoError(t, err)
	require.Positive(t, rec.ID)
	require.False(t, rec.Timestamp.IsZero())
}
