package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/hetulpatel/intellichat/internal/models"
)

// RecordUsage appends a model_usage row and fills in its ID and timestamp.
func (s *Store) RecordUsage(ctx context.Context, rec *models.UsageRecord) error {
	const query = `
	INSERT INTO model_usage (model_name, tokens_used, response_time)
	VALUES (?, ?, ?)
	RETURNING id, timestamp`

	var ts string
	err := s.db.QueryRowContext(ctx, query, rec.ModelName, rec.TokensUsed, rec.ResponseTime).
		Scan(&rec.ID, &ts)
	if err != nil {
		return err
	}
	rec.Timestamp = parseTimestamp(ts)
	return nil
}

// ModelCount pairs a model name with how many conversations used it.
type ModelCount struct {
	ModelName     string
	Conversations int64
}

// ConversationsByModel groups conversations by model, busiest first.
func (s *Store) ConversationsByModel(ctx context.Context) ([]ModelCount, error) {
	const query = `
	SELECT model_name, COUNT(*) AS usage_count
	FROM conversations
	GROUP BY model_name
	ORDER BY usage_count DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]ModelCount, 0)
	for rows.Next() {
		var mc ModelCount
		if err := rows.Scan(&mc.ModelName, &mc.Conversations); err != nil {
			return nil, err
		}
		counts = append(counts, mc)
	}
	return counts, rows.Err()
}

// ConversationDateRange returns the first and last conversation creation
// times. ok is false when there are no conversations.
func (s *Store) ConversationDateRange(ctx context.Context) (first, last time.Time, ok bool, err error) {
	var minRaw, maxRaw sql.NullString
	err = s.db.QueryRowContext(ctx, "SELECT MIN(created_at), MAX(created_at) FROM conversations").
		Scan(&minRaw, &maxRaw)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if !minRaw.Valid || !maxRaw.Valid {
		return time.Time{}, time.Time{}, false, nil
	}
	return parseTimestamp(minRaw.String), parseTimestamp(maxRaw.String), true, nil
}
