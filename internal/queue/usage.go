package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/intellichat/internal/models"
)

// PublishUsage emits one usage event per recorded model invocation. A nil
// writer means publishing is disabled and is not an error.
func PublishUsage(ctx context.Context, writer *kafka.Writer, rec *models.UsageRecord) error {
	if writer == nil || rec == nil {
		return nil
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal usage record %d: %w", rec.ID, err)
	}
	key := fmt.Sprintf("%s-%d", rec.ModelName, rec.Timestamp.UnixNano())
	return writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: payload})
}
