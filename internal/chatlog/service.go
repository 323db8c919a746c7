package chatlog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/hetulpatel/intellichat/internal/cache"
	"github.com/hetulpatel/intellichat/internal/config"
	"github.com/hetulpatel/intellichat/internal/kafka"
	"github.com/hetulpatel/intellichat/internal/models"
	"github.com/hetulpatel/intellichat/internal/queue"
	sqlstore "github.com/hetulpatel/intellichat/internal/storage/sqlite"
)

// Service is the persistence entry point the application talks to. Cache and
// usage writer are optional; passing nil disables them.
type Service struct {
	store     *sqlstore.Store
	cache     cache.HistoryCache
	writer    *kafkago.Writer
	log       *zap.Logger
	ownsStore bool
}

func New(store *sqlstore.Store, hc cache.HistoryCache, writer *kafkago.Writer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, cache: hc, writer: writer, log: log}
}

// Open builds a Service from configuration: it opens the database, ensures
// the schema, and attaches the history cache and usage publisher when their
// backends are configured. The returned Service owns the store.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}

	store, err := sqlstore.Open(cfg.DBPath, log)
	if err != nil {
		return nil, err
	}
	if err := store.CreateSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}

	var hc cache.HistoryCache
	if cfg.RedisAddr != "" {
		hc, err = cache.NewRedisHistoryCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.HistoryTTL, "chat_history")
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	var writer *kafkago.Writer
	if len(cfg.KafkaBrokers) > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := kafka.WaitForBroker(waitCtx, cfg.KafkaBrokers)
		cancel()
		if err != nil {
			log.Warn("usage publishing disabled", zap.Error(err))
		} else {
			ensureCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := kafka.EnsureTopic(ensureCtx, cfg.KafkaBrokers, cfg.UsageTopic); err != nil {
				log.Warn("ensure usage topic", zap.Error(err))
			}
			cancel()
			writer = kafka.NewWriter(cfg.KafkaBrokers, cfg.UsageTopic)
		}
	}

	svc := New(store, hc, writer, log)
	svc.ownsStore = true
	return svc, nil
}

// Append stores one message under the session, creating the conversation on
// the session's first message.
func (s *Service) Append(ctx context.Context, sessionID, modelName string, role models.Role, content string, tokenCount *int64) (*models.Message, error) {
	conv, err := s.store.ConversationBySession(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		conv, err = s.store.CreateConversation(ctx, sessionID, modelName, "")
	}
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		Role:           role,
		Content:        content,
		TokenCount:     tokenCount,
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sessionID); err != nil {
			s.log.Warn("invalidate history cache", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return msg, nil
}

// History returns the most recent messages of a session, newest first,
// served from the cache when possible.
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	if s.cache != nil {
		messages, ok, err := s.cache.Get(ctx, sessionID, limit)
		if err != nil {
			s.log.Warn("read history cache", zap.String("session_id", sessionID), zap.Error(err))
		} else if ok {
			return messages, nil
		}
	}

	conv, err := s.store.ConversationBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	messages, err := s.store.ConversationHistory(ctx, conv.ID, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, sessionID, limit, messages); err != nil {
			s.log.Warn("write history cache", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return messages, nil
}

// DeleteConversation removes a session and its messages, dropping any cached
// history.
func (s *Service) DeleteConversation(ctx context.Context, sessionID string) error {
	conv, err := s.store.ConversationBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteConversation(ctx, conv.ID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sessionID); err != nil {
			s.log.Warn("invalidate history cache", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return nil
}

// RecordUsage persists a usage row, then publishes the event. Publish
// failures are logged, never fatal: the row is already durable.
func (s *Service) RecordUsage(ctx context.Context, modelName string, tokensUsed int64, responseTime float64) (*models.UsageRecord, error) {
	rec := &models.UsageRecord{
		ModelName:    modelName,
		TokensUsed:   tokensUsed,
		ResponseTime: responseTime,
	}
	if err := s.store.RecordUsage(ctx, rec); err != nil {
		return nil, err
	}

	if err := queue.PublishUsage(ctx, s.writer, rec); err != nil {
		s.log.Warn("publish usage event", zap.String("model", modelName), zap.Error(err))
	}
	return rec, nil
}

// Close releases the cache and writer, and the store too when the Service
// was built with Open.
func (s *Service) Close() error {
	var firstErr error
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			firstErr = err
		}
	}
	if s.writer != nil {
		if err := s.writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.ownsStore {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
