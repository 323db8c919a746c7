package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hetulpatel/intellichat/internal/config"
	"github.com/hetulpatel/intellichat/internal/logging"
	sqlstore "github.com/hetulpatel/intellichat/internal/storage/sqlite"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	for _, dir := range []string{cfg.DataDir, cfg.ConversationsDir, cfg.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("ensure dir %s: %v", dir, err)
		}
	}

	loggers, err := logging.New(cfg.LogsDir)
	if err != nil {
		log.Fatalf("init logging: %v", err)
	}
	defer loggers.Sync()

	store, err := sqlstore.Open(cfg.DBPath, loggers.App)
	if err != nil {
		loggers.App.Fatal("open sqlite", zap.Error(err))
	}
	defer store.Close()

	if err := store.CreateSchema(context.Background()); err != nil {
		loggers.LogException(err)
		loggers.App.Fatal("create schema", zap.Error(err))
	}
	loggers.App.Info("database initialized", zap.String("path", store.Path()))
}
