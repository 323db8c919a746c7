package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/hetulpatel/intellichat/internal/config"
	"github.com/hetulpatel/intellichat/internal/logging"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	threshold := int64(config.Int("LOG_ARCHIVE_THRESHOLD_MB", 50)) * 1024 * 1024
	archived, err := logging.ArchiveLogs(cfg.LogsDir, threshold)
	if err != nil {
		log.Fatalf("archive logs: %v", err)
	}
	if len(archived) == 0 {
		log.Printf("no log files above threshold in %s", cfg.LogsDir)
		return
	}
	for _, path := range archived {
		log.Printf("archived %s", path)
	}
}
