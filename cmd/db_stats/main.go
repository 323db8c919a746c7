package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/hetulpatel/intellichat/internal/config"
	sqlstore "github.com/hetulpatel/intellichat/internal/storage/sqlite"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	store, err := sqlstore.Open(cfg.DBPath, nil)
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	stats, err := store.Statistics(context.Background())
	if err != nil {
		log.Fatalf("statistics: %v", err)
	}

	fmt.Println("Database Statistics:")
	fmt.Printf("  total_conversations: %d\n", stats.Conversations)
	fmt.Printf("  total_messages: %d\n", stats.Messages)
	fmt.Printf("  total_tokens: %d\n", stats.TotalTokens)
	fmt.Printf("  db_size_bytes: %d\n", stats.SizeBytes)
	fmt.Printf("  db_size_mb: %.2f\n", stats.SizeMB())
}
