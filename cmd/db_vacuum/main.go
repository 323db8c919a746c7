package main

import (
	"context"
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

	if err := store.Vacuum(context.Background()); err != nil {
		log.Fatalf("vacuum: %v", err)
	}
	log.Printf("VACUUM completed on %s", store.Path())
}
