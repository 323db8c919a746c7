package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/hetulpatel/intellichat/internal/config"
	"github.com/hetulpatel/intellichat/internal/integrity"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	checker := integrity.New(cfg, os.Stdout)
	if !checker.Run(context.Background()) {
		os.Exit(1)
	}
}
