package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/avolkov/wardrobe/internal/server"
	"github.com/avolkov/wardrobe/internal/server/config"
)

func main() {

	// missing .env is fine, the environment may be set by the host
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
