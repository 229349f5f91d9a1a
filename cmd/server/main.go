package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/agenthands/contactmerge/internal/app"
	"github.com/agenthands/contactmerge/internal/config"
	"github.com/agenthands/contactmerge/internal/logger"
	"github.com/agenthands/contactmerge/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	l := logger.NewLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Output: os.Stderr,
		JSON:   cfg.Log.JSON,
	})

	ctx := context.Background()
	services, err := app.Connect(ctx, cfg, l)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer services.Close(ctx)

	r := server.NewServer(services).SetupRouter()

	l.Info("Starting server", "port", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}
