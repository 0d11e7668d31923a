package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"cfdnsbot/internal/bot"
	"cfdnsbot/internal/config"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Optional .env for local development; secrets may also live there.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("=== Cloudflare DNS Manager Bot ===")
	log.Printf("Version: %s", version)
	if cfg.Redis.Addr != "" {
		log.Printf("Session store: redis (%s)", cfg.Redis.Addr)
	} else {
		log.Println("Session store: in-memory")
	}

	if err := bot.Run(cfg, version); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
}
