package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/openfund/grantdesk/internal/api"
	"github.com/openfund/grantdesk/internal/config"
	"github.com/openfund/grantdesk/internal/db"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	srv := api.NewServer(pool, cfg)
	if srv.Storage != nil {
		if err := srv.Storage.EnsureBucket(ctx); err != nil {
			log.Printf("Bucket setup failed, uploads will error: %v", err)
		}
	}

	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}
