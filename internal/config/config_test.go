package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8082" {
		t.Errorf("expected default port 8082, got %s", cfg.Server.Port)
	}
	if cfg.AI.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("unexpected embedding model: %s", cfg.AI.EmbeddingModel)
	}
	if cfg.Storage.Bucket != "grantdesk-documents" {
		t.Errorf("unexpected bucket: %s", cfg.Storage.Bucket)
	}
	if cfg.Database.URL == "" {
		t.Error("expected a default database URL")
	}
}

func TestLoadDatabaseURLFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/grants")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.URL != "postgres://u:p@db:5432/grants" {
		t.Errorf("expected env database URL, got %s", cfg.Database.URL)
	}
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: \"9001\"\nai:\n  chat_model: gpt-4o\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "9002")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "9002" {
		t.Errorf("env must override yaml, got %s", cfg.Server.Port)
	}
	if cfg.AI.ChatModel != "gpt-4o" {
		t.Errorf("expected yaml chat model, got %s", cfg.AI.ChatModel)
	}
	if cfg.AI.APIKey != "sk-test" {
		t.Errorf("expected api key from env, got %s", cfg.AI.APIKey)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
