package main

import (
	"context"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/openfund/grantdesk/internal/config"
	"github.com/openfund/grantdesk/internal/db"
)

// Quick sanity check of the database after migrations or seeding.
func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	counts := map[string]string{
		"opportunities":       "SELECT count(*) FROM opportunities",
		"with embeddings":     "SELECT count(*) FROM opportunities WHERE embedding IS NOT NULL",
		"organizations":       "SELECT count(*) FROM organizations",
		"users":               "SELECT count(*) FROM users",
		"applications (live)": "SELECT count(*) FROM applications WHERE deleted_at IS NULL",
		"documents":           "SELECT count(*) FROM documents",
		"kb chunks":           "SELECT count(*) FROM kb_chunks",
		"recommendations":     "SELECT count(*) FROM recommendations",
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Table", "Rows"})

	for _, name := range []string{
		"opportunities", "with embeddings", "organizations", "users",
		"applications (live)", "documents", "kb chunks", "recommendations",
	} {
		var n int
		if err := pool.QueryRow(ctx, counts[name]).Scan(&n); err != nil {
			log.Fatalf("Query failed for %s: %v", name, err)
		}
		t.AppendRow(table.Row{name, n})
	}
	t.Render()
}
