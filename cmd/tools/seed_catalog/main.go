// Seeds the opportunity catalog with sample grants and backfills embeddings
// for any rows missing them. Safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/openfund/grantdesk/internal/ai"
	"github.com/openfund/grantdesk/internal/config"
	"github.com/openfund/grantdesk/internal/db"
	"github.com/openfund/grantdesk/internal/models"
)

func main() {
	skipSeed := flag.Bool("embeddings-only", false, "only backfill embeddings")
	batch := flag.Int("batch", 50, "embedding backfill batch size")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
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

	store := db.NewStore(pool)

	if !*skipSeed {
		for _, o := range sampleOpportunities() {
			if err := store.UpsertOpportunity(ctx, o); err != nil {
				log.Fatalf("Seeding %q failed: %v", o.Title, err)
			}
		}
		log.Printf("Seeded %d opportunities", len(sampleOpportunities()))
	}

	aiClient, err := ai.NewClient(cfg.AI.APIKey, cfg.AI.ChatModel, cfg.AI.EmbeddingModel)
	if err != nil {
		log.Printf("Skipping embedding backfill: %v", err)
		return
	}

	backfilled := 0
	for {
		missing, err := store.OpportunitiesMissingEmbedding(ctx, *batch)
		if err != nil {
			log.Fatalf("Lookup failed: %v", err)
		}
		if len(missing) == 0 {
			break
		}
		for id, text := range missing {
			vec, err := aiClient.GenerateEmbedding(ctx, text)
			if err != nil {
				log.Fatalf("Embedding failed for %s: %v", id, err)
			}
			if err := store.UpdateOpportunityEmbedding(ctx, id, vec); err != nil {
				log.Fatalf("Update failed for %s: %v", id, err)
			}
			backfilled++
		}
	}
	log.Printf("Backfilled %d embeddings", backfilled)
}

func sampleOpportunities() []models.Opportunity {
	date := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	return []models.Opportunity{
		{
			Title:             "Community Food Security Grants",
			Summary:           "Supports nonprofits expanding food access in low-income communities, including pantries, meal delivery, and nutrition education.",
			OpportunityNumber: "USDA-CFS-2026-01",
			AgencyName:        "U.S. Department of Agriculture",
			AgencyCode:        "USDA",
			Status:            models.OppStatusPosted,
			FundingFloor:      25000,
			FundingCeiling:    400000,
			AwardCount:        40,
			Currency:          "USD",
			PostedAt:          date(2026, time.June, 1),
			CloseAt:           date(2026, time.October, 15),
			Categories:        []string{"food", "community development"},
			Eligibility:       []string{"nonprofits", "tribal organizations"},
			ExternalURL:       "https://grants.example.gov/usda-cfs-2026-01",
		},
		{
			Title:             "Youth Arts Education Program",
			Summary:           "Funds after-school and summer arts instruction for students in underserved school districts.",
			OpportunityNumber: "NEA-YAE-2026",
			AgencyName:        "National Endowment for the Arts",
			AgencyCode:        "NEA",
			Status:            models.OppStatusPosted,
			FundingFloor:      10000,
			FundingCeiling:    100000,
			AwardCount:        75,
			Currency:          "USD",
			PostedAt:          date(2026, time.May, 12),
			CloseAt:           date(2026, time.September, 30),
			Categories:        []string{"arts", "education", "youth"},
			Eligibility:       []string{"nonprofits", "school districts"},
			ExternalURL:       "https://grants.example.gov/nea-yae-2026",
		},
		{
			Title:             "Rural Health Clinic Modernization",
			Summary:           "Capital grants for rural clinics upgrading facilities, telehealth capacity, and medical equipment.",
			OpportunityNumber: "HRSA-RHC-2026-04",
			AgencyName:        "Health Resources and Services Administration",
			AgencyCode:        "HRSA",
			Status:            models.OppStatusPosted,
			FundingFloor:      100000,
			FundingCeiling:    1500000,
			AwardCount:        25,
			Currency:          "USD",
			PostedAt:          date(2026, time.July, 1),
			CloseAt:           date(2026, time.November, 20),
			StateCode:         "",
			Categories:        []string{"health", "rural", "infrastructure"},
			Eligibility:       []string{"nonprofits", "rural health clinics"},
			ExternalURL:       "https://grants.example.gov/hrsa-rhc-2026-04",
		},
		{
			Title:             "California Watershed Restoration",
			Summary:           "State funding for habitat restoration, erosion control, and water quality projects in California watersheds.",
			OpportunityNumber: "CA-WSR-2027",
			AgencyName:        "California Natural Resources Agency",
			AgencyCode:        "CNRA",
			Status:            models.OppStatusForecasted,
			FundingFloor:      50000,
			FundingCeiling:    750000,
			AwardCount:        30,
			Currency:          "USD",
			PostedAt:          date(2026, time.December, 1),
			CloseAt:           date(2027, time.March, 1),
			StateCode:         "CA",
			Categories:        []string{"environment", "water"},
			Eligibility:       []string{"nonprofits", "local governments"},
			ExternalURL:       "https://grants.example.gov/ca-wsr-2027",
		},
		{
			Title:             "Homeless Services Innovation Fund",
			Summary:           "Supports new approaches to emergency shelter, transitional housing, and supportive services for people experiencing homelessness.",
			OpportunityNumber: "HUD-HSI-2025-11",
			AgencyName:        "Department of Housing and Urban Development",
			AgencyCode:        "HUD",
			Status:            models.OppStatusClosed,
			FundingFloor:      75000,
			FundingCeiling:    500000,
			AwardCount:        20,
			Currency:          "USD",
			PostedAt:          date(2025, time.September, 1),
			CloseAt:           date(2026, time.January, 15),
			Categories:        []string{"housing", "social services"},
			Eligibility:       []string{"nonprofits"},
			ExternalURL:       "https://grants.example.gov/hud-hsi-2025-11",
		},
	}
}
