package search

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openfund/grantdesk/internal/models"
)

func TestMapResults(t *testing.T) {
	closeAt := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	opps := []models.Opportunity{
		{
			ID:             uuid.New(),
			Title:          "Rural Health Outreach",
			AgencyName:     "HRSA",
			Status:         models.OppStatusPosted,
			FundingFloor:   50000,
			FundingCeiling: 250000,
			CloseAt:        &closeAt,
			StateCode:      "MT",
			Categories:     []string{"Health"},
			ExternalURL:    "https://example.org/grants/1",
		},
		{
			ID:    uuid.New(),
			Title: "No deadline grant",
		},
	}

	results := mapResults(opps)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].CloseAt != "2026-10-01" {
		t.Errorf("expected formatted close date, got %q", results[0].CloseAt)
	}
	if results[0].ID != opps[0].ID.String() {
		t.Errorf("id mismatch: %s", results[0].ID)
	}
	if results[1].CloseAt != "" {
		t.Errorf("nil close date must map to empty string, got %q", results[1].CloseAt)
	}
}

func TestMapResultsEmpty(t *testing.T) {
	results := mapResults(nil)
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", results)
	}
}
