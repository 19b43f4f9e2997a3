package recommend

import (
	"strings"
	"testing"
	"time"

	"github.com/openfund/grantdesk/internal/models"
)

func TestProfileText(t *testing.T) {
	org := &models.Organization{
		Mission:     "Feed families in rural counties.",
		Services:    []string{"food pantry", "meal delivery"},
		PlanSummary: "Expanding to two new counties in 2027.",
	}
	got := profileText(org)
	for _, want := range []string{"Feed families", "food pantry, meal delivery", "Expanding to two new counties"} {
		if !strings.Contains(got, want) {
			t.Errorf("profile text missing %q:\n%s", want, got)
		}
	}
}

func TestOpportunityBlock(t *testing.T) {
	close := time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC)
	opp := &models.Opportunity{
		Title:          "Rural Food Security Grant",
		AgencyName:     "USDA",
		FundingFloor:   50000,
		FundingCeiling: 250000,
		Currency:       "USD",
		CloseAt:        &close,
		Eligibility:    []string{"nonprofits"},
		Summary:        "Supports food access programs.",
	}
	got := opportunityBlock(opp)
	for _, want := range []string{"Rural Food Security Grant", "USDA", "50000 to 250000 USD", "2026-11-30", "nonprofits", "Supports food access"} {
		if !strings.Contains(got, want) {
			t.Errorf("block missing %q:\n%s", want, got)
		}
	}
}

func TestOpportunityBlockSkipsEmpty(t *testing.T) {
	got := opportunityBlock(&models.Opportunity{Title: "Bare"})
	if strings.Contains(got, "Agency:") || strings.Contains(got, "Award range:") || strings.Contains(got, "Closes:") {
		t.Errorf("expected empty fields omitted:\n%s", got)
	}
}

func TestStatusNoJob(t *testing.T) {
	s := NewService(nil, nil)
	st := s.Status([16]byte{1})
	if st.Running {
		t.Fatal("expected no running job")
	}
}
