package models

import (
	"time"

	"github.com/google/uuid"
)

// OpportunityStatus values mirror the catalog source feed.
const (
	OppStatusPosted     = "posted"
	OppStatusForecasted = "forecasted"
	OppStatusClosed     = "closed"
)

type Opportunity struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	Summary           string     `json:"summary"`
	Description       string     `json:"description"` // Full HTML description
	OpportunityNumber string     `json:"opportunity_number"`
	AgencyName        string     `json:"agency_name"`
	AgencyCode        string     `json:"agency_code"`
	Status            string     `json:"status"` // posted, forecasted, closed
	FundingFloor      float64    `json:"funding_floor"`
	FundingCeiling    float64    `json:"funding_ceiling"`
	AwardCount        int        `json:"award_count"`
	Currency          string     `json:"currency"`
	PostedAt          *time.Time `json:"posted_at"`
	CloseAt           *time.Time `json:"close_at"`
	StateCode         string     `json:"state_code"`
	Categories        []string   `json:"categories"`
	Eligibility       []string   `json:"eligibility"`
	ExternalURL       string     `json:"external_url"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
