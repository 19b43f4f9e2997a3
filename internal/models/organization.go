package models

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID              uuid.UUID              `json:"id"`
	Name            string                 `json:"name"`
	Mission         string                 `json:"mission"`
	AnnualBudget    float64                `json:"annual_budget"`
	FiscalYearStart string                 `json:"fiscal_year_start"` // "MM-DD"
	AddressLine1    string                 `json:"address_line1"`
	AddressLine2    string                 `json:"address_line2"`
	City            string                 `json:"city"`
	StateCode       string                 `json:"state_code"`
	PostalCode      string                 `json:"postal_code"`
	Services        []string               `json:"services"`
	CustomFields    map[string]interface{} `json:"custom_fields"`
	PlanSummary     string                 `json:"plan_summary"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	OrganizationID uuid.UUID `json:"organization_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Recommendation is an AI-scored match between an organization and an
// opportunity. Written only by the batch job, read-only over the API.
type Recommendation struct {
	ID             uuid.UUID   `json:"id"`
	OrganizationID uuid.UUID   `json:"organization_id"`
	OpportunityID  uuid.UUID   `json:"opportunity_id"`
	FitScore       float64     `json:"fit_score"`
	FitDescription string      `json:"fit_description"`
	QueryDate      time.Time   `json:"query_date"`
	Opportunity    Opportunity `json:"opportunity"`
}
