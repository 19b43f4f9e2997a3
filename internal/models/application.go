package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the lifecycle stage of a tracked grant pursuit.
type ApplicationStatus string

const (
	StatusDraft         ApplicationStatus = "DRAFT"
	StatusInProgress    ApplicationStatus = "IN_PROGRESS"
	StatusReadyToSubmit ApplicationStatus = "READY_TO_SUBMIT"
	StatusSubmitted     ApplicationStatus = "SUBMITTED"
	StatusUnderReview   ApplicationStatus = "UNDER_REVIEW"
	StatusAwarded       ApplicationStatus = "AWARDED"
	StatusRejected      ApplicationStatus = "REJECTED"
	StatusWithdrawn     ApplicationStatus = "WITHDRAWN"
)

// AllStatuses lists every status in workflow order. Any status may move to
// any other; there is no transition graph or terminal-state lock.
var AllStatuses = []ApplicationStatus{
	StatusDraft, StatusInProgress, StatusReadyToSubmit, StatusSubmitted,
	StatusUnderReview, StatusAwarded, StatusRejected, StatusWithdrawn,
}

func (s ApplicationStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ChecklistItem is one to-do entry stored in the application's JSONB checklist.
type ChecklistItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Application tracks an organization's pursuit of a grant. The opportunity
// fields are a snapshot copied at creation time; they diverge from the
// catalog row on purpose so users can correct details without touching the
// shared record.
type Application struct {
	ID             uuid.UUID         `json:"id"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	OpportunityID  *uuid.UUID        `json:"opportunity_id"` // nil for outside opportunities
	Status         ApplicationStatus `json:"status"`

	// Opportunity snapshot, editable independently of the catalog.
	Title          string     `json:"title"`
	AgencyName     string     `json:"agency_name"`
	FundingFloor   float64    `json:"funding_floor"`
	FundingCeiling float64    `json:"funding_ceiling"`
	PostedAt       *time.Time `json:"posted_at"`
	CloseAt        *time.Time `json:"close_at"`
	AttachmentsURL string     `json:"attachments_url"`

	Checklist []ChecklistItem `json:"checklist"`
	Notes     string          `json:"notes"`
	FolderID  *uuid.UUID      `json:"folder_id"`
	DeletedAt *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ApplicationSummary is the reduced shape returned inside a 409 duplicate
// conflict so clients can offer "view existing" instead of a generic error.
type ApplicationSummary struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}
