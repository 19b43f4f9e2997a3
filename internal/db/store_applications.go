package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/openfund/grantdesk/internal/models"
)

// ErrDuplicateApplication signals a live application already exists for the
// (organization, opportunity) pair. Handlers translate it into the 409 shape.
var ErrDuplicateApplication = errors.New("application already exists for this opportunity")

const applicationCols = `id, organization_id, opportunity_id, status, title,
	agency_name, funding_floor, funding_ceiling, posted_at, close_at,
	attachments_url, checklist, notes, folder_id, deleted_at, created_at, updated_at`

func scanApplication(scan func(dest ...interface{}) error) (models.Application, error) {
	var a models.Application
	var checklistRaw []byte

	err := scan(
		&a.ID, &a.OrganizationID, &a.OpportunityID, &a.Status, &a.Title,
		&a.AgencyName, &a.FundingFloor, &a.FundingCeiling, &a.PostedAt, &a.CloseAt,
		&a.AttachmentsURL, &checklistRaw, &a.Notes, &a.FolderID, &a.DeletedAt,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return a, err
	}

	a.Checklist = decodeChecklist(checklistRaw)
	return a, nil
}

type CreateApplicationParams struct {
	OrganizationID uuid.UUID
	OpportunityID  *uuid.UUID
	Title          string
	AgencyName     string
	FundingFloor   float64
	FundingCeiling float64
	PostedAt       *time.Time
	CloseAt        *time.Time
	AttachmentsURL string
}

// FindLiveApplication returns the non-deleted application for the pair, or
// nil when none exists.
func (s *Store) FindLiveApplication(ctx context.Context, orgID, oppID uuid.UUID) (*models.ApplicationSummary, error) {
	var summary models.ApplicationSummary
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, status, created_at
		FROM applications
		WHERE organization_id = $1 AND opportunity_id = $2 AND deleted_at IS NULL
	`, orgID, oppID).Scan(&summary.ID, &summary.Title, &summary.Status, &summary.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// CreateApplication inserts a new application in DRAFT with the opportunity
// snapshot copied into the row. Returns ErrDuplicateApplication when a live
// application already covers the opportunity.
func (s *Store) CreateApplication(ctx context.Context, p CreateApplicationParams) (*models.Application, error) {
	if p.OpportunityID != nil {
		existing, err := s.FindLiveApplication(ctx, p.OrganizationID, *p.OpportunityID)
		if err != nil {
			return nil, fmt.Errorf("duplicate check failed: %w", err)
		}
		if existing != nil {
			return nil, ErrDuplicateApplication
		}
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO applications (
			organization_id, opportunity_id, status, title, agency_name,
			funding_floor, funding_ceiling, posted_at, close_at, attachments_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s
	`, applicationCols),
		p.OrganizationID, p.OpportunityID, models.StatusDraft, p.Title, p.AgencyName,
		p.FundingFloor, p.FundingCeiling, p.PostedAt, p.CloseAt, p.AttachmentsURL)

	a, err := scanApplication(row.Scan)
	if err != nil {
		// Two concurrent creates can both pass the pre-check; the partial
		// unique index catches the loser.
		if isUniqueViolation(err, "idx_applications_live_pair") {
			return nil, ErrDuplicateApplication
		}
		return nil, fmt.Errorf("insert failed: %w", err)
	}
	return &a, nil
}

// isUniqueViolation reports whether err is SQLSTATE 23505 on the named
// constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

func (s *Store) GetApplication(ctx context.Context, orgID, id uuid.UUID) (*models.Application, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM applications
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`, applicationCols), id, orgID)

	a, err := scanApplication(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("not found: %w", err)
	}
	return &a, nil
}

func (s *Store) ListApplications(ctx context.Context, orgID uuid.UUID) ([]models.Application, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM applications
		WHERE organization_id = $1 AND deleted_at IS NULL
		ORDER BY updated_at DESC
	`, applicationCols), orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		a, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// UpdateApplicationStatus sets any of the eight statuses. No transition
// graph: every status may move to every other status.
func (s *Store) UpdateApplicationStatus(ctx context.Context, orgID, id uuid.UUID, status models.ApplicationStatus) (*models.Application, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE applications SET status = $3, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		RETURNING %s
	`, applicationCols), id, orgID, status)

	a, err := scanApplication(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("status update failed: %w", err)
	}
	return &a, nil
}

type SnapshotUpdate struct {
	Title          *string    `json:"title"`
	AgencyName     *string    `json:"agency_name"`
	FundingFloor   *float64   `json:"funding_floor"`
	FundingCeiling *float64   `json:"funding_ceiling"`
	PostedAt       *time.Time `json:"posted_at"`
	CloseAt        *time.Time `json:"close_at"`
	AttachmentsURL *string    `json:"attachments_url"`
	Notes          *string    `json:"notes"`
}

// UpdateApplicationSnapshot edits the denormalized opportunity fields. Only
// non-nil fields are written; the catalog row is never touched.
func (s *Store) UpdateApplicationSnapshot(ctx context.Context, orgID, id uuid.UUID, u SnapshotUpdate) (*models.Application, error) {
	set := "updated_at = NOW()"
	var args []interface{}
	args = append(args, id, orgID)
	argIdx := 3

	apply := func(col string, v interface{}) {
		set += fmt.Sprintf(", %s = $%d", col, argIdx)
		args = append(args, v)
		argIdx++
	}

	if u.Title != nil {
		apply("title", *u.Title)
	}
	if u.AgencyName != nil {
		apply("agency_name", *u.AgencyName)
	}
	if u.FundingFloor != nil {
		apply("funding_floor", *u.FundingFloor)
	}
	if u.FundingCeiling != nil {
		apply("funding_ceiling", *u.FundingCeiling)
	}
	if u.PostedAt != nil {
		apply("posted_at", u.PostedAt)
	}
	if u.CloseAt != nil {
		apply("close_at", u.CloseAt)
	}
	if u.AttachmentsURL != nil {
		apply("attachments_url", *u.AttachmentsURL)
	}
	if u.Notes != nil {
		apply("notes", *u.Notes)
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE applications SET %s
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		RETURNING %s
	`, set, applicationCols), args...)

	a, err := scanApplication(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("snapshot update failed: %w", err)
	}
	return &a, nil
}

func (s *Store) GetChecklist(ctx context.Context, orgID, id uuid.UUID) ([]models.ChecklistItem, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT checklist FROM applications
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`, id, orgID).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("not found: %w", err)
	}
	return decodeChecklist(raw), nil
}

// SetChecklist replaces the whole checklist in one UPDATE so a concurrent
// poll never observes a partial list.
func (s *Store) SetChecklist(ctx context.Context, id uuid.UUID, items []models.ChecklistItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("checklist encode failed: %w", err)
	}
	_, err = s.pool.Exec(ctx, "UPDATE applications SET checklist = $2, updated_at = NOW() WHERE id = $1", id, raw)
	return err
}

func (s *Store) SetApplicationFolder(ctx context.Context, orgID, id, folderID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE applications SET folder_id = $3, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`, id, orgID, folderID)
	return err
}

func (s *Store) DeleteApplication(ctx context.Context, orgID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE applications SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`, id, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
