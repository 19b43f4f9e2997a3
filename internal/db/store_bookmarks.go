package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/openfund/grantdesk/internal/models"
)

// AddBookmark is idempotent: bookmarking an already-bookmarked opportunity
// is a no-op, so a client retry after a lost response cannot fail.
func (s *Store) AddBookmark(ctx context.Context, orgID, oppID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bookmarks (organization_id, opportunity_id)
		VALUES ($1, $2)
		ON CONFLICT (organization_id, opportunity_id) DO NOTHING
	`, orgID, oppID)
	return err
}

func (s *Store) RemoveBookmark(ctx context.Context, orgID, oppID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM bookmarks
		WHERE organization_id = $1 AND opportunity_id = $2
	`, orgID, oppID)
	return err
}

func (s *Store) ListBookmarks(ctx context.Context, orgID uuid.UUID) ([]models.Bookmark, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT b.id, b.organization_id, b.opportunity_id, b.created_at, %s
		FROM bookmarks b
		JOIN opportunities o ON o.id = b.opportunity_id
		WHERE b.organization_id = $1
		ORDER BY b.created_at DESC
	`, prefixCols("o", selectCols)), orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	marks := []models.Bookmark{}
	for rows.Next() {
		var b models.Bookmark
		err := rows.Scan(
			&b.ID, &b.OrganizationID, &b.OpportunityID, &b.CreatedAt,
			&b.Opportunity.ID, &b.Opportunity.Title, &b.Opportunity.Summary,
			&b.Opportunity.Description, &b.Opportunity.OpportunityNumber,
			&b.Opportunity.AgencyName, &b.Opportunity.AgencyCode, &b.Opportunity.Status,
			&b.Opportunity.FundingFloor, &b.Opportunity.FundingCeiling,
			&b.Opportunity.AwardCount, &b.Opportunity.Currency,
			&b.Opportunity.PostedAt, &b.Opportunity.CloseAt, &b.Opportunity.StateCode,
			&b.Opportunity.Categories, &b.Opportunity.Eligibility,
			&b.Opportunity.ExternalURL, &b.Opportunity.CreatedAt, &b.Opportunity.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		marks = append(marks, b)
	}
	return marks, rows.Err()
}
