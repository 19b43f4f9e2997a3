package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/openfund/grantdesk/internal/models"
)

const organizationCols = `id, name, mission, annual_budget, fiscal_year_start,
	address_line1, address_line2, city, state_code, postal_code, services,
	custom_fields, plan_summary, created_at, updated_at`

func scanOrganization(scan func(dest ...interface{}) error) (models.Organization, error) {
	var org models.Organization
	var customRaw []byte

	err := scan(
		&org.ID, &org.Name, &org.Mission, &org.AnnualBudget, &org.FiscalYearStart,
		&org.AddressLine1, &org.AddressLine2, &org.City, &org.StateCode, &org.PostalCode,
		&org.Services, &customRaw, &org.PlanSummary, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return org, err
	}

	org.CustomFields = map[string]interface{}{}
	if len(customRaw) > 0 {
		_ = json.Unmarshal(customRaw, &org.CustomFields)
	}
	return org, nil
}

func (s *Store) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM organizations WHERE id = $1", organizationCols), id)
	org, err := scanOrganization(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("not found: %w", err)
	}
	return &org, nil
}

type OrganizationUpdate struct {
	Name            *string                `json:"name"`
	Mission         *string                `json:"mission"`
	AnnualBudget    *float64               `json:"annual_budget"`
	FiscalYearStart *string                `json:"fiscal_year_start"`
	AddressLine1    *string                `json:"address_line1"`
	AddressLine2    *string                `json:"address_line2"`
	City            *string                `json:"city"`
	StateCode       *string                `json:"state_code"`
	PostalCode      *string                `json:"postal_code"`
	Services        []string               `json:"services"`
	CustomFields    map[string]interface{} `json:"custom_fields"`
}

// UpdateOrganization writes only the fields present in the request.
// Organizations are never deleted through this code path.
func (s *Store) UpdateOrganization(ctx context.Context, id uuid.UUID, u OrganizationUpdate) (*models.Organization, error) {
	set := "updated_at = NOW()"
	args := []interface{}{id}
	argIdx := 2

	apply := func(col string, v interface{}) {
		set += fmt.Sprintf(", %s = $%d", col, argIdx)
		args = append(args, v)
		argIdx++
	}

	if u.Name != nil {
		apply("name", *u.Name)
	}
	if u.Mission != nil {
		apply("mission", *u.Mission)
	}
	if u.AnnualBudget != nil {
		apply("annual_budget", *u.AnnualBudget)
	}
	if u.FiscalYearStart != nil {
		apply("fiscal_year_start", *u.FiscalYearStart)
	}
	if u.AddressLine1 != nil {
		apply("address_line1", *u.AddressLine1)
	}
	if u.AddressLine2 != nil {
		apply("address_line2", *u.AddressLine2)
	}
	if u.City != nil {
		apply("city", *u.City)
	}
	if u.StateCode != nil {
		apply("state_code", *u.StateCode)
	}
	if u.PostalCode != nil {
		apply("postal_code", *u.PostalCode)
	}
	if u.Services != nil {
		apply("services", u.Services)
	}
	if u.CustomFields != nil {
		raw, err := json.Marshal(u.CustomFields)
		if err != nil {
			return nil, fmt.Errorf("custom fields encode failed: %w", err)
		}
		apply("custom_fields", raw)
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(
		"UPDATE organizations SET %s WHERE id = $1 RETURNING %s", set, organizationCols), args...)

	org, err := scanOrganization(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("update failed: %w", err)
	}
	return &org, nil
}

func (s *Store) SetPlanSummary(ctx context.Context, id uuid.UUID, summary string) error {
	_, err := s.pool.Exec(ctx,
		"UPDATE organizations SET plan_summary = $2, updated_at = NOW() WHERE id = $1", id, summary)
	return err
}
