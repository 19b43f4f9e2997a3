package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openfund/grantdesk/internal/models"
	"github.com/pgvector/pgvector-go"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type ListParams struct {
	Query          string
	QueryEmbedding []float32
	Status         string // "posted" (default), "forecasted", "closed", or "all"
	StateCode      string
	AgencyName     []string
	MinAmount      float64
	MaxAmount      float64
	CloseDays      int // only opportunities closing within N days
	Categories     []string
	SortBy         string
	Limit          int
	Offset         int
}

type ListResult struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Total         int                  `json:"total"`
	Limit         int                  `json:"limit"`
	Offset        int                  `json:"offset"`
}

// selectCols is the column list shared by every opportunity query.
const selectCols = `id, title, summary, description_html, opportunity_number,
	agency_name, agency_code, status, funding_floor, funding_ceiling,
	award_count, currency, posted_at, close_at, state_code, categories,
	eligibility, external_url, created_at, updated_at`

func scanOpportunity(scan func(dest ...interface{}) error) (models.Opportunity, error) {
	var o models.Opportunity
	err := scan(
		&o.ID, &o.Title, &o.Summary, &o.Description, &o.OpportunityNumber,
		&o.AgencyName, &o.AgencyCode, &o.Status, &o.FundingFloor, &o.FundingCeiling,
		&o.AwardCount, &o.Currency, &o.PostedAt, &o.CloseAt, &o.StateCode, &o.Categories,
		&o.Eligibility, &o.ExternalURL, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func (s *Store) ListOpportunities(ctx context.Context, params ListParams) (*ListResult, error) {
	where, args, argIdx := buildListWhere(params)

	var total int
	countSQL := "SELECT COUNT(*) FROM opportunities " + where
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	selectSQL := fmt.Sprintf("SELECT %s FROM opportunities %s", selectCols, where)

	switch params.SortBy {
	case "close_date":
		selectSQL += " ORDER BY close_at ASC NULLS LAST"
	case "amount_desc":
		selectSQL += " ORDER BY funding_ceiling DESC NULLS LAST"
	case "newest":
		selectSQL += " ORDER BY posted_at DESC NULLS LAST, created_at DESC"
	default: // "relevance"
		if len(params.QueryEmbedding) > 0 {
			vectorArg := argIdx
			queryArg := argIdx + 1
			args = append(args, pgvector.NewVector(params.QueryEmbedding), params.Query)
			argIdx += 2

			selectSQL += fmt.Sprintf(`
				ORDER BY
					CASE WHEN embedding IS NULL THEN 1 ELSE 0 END ASC,
					COALESCE(1 - (embedding <=> $%d), -1) DESC,
					CASE WHEN NULLIF($%d::text, '') IS NULL THEN 0 ELSE ts_rank(search_vector, plainto_tsquery('english', $%d::text)) END DESC,
					created_at DESC
			`, vectorArg, queryArg, queryArg)
		} else if params.Query != "" {
			queryArg := argIdx
			args = append(args, params.Query)
			argIdx++
			selectSQL += fmt.Sprintf(" ORDER BY ts_rank(search_vector, plainto_tsquery('english', $%d::text)) DESC, created_at DESC", queryArg)
		} else {
			selectSQL += " ORDER BY posted_at DESC NULLS LAST, created_at DESC"
		}
	}

	selectSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var opps []models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		opps = append(opps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if opps == nil {
		opps = []models.Opportunity{}
	}

	return &ListResult{
		Opportunities: opps,
		Total:         total,
		Limit:         params.Limit,
		Offset:        params.Offset,
	}, nil
}

func buildListWhere(params ListParams) (string, []interface{}, int) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.Query != "" {
		where += fmt.Sprintf(" AND (search_vector @@ plainto_tsquery('english', $%d) OR title ILIKE '%%' || $%d || '%%')", argIdx, argIdx)
		args = append(args, params.Query)
		argIdx++
	}

	status := params.Status
	if status == "" {
		status = models.OppStatusPosted
	}
	if status != "all" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	if params.StateCode != "" {
		where += fmt.Sprintf(" AND state_code = $%d", argIdx)
		args = append(args, params.StateCode)
		argIdx++
	}
	if len(params.AgencyName) > 0 {
		where += fmt.Sprintf(" AND agency_name = ANY($%d)", argIdx)
		args = append(args, params.AgencyName)
		argIdx++
	}
	if params.MinAmount > 0 {
		where += fmt.Sprintf(" AND funding_ceiling >= $%d", argIdx)
		args = append(args, params.MinAmount)
		argIdx++
	}
	if params.MaxAmount > 0 {
		where += fmt.Sprintf(" AND funding_floor <= $%d", argIdx)
		args = append(args, params.MaxAmount)
		argIdx++
	}
	if params.CloseDays > 0 {
		where += fmt.Sprintf(" AND close_at IS NOT NULL AND close_at >= NOW() AND close_at <= NOW() + ($%d * INTERVAL '1 day')", argIdx)
		args = append(args, params.CloseDays)
		argIdx++
	}
	if cats := sanitizeStringSlice(params.Categories); len(cats) > 0 {
		where += fmt.Sprintf(" AND categories && $%d", argIdx)
		args = append(args, cats)
		argIdx++
	}

	return where, args, argIdx
}

// prefixCols qualifies every column in a comma-separated list with a table
// alias, for joins that reuse selectCols.
func prefixCols(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func sanitizeStringSlice(values []string) []string {
	if len(values) == 0 {
		return values
	}

	clean := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			clean = append(clean, trimmed)
		}
	}

	return clean
}

func (s *Store) GetOpportunity(ctx context.Context, id string) (*models.Opportunity, error) {
	sql := fmt.Sprintf("SELECT %s FROM opportunities WHERE id = $1", selectCols)
	row := s.pool.QueryRow(ctx, sql, id)

	o, err := scanOpportunity(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("not found: %w", err)
	}

	return &o, nil
}

type VectorSearchParams struct {
	Embedding  []float32
	StateCode  string
	Status     string
	Categories []string
	Limit      int
}

// SearchOpportunitiesByEmbedding runs a pure similarity search over the
// catalog with an optional metadata filter. Ranking is entirely cosine
// distance; keyword relevance is ListOpportunities' job.
func (s *Store) SearchOpportunitiesByEmbedding(ctx context.Context, params VectorSearchParams) ([]models.Opportunity, error) {
	where := "WHERE embedding IS NOT NULL"
	args := []interface{}{pgvector.NewVector(params.Embedding)}
	argIdx := 2

	if params.StateCode != "" {
		where += fmt.Sprintf(" AND state_code = $%d", argIdx)
		args = append(args, params.StateCode)
		argIdx++
	}
	if params.Status != "" && params.Status != "all" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, params.Status)
		argIdx++
	}
	if cats := sanitizeStringSlice(params.Categories); len(cats) > 0 {
		where += fmt.Sprintf(" AND categories && $%d", argIdx)
		args = append(args, cats)
		argIdx++
	}

	limit := params.Limit
	if limit <= 0 || limit > 10 {
		limit = 10
	}
	args = append(args, limit)

	sql := fmt.Sprintf("SELECT %s FROM opportunities %s ORDER BY embedding <=> $1 LIMIT $%d",
		selectCols, where, argIdx)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	opps := []models.Opportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		opps = append(opps, o)
	}
	return opps, rows.Err()
}

// UpsertOpportunity writes one catalog row keyed by external URL. Used by the
// seeding tool; the catalog itself is maintained outside this service.
func (s *Store) UpsertOpportunity(ctx context.Context, o models.Opportunity) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO opportunities (
			title, summary, description_html, opportunity_number, agency_name,
			agency_code, status, funding_floor, funding_ceiling, award_count,
			currency, posted_at, close_at, state_code, categories, eligibility, external_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (external_url) DO UPDATE SET
			updated_at = NOW(),
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			status = EXCLUDED.status,
			funding_floor = EXCLUDED.funding_floor,
			funding_ceiling = EXCLUDED.funding_ceiling,
			close_at = EXCLUDED.close_at
	`, o.Title, o.Summary, o.Description, o.OpportunityNumber, o.AgencyName,
		o.AgencyCode, o.Status, o.FundingFloor, o.FundingCeiling, o.AwardCount,
		o.Currency, o.PostedAt, o.CloseAt, o.StateCode, o.Categories, o.Eligibility, o.ExternalURL)
	return err
}

func (s *Store) UpdateOpportunityEmbedding(ctx context.Context, id string, embedding []float32) error {
	_, err := s.pool.Exec(ctx, "UPDATE opportunities SET embedding = $2, updated_at = NOW() WHERE id = $1",
		id, pgvector.NewVector(embedding))
	return err
}

// OpportunitiesMissingEmbedding returns id + embed-input text for catalog rows
// without a vector yet.
func (s *Store) OpportunitiesMissingEmbedding(ctx context.Context, limit int) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, title || ' ' || summary
		FROM opportunities
		WHERE embedding IS NULL
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := make(map[string]string)
	for rows.Next() {
		var id, text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, err
		}
		pending[id] = text
	}
	return pending, rows.Err()
}

func (s *Store) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var total int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities").Scan(&total)
	stats["total"] = total

	var embedded int
	s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM opportunities WHERE embedding IS NOT NULL").Scan(&embedded)
	stats["embedded"] = embedded

	statusCounts := map[string]int{}
	rows, err := s.pool.Query(ctx, "SELECT status, COUNT(*) FROM opportunities GROUP BY status")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var status string
			var count int
			if scanErr := rows.Scan(&status, &count); scanErr == nil {
				statusCounts[status] = count
			}
		}
	}
	stats["status_counts"] = statusCounts

	return stats, nil
}

func decodeChecklist(raw []byte) []models.ChecklistItem {
	items := []models.ChecklistItem{}
	if len(raw) == 0 {
		return items
	}
	_ = json.Unmarshal(raw, &items)
	return items
}
