package search

import (
	"context"
	"fmt"

	"github.com/openfund/grantdesk/internal/ai"
	"github.com/openfund/grantdesk/internal/db"
	"github.com/openfund/grantdesk/internal/models"
)

// Filter narrows a vector search by catalog metadata. Zero values mean no
// constraint.
type Filter struct {
	StateCode  string   `json:"state_code"`
	Status     string   `json:"status"`
	Categories []string `json:"categories"`
}

// Result is one matched catalog row in the shape the assistant's grant
// search tool reports.
type Result struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	AgencyName     string   `json:"agency_name"`
	Summary        string   `json:"summary"`
	Status         string   `json:"status"`
	FundingFloor   float64  `json:"funding_floor"`
	FundingCeiling float64  `json:"funding_ceiling"`
	CloseAt        string   `json:"close_at,omitempty"`
	StateCode      string   `json:"state_code,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	ExternalURL    string   `json:"external_url"`
}

const maxResults = 10

// Grants embeds the query and runs a filtered similarity search over the
// catalog. All indexing and distance computation lives in the database;
// this is a thin mapping layer.
func Grants(ctx context.Context, embedder ai.Embedder, store *db.Store, query string, filter Filter) ([]Result, error) {
	vec, err := embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	opps, err := store.SearchOpportunitiesByEmbedding(ctx, db.VectorSearchParams{
		Embedding:  vec,
		StateCode:  filter.StateCode,
		Status:     filter.Status,
		Categories: filter.Categories,
		Limit:      maxResults,
	})
	if err != nil {
		return nil, err
	}

	return mapResults(opps), nil
}

func mapResults(opps []models.Opportunity) []Result {
	results := make([]Result, 0, len(opps))
	for _, o := range opps {
		r := Result{
			ID:             o.ID.String(),
			Title:          o.Title,
			AgencyName:     o.AgencyName,
			Summary:        o.Summary,
			Status:         o.Status,
			FundingFloor:   o.FundingFloor,
			FundingCeiling: o.FundingCeiling,
			StateCode:      o.StateCode,
			Categories:     o.Categories,
			ExternalURL:    o.ExternalURL,
		}
		if o.CloseAt != nil {
			r.CloseAt = o.CloseAt.Format("2006-01-02")
		}
		results = append(results, r)
	}
	return results
}
