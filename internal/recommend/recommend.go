// Package recommend scores grant opportunities against an organization's
// profile and stores the results. Scoring runs as a single background job per
// organization; clients get a 202 and poll for completion.
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openfund/grantdesk/internal/agent"
	"github.com/openfund/grantdesk/internal/ai"
	"github.com/openfund/grantdesk/internal/db"
	"github.com/openfund/grantdesk/internal/models"
)

// candidateLimit caps how many vector matches get scored per run. Each one
// costs a model call.
const candidateLimit = 10

type JobStatus struct {
	Running   bool       `json:"running"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	Done      int        `json:"done"`
	Total     int        `json:"total"`
	LastError string     `json:"lastError,omitempty"`
}

type job struct {
	startedAt time.Time
	done      int
	total     int
}

type Service struct {
	AI    *ai.Client
	Store *db.Store

	mu      sync.Mutex
	jobs    map[uuid.UUID]*job
	lastErr map[uuid.UUID]string
}

func NewService(aiClient *ai.Client, store *db.Store) *Service {
	return &Service{
		AI:      aiClient,
		Store:   store,
		jobs:    make(map[uuid.UUID]*job),
		lastErr: make(map[uuid.UUID]string),
	}
}

// Start launches a scoring run for the organization. It returns false if a
// run is already in flight, in which case the caller should report the
// existing job instead of starting another.
func (s *Service) Start(orgID uuid.UUID) bool {
	s.mu.Lock()
	if _, busy := s.jobs[orgID]; busy {
		s.mu.Unlock()
		return false
	}
	s.jobs[orgID] = &job{startedAt: time.Now()}
	delete(s.lastErr, orgID)
	s.mu.Unlock()

	go s.run(orgID)
	return true
}

// Status reports the in-flight job for the organization, if any.
func (s *Service) Status(orgID uuid.UUID) JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[orgID]
	if !ok {
		return JobStatus{Running: false, LastError: s.lastErr[orgID]}
	}
	started := j.startedAt
	return JobStatus{Running: true, StartedAt: &started, Done: j.done, Total: j.total}
}

func (s *Service) run(orgID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	err := s.score(ctx, orgID)

	s.mu.Lock()
	delete(s.jobs, orgID)
	if err != nil {
		s.lastErr[orgID] = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		log.Printf("recommendation run failed for org %s: %v", orgID, err)
	}
}

func (s *Service) score(ctx context.Context, orgID uuid.UUID) error {
	org, err := s.Store.GetOrganization(ctx, orgID)
	if err != nil {
		return fmt.Errorf("loading organization: %w", err)
	}
	if strings.TrimSpace(org.Mission) == "" {
		return fmt.Errorf("organization has no mission statement to match against")
	}

	emb, err := s.AI.GenerateEmbedding(ctx, profileText(org))
	if err != nil {
		return fmt.Errorf("embedding profile: %w", err)
	}

	candidates, err := s.Store.SearchOpportunitiesByEmbedding(ctx, db.VectorSearchParams{
		Embedding: emb,
		Limit:     candidateLimit,
	})
	if err != nil {
		return fmt.Errorf("finding candidates: %w", err)
	}

	s.mu.Lock()
	if j, ok := s.jobs[orgID]; ok {
		j.total = len(candidates)
	}
	s.mu.Unlock()

	queryDate := time.Now()
	for i, opp := range candidates {
		fit, err := s.scoreOne(ctx, org, &opp)
		if err != nil {
			log.Printf("scoring %s failed: %v", opp.ID, err)
			continue
		}
		rec := models.Recommendation{
			OrganizationID: orgID,
			OpportunityID:  opp.ID,
			FitScore:       float64(fit.Score),
			FitDescription: fit.Description,
			QueryDate:      queryDate,
		}
		if err := s.Store.InsertRecommendation(ctx, rec); err != nil {
			log.Printf("storing recommendation for %s failed: %v", opp.ID, err)
		}

		s.mu.Lock()
		if j, ok := s.jobs[orgID]; ok {
			j.done = i + 1
		}
		s.mu.Unlock()
	}
	return nil
}

type fitResult struct {
	Score       int    `json:"fit_score"`
	Description string `json:"fit_description"`
}

func (s *Service) scoreOne(ctx context.Context, org *models.Organization, opp *models.Opportunity) (*fitResult, error) {
	prompt := agent.GrantsPrompt(org) + "\n\n" + opportunityBlock(opp)
	raw, err := s.AI.GenerateCompletion(ctx, prompt, true)
	if err != nil {
		return nil, err
	}
	var fit fitResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &fit); err != nil {
		return nil, fmt.Errorf("unexpected fit JSON: %w", err)
	}
	if fit.Score < 0 {
		fit.Score = 0
	}
	if fit.Score > 100 {
		fit.Score = 100
	}
	return &fit, nil
}

func opportunityBlock(opp *models.Opportunity) string {
	var b strings.Builder
	b.WriteString("## Opportunity\n")
	fmt.Fprintf(&b, "Title: %s\n", opp.Title)
	if opp.AgencyName != "" {
		fmt.Fprintf(&b, "Agency: %s\n", opp.AgencyName)
	}
	if opp.FundingCeiling > 0 {
		fmt.Fprintf(&b, "Award range: %.0f to %.0f %s\n", opp.FundingFloor, opp.FundingCeiling, opp.Currency)
	}
	if opp.CloseAt != nil {
		fmt.Fprintf(&b, "Closes: %s\n", opp.CloseAt.Format("2006-01-02"))
	}
	if len(opp.Eligibility) > 0 {
		fmt.Fprintf(&b, "Eligibility: %s\n", strings.Join(opp.Eligibility, ", "))
	}
	summary := opp.Summary
	if summary == "" {
		summary = opp.Description
	}
	if len(summary) > 3000 {
		summary = summary[:3000]
	}
	if summary != "" {
		fmt.Fprintf(&b, "\n%s\n", summary)
	}
	return b.String()
}

func profileText(org *models.Organization) string {
	var parts []string
	parts = append(parts, org.Mission)
	if len(org.Services) > 0 {
		parts = append(parts, "Services: "+strings.Join(org.Services, ", "))
	}
	if org.PlanSummary != "" {
		parts = append(parts, org.PlanSummary)
	}
	return strings.Join(parts, "\n")
}
