// Package checklist generates application task checklists with the hosted
// model and persists them on the application row.
package checklist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/openfund/grantdesk/internal/ai"
	"github.com/openfund/grantdesk/internal/db"
	"github.com/openfund/grantdesk/internal/models"
)

type Generator struct {
	AI    *ai.Client
	Store *db.Store
}

// Generate builds a checklist for the application's opportunity and writes it
// in one update. Callers usually run this in a background goroutine after
// creating the application; clients poll the checklist endpoint until items
// appear.
func (g *Generator) Generate(ctx context.Context, orgID, appID uuid.UUID) error {
	app, err := g.Store.GetApplication(ctx, orgID, appID)
	if err != nil {
		return fmt.Errorf("loading application: %w", err)
	}

	description := ""
	if app.OpportunityID != nil {
		if opp, err := g.Store.GetOpportunity(ctx, app.OpportunityID.String()); err == nil {
			description = opp.Summary
			if description == "" {
				description = opp.Description
			}
		}
	}

	prompt := buildPrompt(app, description)
	raw, err := g.AI.GenerateCompletion(ctx, prompt, true)
	if err != nil {
		return fmt.Errorf("generating checklist: %w", err)
	}

	items, err := ParseItems(raw)
	if err != nil {
		return fmt.Errorf("parsing checklist: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("model produced an empty checklist")
	}
	return g.Store.SetChecklist(ctx, appID, items)
}

func buildPrompt(app *models.Application, description string) string {
	var b strings.Builder
	b.WriteString("You are a grant-writing assistant. Produce a task checklist for preparing this grant application.\n\n")
	fmt.Fprintf(&b, "Grant: %s\n", app.Title)
	if app.AgencyName != "" {
		fmt.Fprintf(&b, "Agency: %s\n", app.AgencyName)
	}
	if app.CloseAt != nil {
		fmt.Fprintf(&b, "Deadline: %s\n", app.CloseAt.Format("2006-01-02"))
	}
	if description != "" {
		if len(description) > 4000 {
			description = description[:4000]
		}
		fmt.Fprintf(&b, "\nDescription:\n%s\n", description)
	}
	b.WriteString(`
Respond with JSON only, in this exact shape:
{"items": [{"text": "task description"}, ...]}

Produce 6 to 12 concrete, actionable tasks in the order they should be done. Include document gathering, narrative drafting, budget preparation, review, and submission steps as appropriate.`)
	return b.String()
}

// ParseItems decodes the model's JSON into checklist items with fresh IDs and
// Completed set to false. It tolerates a bare array as well as the documented
// {"items": [...]} wrapper.
func ParseItems(raw string) ([]models.ChecklistItem, error) {
	raw = strings.TrimSpace(raw)

	type item struct {
		Text string `json:"text"`
	}
	var wrapper struct {
		Items []item `json:"items"`
	}
	var list []item

	if err := json.Unmarshal([]byte(raw), &wrapper); err == nil && len(wrapper.Items) > 0 {
		list = wrapper.Items
	} else if err := json.Unmarshal([]byte(raw), &list); err != nil && len(wrapper.Items) == 0 {
		return nil, fmt.Errorf("unexpected checklist JSON: %w", err)
	}

	items := make([]models.ChecklistItem, 0, len(list))
	for _, it := range list {
		text := strings.TrimSpace(it.Text)
		if text == "" {
			continue
		}
		items = append(items, models.ChecklistItem{
			ID:        uuid.NewString(),
			Text:      text,
			Completed: false,
		})
	}
	return items, nil
}
