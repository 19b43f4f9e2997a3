package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/openfund/grantdesk/internal/ai"
	"github.com/openfund/grantdesk/internal/db"
	"github.com/openfund/grantdesk/internal/kb"
	"github.com/openfund/grantdesk/internal/search"
	"github.com/tmc/langchaingo/llms"
)

// Tool is a callable capability the assistant can invoke. Definition feeds
// the model's function-calling schema; Call executes with the raw JSON
// arguments the model produced.
type Tool interface {
	Name() string
	Definition() llms.Tool
	Call(ctx context.Context, input string) (string, error)
}

// GrantSearchTool exposes catalog vector search to the assistant.
type GrantSearchTool struct {
	Embedder ai.Embedder
	Store    *db.Store
}

type grantSearchInput struct {
	Query      string   `json:"query"`
	StateCode  string   `json:"state_code"`
	Status     string   `json:"status"`
	Categories []string `json:"categories"`
}

func (t *GrantSearchTool) Name() string { return "grant_search" }

func (t *GrantSearchTool) Definition() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        t.Name(),
			Description: "Semantic search over the grants catalog. Returns up to 10 opportunities.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query":      map[string]interface{}{"type": "string", "description": "Plain-language description of what to fund"},
					"state_code": map[string]interface{}{"type": "string", "description": "Optional two-letter state code"},
					"status":     map[string]interface{}{"type": "string", "enum": []string{"posted", "forecasted", "closed"}},
					"categories": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				},
				"required": []string{"query"},
			},
		},
	}
}

func (t *GrantSearchTool) Call(ctx context.Context, input string) (string, error) {
	var args grantSearchInput
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("bad grant_search arguments: %w", err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return "", fmt.Errorf("grant_search requires a query")
	}

	results, err := search.Grants(ctx, t.Embedder, t.Store, args.Query, search.Filter{
		StateCode:  args.StateCode,
		Status:     args.Status,
		Categories: args.Categories,
	})
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "No matching grants found.", nil
	}

	out, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// KnowledgeBaseTool retrieves passages from the organization's documents.
type KnowledgeBaseTool struct {
	KB    *kb.Service
	OrgID uuid.UUID
}

type kbInput struct {
	Query string `json:"query"`
}

func (t *KnowledgeBaseTool) Name() string { return "knowledge_base" }

func (t *KnowledgeBaseTool) Definition() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        t.Name(),
			Description: "Look up passages from the organization's own uploaded documents.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{"type": "string", "description": "What to look up"},
				},
				"required": []string{"query"},
			},
		},
	}
}

func (t *KnowledgeBaseTool) Call(ctx context.Context, input string) (string, error) {
	var args kbInput
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("bad knowledge_base arguments: %w", err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return "", fmt.Errorf("knowledge_base requires a query")
	}

	passages, err := t.KB.Search(ctx, t.OrgID, args.Query, 5)
	if err != nil {
		return "", err
	}
	if len(passages) == 0 {
		return "The knowledge base has no relevant passages.", nil
	}

	var b strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, p.Content)
	}
	return b.String(), nil
}
