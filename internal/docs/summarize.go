package docs

import (
	"context"
	"fmt"
	"strings"

	"github.com/openfund/grantdesk/internal/ai"
)

// summaryInputLimit keeps plan documents within a single model call.
const summaryInputLimit = 24000

// SummarizePlan condenses a strategic plan document into a short summary
// stored on the organization profile and injected into assistant prompts.
func SummarizePlan(ctx context.Context, client *ai.Client, planText string) (string, error) {
	planText = strings.TrimSpace(planText)
	if planText == "" {
		return "", fmt.Errorf("plan text is empty")
	}
	if len(planText) > summaryInputLimit {
		planText = planText[:summaryInputLimit]
	}

	prompt := fmt.Sprintf(`Summarize this organization's strategic plan in at most 200 words. Focus on mission, priority programs, target populations, and funding goals. Write plain prose, no headings.

%s`, planText)

	summary, err := client.GenerateCompletion(ctx, prompt, false)
	if err != nil {
		return "", fmt.Errorf("summarizing plan: %w", err)
	}
	return strings.TrimSpace(summary), nil
}
