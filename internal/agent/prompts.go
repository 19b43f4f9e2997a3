package agent

import (
	"fmt"
	"strings"

	"github.com/openfund/grantdesk/internal/models"
)

// Capabilities gates which context blocks go into the system prompt and
// which tools get registered on the agent.
type Capabilities struct {
	GrantSearch   bool
	KnowledgeBase bool
	OrgProfile    bool
}

const grantSearchToolBlock = `## Tool: grant_search
Searches the grants catalog by meaning, not keywords. Input is a JSON object:
  {"query": "plain-language description of what to fund", "state_code": "optional two-letter state", "status": "posted|forecasted|closed", "categories": ["optional category names"]}
Returns up to 10 matching opportunities with title, agency, funding range,
close date, and a link. Prefer one broad query over many narrow ones.`

const knowledgeBaseToolBlock = `## Tool: knowledge_base
Retrieves passages from the organization's own uploaded documents (plans,
past proposals, reports). Input is a JSON object: {"query": "what to look up"}.
Use it whenever the answer should reflect what THIS organization has written
about itself, not general knowledge.`

const styleBlock = `## Style
- Answer in plain prose. Use short bullet lists only when comparing options.
- When you cite a grant, always include its title and deadline.
- Never invent grants, deadlines, or funding amounts. If a tool returned
  nothing, say so.

Example exchange:
User: "Are there any open grants for our after-school reading program?"
Good answer: "I found two strong matches. The Dollar General Youth Literacy
Grant (closes 2026-05-15) funds exactly this kind of program at up to
$10,000. ..."`

const editorStyleBlock = `## Style
- You are editing grant-application text in place. Return only the revised
  text, no commentary, no surrounding quotes.
- Preserve the author's voice; fix clarity, grammar, and alignment with the
  funder's language.

Example:
Input: "we will help kids to read more better with books"
Good output: "We will strengthen children's reading skills through guided
access to age-appropriate books."`

// organizationBlock renders the profile fields the prompts embed. Only
// non-empty fields appear so a sparse profile doesn't produce noise.
func organizationBlock(org *models.Organization) string {
	if org == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Organization context\n")
	fmt.Fprintf(&b, "Name: %s\n", org.Name)
	if org.Mission != "" {
		fmt.Fprintf(&b, "Mission: %s\n", org.Mission)
	}
	if org.AnnualBudget > 0 {
		fmt.Fprintf(&b, "Annual budget: $%.0f\n", org.AnnualBudget)
	}
	if org.FiscalYearStart != "" {
		fmt.Fprintf(&b, "Fiscal year starts: %s\n", org.FiscalYearStart)
	}
	if org.City != "" || org.StateCode != "" {
		fmt.Fprintf(&b, "Location: %s, %s\n", org.City, org.StateCode)
	}
	if len(org.Services) > 0 {
		fmt.Fprintf(&b, "Services: %s\n", strings.Join(org.Services, ", "))
	}
	for key, value := range org.CustomFields {
		fmt.Fprintf(&b, "%s: %v\n", key, value)
	}
	if org.PlanSummary != "" {
		fmt.Fprintf(&b, "Strategic plan summary: %s\n", org.PlanSummary)
	}
	return b.String()
}

func capabilityBlock(caps Capabilities) string {
	mark := func(on bool) string {
		if on {
			return "✅"
		}
		return "❌"
	}

	return fmt.Sprintf(`## Capability status
%s Grant search
%s Knowledge base
%s Organization profile
Do not claim you can use a capability marked ❌.`,
		mark(caps.GrantSearch), mark(caps.KnowledgeBase), mark(caps.OrgProfile))
}

// AssistantPrompt is the system prompt for the conversational assistant.
func AssistantPrompt(org *models.Organization, caps Capabilities) string {
	sections := []string{
		"You are a grants assistant for a nonprofit organization. You help the user discover funding opportunities, understand eligibility, and plan applications.",
	}

	if caps.OrgProfile {
		sections = append(sections, organizationBlock(org))
	}
	sections = append(sections, capabilityBlock(caps))
	if caps.GrantSearch {
		sections = append(sections, grantSearchToolBlock)
	}
	if caps.KnowledgeBase {
		sections = append(sections, knowledgeBaseToolBlock)
	}
	sections = append(sections, styleBlock)

	return joinSections(sections)
}

// EditorPrompt is the system prompt for the in-document editing assistant.
func EditorPrompt(org *models.Organization, caps Capabilities) string {
	sections := []string{
		"You are a grant-writing editor. You revise application text the user selects inside their documents.",
	}

	if caps.OrgProfile {
		sections = append(sections, organizationBlock(org))
	}
	sections = append(sections, capabilityBlock(caps))
	if caps.GrantSearch {
		sections = append(sections, grantSearchToolBlock)
	}
	if caps.KnowledgeBase {
		sections = append(sections, knowledgeBaseToolBlock)
	}
	sections = append(sections, editorStyleBlock)

	return joinSections(sections)
}

// GrantsPrompt is the system prompt for the batch recommendation scorer.
func GrantsPrompt(org *models.Organization) string {
	sections := []string{
		"You score how well a grant opportunity fits a specific organization. Be skeptical: most grants are a poor fit.",
		organizationBlock(org),
		`## Output
Return a JSON object: {"fit_score": 0-100, "fit_description": "two sentences naming the specific overlap or mismatch"}.
A score above 70 means the organization could credibly apply this cycle.`,
	}
	return joinSections(sections)
}

func joinSections(sections []string) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		s = strings.TrimSpace(s)
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}
