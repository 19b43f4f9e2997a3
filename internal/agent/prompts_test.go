package agent

import (
	"strings"
	"testing"

	"github.com/openfund/grantdesk/internal/models"
)

func testOrg() *models.Organization {
	return &models.Organization{
		Name:            "Riverside Youth Alliance",
		Mission:         "After-school programs for rural youth",
		AnnualBudget:    450000,
		FiscalYearStart: "07-01",
		City:            "Missoula",
		StateCode:       "MT",
		Services:        []string{"tutoring", "mentoring"},
		CustomFields:    map[string]interface{}{"EIN": "12-3456789"},
	}
}

func TestAssistantPromptAllCapabilities(t *testing.T) {
	prompt := AssistantPrompt(testOrg(), Capabilities{GrantSearch: true, KnowledgeBase: true, OrgProfile: true})

	mustContain := []string{
		"Riverside Youth Alliance",
		"After-school programs for rural youth",
		"✅ Grant search",
		"✅ Knowledge base",
		"✅ Organization profile",
		"Tool: grant_search",
		"Tool: knowledge_base",
		"state_code",
		"EIN: 12-3456789",
	}
	for _, token := range mustContain {
		if !strings.Contains(prompt, token) {
			t.Errorf("assistant prompt missing %q", token)
		}
	}
}

func TestAssistantPromptTogglesGateBlocks(t *testing.T) {
	prompt := AssistantPrompt(testOrg(), Capabilities{})

	if strings.Contains(prompt, "Tool: grant_search") {
		t.Error("grant search block must be absent when toggle is off")
	}
	if strings.Contains(prompt, "Tool: knowledge_base") {
		t.Error("knowledge base block must be absent when toggle is off")
	}
	if strings.Contains(prompt, "Riverside Youth Alliance") {
		t.Error("organization block must be absent when profile toggle is off")
	}

	for _, line := range []string{"❌ Grant search", "❌ Knowledge base", "❌ Organization profile"} {
		if !strings.Contains(prompt, line) {
			t.Errorf("capability summary missing %q", line)
		}
	}
}

func TestEditorPromptStyleDiffersFromAssistant(t *testing.T) {
	caps := Capabilities{GrantSearch: true, KnowledgeBase: true, OrgProfile: true}
	editor := EditorPrompt(testOrg(), caps)
	assistant := AssistantPrompt(testOrg(), caps)

	if !strings.Contains(editor, "Return only the revised") {
		t.Error("editor prompt missing editing instructions")
	}
	if strings.Contains(assistant, "Return only the revised") {
		t.Error("assistant prompt must not carry editor instructions")
	}
	if editor == assistant {
		t.Error("editor and assistant prompts must differ")
	}
}

func TestGrantsPromptScoringSchema(t *testing.T) {
	prompt := GrantsPrompt(testOrg())

	for _, token := range []string{"fit_score", "fit_description", "Riverside Youth Alliance"} {
		if !strings.Contains(prompt, token) {
			t.Errorf("grants prompt missing %q", token)
		}
	}
}

func TestOrganizationBlockSkipsEmptyFields(t *testing.T) {
	block := organizationBlock(&models.Organization{Name: "Bare Org"})

	if !strings.Contains(block, "Name: Bare Org") {
		t.Error("name must always be present")
	}
	for _, token := range []string{"Mission:", "Annual budget:", "Services:", "Location:"} {
		if strings.Contains(block, token) {
			t.Errorf("empty field %q must be omitted", token)
		}
	}
}
