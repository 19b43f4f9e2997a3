package db

import (
	"strings"
	"testing"
)

// Document and chat rows are tenant data. Every statement that reads or
// mutates them by ID must also key on the organization.
func TestDocumentQueriesAreTenantScoped(t *testing.T) {
	queries := map[string]string{
		"get":    getDocumentSQL,
		"update": updateDocumentSQL,
		"move":   moveDocumentSQL,
		"delete": deleteDocumentSQL,
		"list":   listDocumentsSQL,
		"chat":   getChatSQL,
	}
	for name, q := range queries {
		if !strings.Contains(q, "organization_id") {
			t.Errorf("%s query is not organization-scoped: %s", name, q)
		}
	}
}
