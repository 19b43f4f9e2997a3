package db

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestBuildListWhere_DefaultsToPosted(t *testing.T) {
	where, args, _ := buildListWhere(ListParams{})

	if !strings.Contains(where, "status = $1") {
		t.Fatalf("expected default status filter, got: %s", where)
	}
	if len(args) != 1 || args[0] != "posted" {
		t.Fatalf("expected args [posted], got: %v", args)
	}
}

func TestBuildListWhere_AllStatusSkipsFilter(t *testing.T) {
	where, args, _ := buildListWhere(ListParams{Status: "all"})

	if strings.Contains(where, "status =") {
		t.Fatalf("status filter must be absent for 'all': %s", where)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got: %v", args)
	}
}

func TestBuildListWhere_AllFilters(t *testing.T) {
	where, args, argIdx := buildListWhere(ListParams{
		Query:      "youth literacy",
		Status:     "forecasted",
		StateCode:  "CA",
		AgencyName: []string{"Dept of Education"},
		MinAmount:  10000,
		MaxAmount:  50000,
		CloseDays:  30,
		Categories: []string{"Education", " "},
	})

	mustContain := []string{
		"search_vector @@ plainto_tsquery",
		"status = $2",
		"state_code = $3",
		"agency_name = ANY($4)",
		"funding_ceiling >= $5",
		"funding_floor <= $6",
		"close_at <= NOW() + ($7 * INTERVAL '1 day')",
		"categories && $8",
	}
	for _, token := range mustContain {
		if !strings.Contains(where, token) {
			t.Errorf("where clause missing %q: %s", token, where)
		}
	}

	if len(args) != 8 {
		t.Fatalf("expected 8 args, got %d: %v", len(args), args)
	}
	if argIdx != 9 {
		t.Fatalf("expected next arg index 9, got %d", argIdx)
	}

	// Blank category entries must be dropped before binding.
	cats, ok := args[7].([]string)
	if !ok || len(cats) != 1 || cats[0] != "Education" {
		t.Fatalf("expected sanitized categories [Education], got: %v", args[7])
	}
}

func TestPrefixCols(t *testing.T) {
	got := prefixCols("o", "id, title,\n\tsummary")
	want := "o.id, o.title, o.summary"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSanitizeStringSlice(t *testing.T) {
	got := sanitizeStringSlice([]string{" a ", "", "b", "  "})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pairErr := fmt.Errorf("insert: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_applications_live_pair",
	})
	if !isUniqueViolation(pairErr, "idx_applications_live_pair") {
		t.Fatal("expected a match for the live-pair constraint")
	}
	if isUniqueViolation(pairErr, "some_other_constraint") {
		t.Fatal("constraint name must be checked")
	}
	if isUniqueViolation(fmt.Errorf("plain failure"), "idx_applications_live_pair") {
		t.Fatal("non-pg errors must not match")
	}

	otherCode := &pgconn.PgError{Code: "23503", ConstraintName: "idx_applications_live_pair"}
	if isUniqueViolation(otherCode, "idx_applications_live_pair") {
		t.Fatal("only SQLSTATE 23505 counts")
	}
}
