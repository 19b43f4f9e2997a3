package models

import "testing"

func TestApplicationStatusValid(t *testing.T) {
	for _, s := range AllStatuses {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}

	invalid := []ApplicationStatus{"", "draft", "APPROVED", "DONE", "Awarded"}
	for _, s := range invalid {
		if s.Valid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestAllStatusesCount(t *testing.T) {
	if len(AllStatuses) != 8 {
		t.Fatalf("expected 8 statuses, got %d", len(AllStatuses))
	}

	seen := make(map[ApplicationStatus]bool)
	for _, s := range AllStatuses {
		if seen[s] {
			t.Errorf("duplicate status %s", s)
		}
		seen[s] = true
	}
}
