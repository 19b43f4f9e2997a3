package checklist

import (
	"testing"
)

func TestParseItemsWrapper(t *testing.T) {
	raw := `{"items": [{"text": "Gather 501(c)(3) letter"}, {"text": "Draft narrative"}]}`
	items, err := ParseItems(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Text != "Gather 501(c)(3) letter" {
		t.Errorf("unexpected text: %q", items[0].Text)
	}
	if items[0].ID == "" || items[1].ID == "" {
		t.Error("expected generated IDs")
	}
	if items[0].ID == items[1].ID {
		t.Error("expected unique IDs")
	}
	if items[0].Completed || items[1].Completed {
		t.Error("new items must start incomplete")
	}
}

func TestParseItemsBareArray(t *testing.T) {
	items, err := ParseItems(`[{"text": "Submit by deadline"}]`)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Text != "Submit by deadline" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestParseItemsSkipsBlank(t *testing.T) {
	items, err := ParseItems(`{"items": [{"text": "  "}, {"text": "Real task"}]}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Text != "Real task" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestParseItemsBadJSON(t *testing.T) {
	if _, err := ParseItems(`not json`); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
