package docs

import (
	"strings"
	"testing"
)

func TestSanitizeHTMLStripsScripts(t *testing.T) {
	in := `<p>Budget narrative</p><script>alert(1)</script><a href="javascript:evil()">link</a>`
	out := SanitizeHTML(in)
	if strings.Contains(out, "script") || strings.Contains(out, "javascript:") {
		t.Fatalf("dangerous markup survived: %q", out)
	}
	if !strings.Contains(out, "<p>Budget narrative</p>") {
		t.Fatalf("safe markup lost: %q", out)
	}
}

func TestSanitizeHTMLKeepsFormatting(t *testing.T) {
	in := `<ul><li><strong>Goal one</strong></li><li><em>Goal two</em></li></ul>`
	out := SanitizeHTML(in)
	for _, tag := range []string{"<ul>", "<li>", "<strong>", "<em>"} {
		if !strings.Contains(out, tag) {
			t.Errorf("expected %s to survive, got %q", tag, out)
		}
	}
}

func TestHTMLToText(t *testing.T) {
	in := `<h1>Plan</h1><p>First   paragraph.</p><ul><li>Item one</li><li>Item two</li></ul><script>bad()</script>`
	out := HTMLToText(in)
	if strings.Contains(out, "bad()") {
		t.Fatalf("script content leaked: %q", out)
	}
	for _, want := range []string{"Plan", "First paragraph.", "Item one", "Item two"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
	if !strings.Contains(out, "Item one\nItem two") {
		t.Errorf("expected list items on separate lines: %q", out)
	}
}

func TestHTMLToTextEmpty(t *testing.T) {
	if out := HTMLToText(""); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestExtractPDFTextRejectsGarbage(t *testing.T) {
	if _, err := ExtractPDFText([]byte("not a pdf at all")); err == nil {
		t.Fatal("expected error for non-PDF input")
	}
	if _, err := ExtractPDFText(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}
