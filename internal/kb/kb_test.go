package kb

import (
	"strings"
	"testing"
)

func TestSplitTextEmpty(t *testing.T) {
	if got := SplitText("", 100); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := SplitText("   \n\n  ", 100); got != nil {
		t.Fatalf("expected nil for whitespace input, got %v", got)
	}
}

func TestSplitTextShortStaysWhole(t *testing.T) {
	chunks := SplitText("First paragraph.\n\nSecond paragraph.", 1000)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(chunks), chunks)
	}
	if !strings.Contains(chunks[0], "First paragraph.") || !strings.Contains(chunks[0], "Second paragraph.") {
		t.Fatalf("chunk missing content: %q", chunks[0])
	}
}

func TestSplitTextBreaksOnParagraphs(t *testing.T) {
	a := strings.Repeat("a", 60)
	b := strings.Repeat("b", 60)
	chunks := SplitText(a+"\n\n"+b, 80)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != a || chunks[1] != b {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
}

func TestSplitTextHardCutsLongParagraph(t *testing.T) {
	long := strings.Repeat("x", 250)
	chunks := SplitText(long, 100)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 100 {
			t.Fatalf("chunk %d exceeds size: %d chars", i, len(c))
		}
	}
}

func TestSplitLongPrefersSentenceBoundary(t *testing.T) {
	text := strings.Repeat("word ", 15) + "end. " + strings.Repeat("more ", 15) + "done."
	chunks := splitLong(text, 90)
	if len(chunks) < 2 {
		t.Fatalf("expected split, got %v", chunks)
	}
	if !strings.HasSuffix(chunks[0], "end.") {
		t.Fatalf("expected first chunk to end at sentence, got %q", chunks[0])
	}
}
