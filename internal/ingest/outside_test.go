package ingest

import (
	"strings"
	"testing"
)

const fixturePage = `<!DOCTYPE html>
<html>
<head>
<title>Community Arts Fund | Example Foundation</title>
<meta property="og:title" content="Community Arts Fund 2026">
<meta property="og:site_name" content="Example Foundation">
<meta property="og:description" content="Grants for community arts programming in underserved neighborhoods.">
</head>
<body>
<h1>Community Arts Fund</h1>
<p>Awards range from $5,000 to $50,000 per project. Applications close in the fall.</p>
</body>
</html>`

func TestParseOpportunityPage(t *testing.T) {
	opp, err := ParseOpportunityPage([]byte(fixturePage))
	if err != nil {
		t.Fatal(err)
	}
	if opp.Title != "Community Arts Fund 2026" {
		t.Errorf("title = %q", opp.Title)
	}
	if opp.AgencyName != "Example Foundation" {
		t.Errorf("agency = %q", opp.AgencyName)
	}
	if !strings.Contains(opp.Description, "community arts programming") {
		t.Errorf("description = %q", opp.Description)
	}
	if opp.AmountFloor != 5000 || opp.AmountCeil != 50000 {
		t.Errorf("amounts = %v..%v, want 5000..50000", opp.AmountFloor, opp.AmountCeil)
	}
}

func TestParseOpportunityPageFallsBackToH1(t *testing.T) {
	html := `<html><head><title>t</title></head><body><h1>  Rural Health Grant  </h1></body></html>`
	opp, err := ParseOpportunityPage([]byte(html))
	if err != nil {
		t.Fatal(err)
	}
	if opp.Title != "Rural Health Grant" {
		t.Errorf("title = %q", opp.Title)
	}
}

func TestParseOpportunityPageNoTitle(t *testing.T) {
	if _, err := ParseOpportunityPage([]byte(`<html><body><p>nothing here</p></body></html>`)); err == nil {
		t.Fatal("expected error for page without title")
	}
}

func TestFindAmounts(t *testing.T) {
	floor, ceil := findAmounts("awards of $2,500 up to $25,000 with $50 fee")
	if floor != 2500 || ceil != 25000 {
		t.Errorf("got %v..%v, want 2500..25000", floor, ceil)
	}

	floor, ceil = findAmounts("a single award of $10,000")
	if floor != 0 || ceil != 10000 {
		t.Errorf("single figure: got %v..%v, want 0..10000", floor, ceil)
	}

	floor, ceil = findAmounts("no money mentioned")
	if floor != 0 || ceil != 0 {
		t.Errorf("no figures: got %v..%v", floor, ceil)
	}
}

func TestValidateExternalURLRejectsSchemes(t *testing.T) {
	for _, bad := range []string{"ftp://example.com/x", "file:///etc/passwd", "://broken"} {
		if err := ValidateExternalURL(bad); err == nil {
			t.Errorf("expected rejection for %q", bad)
		}
	}
}

func TestValidateExternalURLRejectsLoopback(t *testing.T) {
	if err := ValidateExternalURL("http://127.0.0.1:8080/admin"); err == nil {
		t.Fatal("expected loopback rejection")
	}
	if err := ValidateExternalURL("http://localhost/admin"); err == nil {
		t.Fatal("expected localhost rejection")
	}
}
