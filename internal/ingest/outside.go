package ingest

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// OutsideOpportunity holds the fields a funder page yields before a user
// reviews them and files an application.
type OutsideOpportunity struct {
	Title       string
	AgencyName  string
	Description string
	AmountFloor float64
	AmountCeil  float64
	SourceURL   string
}

var moneyPattern = regexp.MustCompile(`\$\s?([\d,]+(?:\.\d{2})?)`)

// FetchOutsideOpportunity pulls a funder page the user pasted in and scrapes
// what it can. Missing fields stay empty for the user to fill in.
func FetchOutsideOpportunity(ctx context.Context, fetcher Fetcher, pageURL string) (*OutsideOpportunity, error) {
	if err := ValidateExternalURL(pageURL); err != nil {
		return nil, err
	}

	page, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if page.StatusCode >= 400 {
		return nil, fmt.Errorf("page returned status %d", page.StatusCode)
	}

	opp, err := ParseOpportunityPage(page.Body)
	if err != nil {
		return nil, err
	}
	opp.SourceURL = page.URL
	return opp, nil
}

// ParseOpportunityPage extracts opportunity fields from funder page HTML.
func ParseOpportunityPage(html []byte) (*OutsideOpportunity, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	opp := &OutsideOpportunity{}

	opp.Title = firstText(doc, `meta[property="og:title"]`, "content")
	if opp.Title == "" {
		opp.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if opp.Title == "" {
		opp.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	opp.AgencyName = firstText(doc, `meta[property="og:site_name"]`, "content")
	if opp.AgencyName == "" {
		opp.AgencyName = firstText(doc, `meta[name="author"]`, "content")
	}

	opp.Description = firstText(doc, `meta[property="og:description"]`, "content")
	if opp.Description == "" {
		opp.Description = firstText(doc, `meta[name="description"]`, "content")
	}
	if opp.Description == "" {
		// First substantial paragraph near the heading.
		doc.Find("main p, article p, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if len(text) > 80 {
				opp.Description = text
				return false
			}
			return true
		})
	}

	opp.AmountFloor, opp.AmountCeil = findAmounts(doc.Text())

	if opp.Title == "" {
		return nil, fmt.Errorf("page has no recognizable title")
	}
	return opp, nil
}

func firstText(doc *goquery.Document, selector, attr string) string {
	val, _ := doc.Find(selector).First().Attr(attr)
	return strings.TrimSpace(val)
}

// findAmounts returns the smallest and largest dollar figures on the page.
// A single figure becomes the ceiling.
func findAmounts(text string) (floor, ceil float64) {
	matches := moneyPattern.FindAllStringSubmatch(text, -1)
	var amounts []float64
	for _, m := range matches {
		raw := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 100 {
			continue
		}
		amounts = append(amounts, v)
	}
	if len(amounts) == 0 {
		return 0, 0
	}
	floor, ceil = amounts[0], amounts[0]
	for _, v := range amounts[1:] {
		if v < floor {
			floor = v
		}
		if v > ceil {
			ceil = v
		}
	}
	if floor == ceil {
		return 0, ceil
	}
	return floor, ceil
}
