// grantctl is a small terminal client for the grantdesk API: search the
// catalog, manage bookmarks, and track applications without the web UI.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"github.com/openfund/grantdesk/internal/client"
	"github.com/openfund/grantdesk/internal/models"
)

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("server", envOr("GRANTDESK_URL", "http://localhost:8082"), "API base URL")
	token := flag.String("token", os.Getenv("GRANTDESK_TOKEN"), "auth token")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	c := client.New(*baseURL)
	c.Token = *token

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	var err error
	switch args[0] {
	case "login":
		err = cmdLogin(ctx, c, args[1:])
	case "search":
		err = cmdSearch(ctx, c, args[1:])
	case "show":
		err = cmdShow(ctx, c, args[1:])
	case "bookmarks":
		err = cmdBookmarks(ctx, c)
	case "bookmark":
		err = requireArg(args, "opportunity ID", func(id string) error { return c.AddBookmark(ctx, id) })
	case "unbookmark":
		err = requireArg(args, "opportunity ID", func(id string) error { return c.RemoveBookmark(ctx, id) })
	case "toggle":
		err = requireArg(args, "opportunity ID", func(id string) error { return cmdToggle(ctx, c, id) })
	case "browse":
		err = cmdBrowse(ctx, c)
	case "apps":
		err = cmdApplications(ctx, c)
	case "apply":
		err = cmdApply(ctx, c, args[1:])
	case "status":
		err = cmdStatus(ctx, c, args[1:])
	case "checklist":
		err = cmdChecklist(ctx, c, args[1:])
	case "stats":
		err = cmdStats(ctx, c)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: grantctl [flags] <command>

commands:
  login <email> <password>   authenticate and print a token
  search [query]             search the grant catalog
  show <id>                  show one grant
  bookmarks                  list saved grants
  bookmark <id>              save a grant
  unbookmark <id>            remove a saved grant
  toggle <id>                flip a bookmark (optimistic, rolls back on error)
  browse                     interactive search, one query per line
  apps                       list applications
  apply <opportunity-id>     start an application (waits for the checklist)
  status <app-id> <status>   update application status
  checklist <app-id>         show an application's checklist
  stats                      catalog statistics`)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requireArg(args []string, name string, fn func(string) error) error {
	if len(args) < 2 {
		return fmt.Errorf("%s required", name)
	}
	return fn(args[1])
}

func cmdLogin(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("email and password required")
	}
	if err := c.Login(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("export GRANTDESK_TOKEN=%s\n", c.Token)
	return nil
}

func cmdSearch(ctx context.Context, c *client.Client, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	page, err := c.ListGrants(ctx, query, 20, 0)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Title", "Agency", "Ceiling", "Closes", "Status"})
	for _, o := range page.Opportunities {
		t.AppendRow(table.Row{
			shortID(o.ID.String()), truncate(o.Title, 50), truncate(o.AgencyName, 24),
			money(o.FundingCeiling), dateOrDash(o.CloseAt), o.Status,
		})
	}
	t.Render()
	fmt.Printf("%d of %d results\n", len(page.Opportunities), page.Total)
	return nil
}

// cmdToggle exercises the optimistic path: the visible state flips before
// the request and is rolled back when the server says no.
func cmdToggle(ctx context.Context, c *client.Client, id string) error {
	if _, err := c.ListBookmarks(ctx); err != nil {
		return err
	}
	bookmarked, err := c.ToggleBookmark(ctx, id)
	if err != nil {
		fmt.Printf("toggle failed, state stays %v\n", c.Bookmarks.Has(id))
		return err
	}
	if bookmarked {
		fmt.Println("bookmarked")
	} else {
		fmt.Println("removed")
	}
	return nil
}

// cmdBrowse reads queries line by line and debounces the search, the same
// way the UI debounces keystrokes. A blank line quits.
func cmdBrowse(ctx context.Context, c *client.Client) error {
	d := client.NewDebouncer(client.DefaultSearchDelay)
	defer d.Cancel()

	fmt.Println("type a query and press enter (blank line quits)")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			break
		}
		d.Do(func() {
			page, err := c.ListGrants(ctx, query, 10, 0)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}
			for _, o := range page.Opportunities {
				fmt.Printf("  %s  %s\n", shortID(o.ID.String()), truncate(o.Title, 60))
			}
			fmt.Printf("%d results for %q\n", page.Total, query)
		})
	}
	return scanner.Err()
}

func cmdShow(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("grant ID required")
	}
	o, err := c.GetGrant(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s\n%s\n\n", o.Title, o.AgencyName)
	if o.FundingCeiling > 0 {
		fmt.Printf("Award:   %s to %s\n", money(o.FundingFloor), money(o.FundingCeiling))
	}
	fmt.Printf("Status:  %s\n", o.Status)
	fmt.Printf("Closes:  %s\n", dateOrDash(o.CloseAt))
	if o.ExternalURL != "" {
		fmt.Printf("URL:     %s\n", o.ExternalURL)
	}
	if o.Summary != "" {
		fmt.Printf("\n%s\n", o.Summary)
	}
	return nil
}

func cmdBookmarks(ctx context.Context, c *client.Client) error {
	bookmarks, err := c.ListBookmarks(ctx)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Title", "Agency", "Closes"})
	for _, b := range bookmarks {
		t.AppendRow(table.Row{
			shortID(b.OpportunityID.String()), truncate(b.Opportunity.Title, 50),
			truncate(b.Opportunity.AgencyName, 24), dateOrDash(b.Opportunity.CloseAt),
		})
	}
	t.Render()
	return nil
}

func cmdApplications(ctx context.Context, c *client.Client) error {
	apps, err := c.ListApplications(ctx)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Title", "Status", "Deadline", "Tasks"})
	for _, a := range apps {
		done := 0
		for _, item := range a.Checklist {
			if item.Completed {
				done++
			}
		}
		t.AppendRow(table.Row{
			shortID(a.ID.String()), truncate(a.Title, 50), a.Status,
			dateOrDash(a.CloseAt), fmt.Sprintf("%d/%d", done, len(a.Checklist)),
		})
	}
	t.Render()
	return nil
}

func cmdApply(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("opportunity ID required")
	}

	app, err := c.CreateApplication(ctx, args[0])
	if err != nil {
		var dup *client.DuplicateApplicationError
		if errors.As(err, &dup) && dup.Existing != nil {
			return fmt.Errorf("already applied: %q is %s (created %s)",
				dup.Existing.Title, dup.Existing.Status, dup.Existing.CreatedAt.Format("2006-01-02"))
		}
		return err
	}
	fmt.Printf("Application %s created in %s\n", app.ID, app.Status)

	fmt.Println("Waiting for checklist generation...")
	items, err := c.WaitForChecklist(ctx, app.ID.String())
	if err != nil {
		fmt.Printf("Checklist not ready yet: %v\n", err)
		return nil
	}
	printChecklist(items)
	return nil
}

func cmdStatus(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("application ID and status required")
	}
	status := models.ApplicationStatus(args[1])
	if !status.Valid() {
		return fmt.Errorf("invalid status %q, one of: %v", args[1], models.AllStatuses)
	}
	return c.UpdateApplicationStatus(ctx, args[0], status)
}

func cmdChecklist(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("application ID required")
	}
	items, err := c.GetChecklist(ctx, args[0])
	if err != nil {
		return err
	}
	printChecklist(items)
	return nil
}

func cmdStats(ctx context.Context, c *client.Client) error {
	stats, err := c.GetStats(ctx)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Metric", "Count"})
	t.AppendRow(table.Row{"Opportunities", stats.Total})
	t.AppendRow(table.Row{"With embeddings", stats.Embedded})
	for status, count := range stats.StatusCounts {
		t.AppendRow(table.Row{"  " + status, count})
	}
	t.Render()
	return nil
}

func printChecklist(items []models.ChecklistItem) {
	for _, item := range items {
		mark := "[ ]"
		if item.Completed {
			mark = "[x]"
		}
		fmt.Printf("%s %s\n", mark, item.Text)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func money(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("$%.0f", v)
}

func dateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}
