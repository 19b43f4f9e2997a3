// Package client is the Go SDK for the grantdesk API. The CLI uses it, and
// it carries the client-side behaviors the web UI relies on: debounced
// search, optimistic bookmark toggles, and polling for background jobs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/openfund/grantdesk/internal/cache"
	"github.com/openfund/grantdesk/internal/models"
)

const (
	bookmarksCacheKey       = "bookmarks"
	recommendationsCacheKey = "recommendations"
)

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client

	// Read-through cache for bookmark and recommendation lists. Any
	// bookmark mutation invalidates it.
	cache *cache.Cache

	// Bookmarks holds the visible bookmark state; ToggleBookmark updates
	// it optimistically.
	Bookmarks *OptimisticSet
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:   baseURL,
		HTTP:      &http.Client{Timeout: 30 * time.Second},
		cache:     cache.New(cache.DefaultTTL),
		Bookmarks: NewOptimisticSet(nil),
	}
}

// apiError mirrors the server's error body.
type apiError struct {
	Error               string                     `json:"error"`
	IsDuplicate         bool                       `json:"isDuplicate,omitempty"`
	ExistingApplication *models.ApplicationSummary `json:"existingApplication,omitempty"`
}

// DuplicateApplicationError is returned when the server rejects an
// application because a live one already exists for the opportunity.
type DuplicateApplicationError struct {
	Existing *models.ApplicationSummary
}

func (e *DuplicateApplicationError) Error() string {
	return "an application already exists for this grant"
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			if resp.StatusCode == http.StatusConflict && apiErr.IsDuplicate {
				return &DuplicateApplicationError{Existing: apiErr.ExistingApplication}
			}
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return err
	}
	c.Token = resp.Token
	return nil
}

type GrantListPage struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Total         int                  `json:"total"`
	Limit         int                  `json:"limit"`
	Offset        int                  `json:"offset"`
}

func (c *Client) ListGrants(ctx context.Context, query string, limit, offset int) (*GrantListPage, error) {
	path := fmt.Sprintf("/api/v1/grants?limit=%d&offset=%d", limit, offset)
	if query != "" {
		path += "&q=" + url.QueryEscape(query)
	}
	var out GrantListPage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetGrant(ctx context.Context, id string) (*models.Opportunity, error) {
	var out models.Opportunity
	if err := c.do(ctx, http.MethodGet, "/api/v1/grants/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddBookmark(ctx context.Context, opportunityID string) error {
	c.cache.Invalidate(bookmarksCacheKey)
	return c.do(ctx, http.MethodPost, "/api/v1/bookmarks/"+opportunityID, nil, nil)
}

func (c *Client) RemoveBookmark(ctx context.Context, opportunityID string) error {
	c.cache.Invalidate(bookmarksCacheKey)
	return c.do(ctx, http.MethodDelete, "/api/v1/bookmarks/"+opportunityID, nil, nil)
}

// ToggleBookmark flips the bookmark locally first, issues the matching
// request, and reverses the local change when the server rejects it. Returns
// the state the user should see.
func (c *Client) ToggleBookmark(ctx context.Context, opportunityID string) (bool, error) {
	bookmarked, rollback := c.Bookmarks.Toggle(opportunityID)

	var err error
	if bookmarked {
		err = c.AddBookmark(ctx, opportunityID)
	} else {
		err = c.RemoveBookmark(ctx, opportunityID)
	}
	if err != nil {
		rollback()
		return c.Bookmarks.Has(opportunityID), err
	}
	c.Bookmarks.Commit(opportunityID)
	return bookmarked, nil
}

func (c *Client) ListBookmarks(ctx context.Context) ([]models.Bookmark, error) {
	if cached, ok := c.cache.Get(bookmarksCacheKey); ok {
		if list, ok := cached.([]models.Bookmark); ok && len(list) > 0 {
			return list, nil
		}
	}
	var out []models.Bookmark
	if err := c.do(ctx, http.MethodGet, "/api/v1/bookmarks", nil, &out); err != nil {
		return nil, err
	}
	c.cache.Set(bookmarksCacheKey, out)

	ids := make([]string, 0, len(out))
	for _, b := range out {
		ids = append(ids, b.OpportunityID.String())
	}
	c.Bookmarks.Reset(ids)
	return out, nil
}

func (c *Client) ListRecommendations(ctx context.Context) ([]models.Recommendation, error) {
	if cached, ok := c.cache.Get(recommendationsCacheKey); ok {
		if list, ok := cached.([]models.Recommendation); ok && len(list) > 0 {
			return list, nil
		}
	}
	var out []models.Recommendation
	if err := c.do(ctx, http.MethodGet, "/api/v1/ai/recommendations/list", nil, &out); err != nil {
		return nil, err
	}
	c.cache.Set(recommendationsCacheKey, out)
	return out, nil
}

type CreateApplicationRequest struct {
	OpportunityID string `json:"opportunityId"`
}

func (c *Client) CreateApplication(ctx context.Context, opportunityID string) (*models.Application, error) {
	var out models.Application
	err := c.do(ctx, http.MethodPost, "/api/v1/applications", CreateApplicationRequest{OpportunityID: opportunityID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListApplications(ctx context.Context) ([]models.Application, error) {
	var out []models.Application
	if err := c.do(ctx, http.MethodGet, "/api/v1/applications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateApplicationStatus(ctx context.Context, appID string, status models.ApplicationStatus) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/applications/"+appID+"/status", map[string]string{
		"status": string(status),
	}, nil)
}

func (c *Client) GetChecklist(ctx context.Context, appID string) ([]models.ChecklistItem, error) {
	var out []models.ChecklistItem
	if err := c.do(ctx, http.MethodGet, "/api/v1/applications/"+appID+"/checklist", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// WaitForChecklist polls until the background generation job fills the
// checklist in.
func (c *Client) WaitForChecklist(ctx context.Context, appID string) ([]models.ChecklistItem, error) {
	var items []models.ChecklistItem
	err := Poll(ctx, DefaultPollInterval, DefaultPollTimeout, func(ctx context.Context) (bool, error) {
		got, err := c.GetChecklist(ctx, appID)
		if err != nil {
			return false, err
		}
		if len(got) > 0 {
			items = got
			return true, nil
		}
		return false, nil
	})
	return items, err
}

type Stats struct {
	Total        int            `json:"total"`
	Embedded     int            `json:"embedded"`
	StatusCounts map[string]int `json:"status_counts"`
}

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, "/api/v1/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
