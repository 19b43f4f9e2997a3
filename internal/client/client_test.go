package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openfund/grantdesk/internal/models"
)

func TestListBookmarksUsesCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/bookmarks" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		hits++
		json.NewEncoder(w).Encode([]models.Bookmark{{}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.ListBookmarks(ctx); err != nil {
			t.Fatalf("ListBookmarks: %v", err)
		}
	}
	if hits != 1 {
		t.Fatalf("expected 1 request while cache is fresh, got %d", hits)
	}
}

func TestBookmarkMutationInvalidatesCache(t *testing.T) {
	var listHits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listHits++
			json.NewEncoder(w).Encode([]models.Bookmark{{}})
		case http.MethodPost, http.MethodDelete:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	if _, err := c.ListBookmarks(ctx); err != nil {
		t.Fatalf("ListBookmarks: %v", err)
	}
	if err := c.AddBookmark(ctx, "11111111-1111-1111-1111-111111111111"); err != nil {
		t.Fatalf("AddBookmark: %v", err)
	}
	if _, err := c.ListBookmarks(ctx); err != nil {
		t.Fatalf("ListBookmarks: %v", err)
	}
	if listHits != 2 {
		t.Fatalf("expected refetch after mutation, got %d list requests", listHits)
	}
}

func TestToggleBookmarkCommitsOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	id := "33333333-3333-3333-3333-333333333333"

	bookmarked, err := c.ToggleBookmark(context.Background(), id)
	if err != nil {
		t.Fatalf("ToggleBookmark: %v", err)
	}
	if !bookmarked || !c.Bookmarks.Has(id) {
		t.Fatal("toggle on did not stick")
	}

	bookmarked, err = c.ToggleBookmark(context.Background(), id)
	if err != nil {
		t.Fatalf("ToggleBookmark off: %v", err)
	}
	if bookmarked || c.Bookmarks.Has(id) {
		t.Fatal("toggle off did not stick")
	}
}

func TestToggleBookmarkRollsBackOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	id := "44444444-4444-4444-4444-444444444444"

	visible, err := c.ToggleBookmark(context.Background(), id)
	if err == nil {
		t.Fatal("expected error")
	}
	if visible || c.Bookmarks.Has(id) {
		t.Fatal("failed toggle must roll back to the committed state")
	}
}

func TestDuplicateApplicationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":       "An application already exists for this grant",
			"isDuplicate": true,
			"existingApplication": map[string]string{
				"title":  "Existing",
				"status": "draft",
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.CreateApplication(context.Background(), "22222222-2222-2222-2222-222222222222")
	dup, ok := err.(*DuplicateApplicationError)
	if !ok {
		t.Fatalf("expected DuplicateApplicationError, got %v", err)
	}
	if dup.Existing == nil || dup.Existing.Title != "Existing" {
		t.Fatalf("existing application not carried: %+v", dup.Existing)
	}
}
