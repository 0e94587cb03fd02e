package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/intellinews/newsrec/internal/models"
)

func newFakeNewsService(t *testing.T, articles map[int64]Content) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/internal/content/", func(w http.ResponseWriter, r *http.Request) {
		var id int64
		if _, err := fmt.Sscanf(r.URL.Path, "/api/v1/internal/content/%d", &id); err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		article, ok := articles[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		out := Content{ID: id}
		fields := r.URL.Query()["fields"]
		if len(fields) == 0 {
			out = article
		}
		for _, f := range fields {
			switch f {
			case FieldTitle:
				out.Title = article.Title
			case FieldDescription:
				out.Description = article.Description
			case FieldCategory:
				out.Category = article.Category
			}
		}
		json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("/api/v1/internal/ai/news", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		category := r.URL.Query().Get("category")
		var items []models.ContentItem
		for id, a := range articles {
			if category != "" && a.Category != category {
				continue
			}
			items = append(items, models.ContentItem{
				ID: id, Title: a.Title, Description: a.Description, Category: a.Category,
			})
		}
		start := page * size
		if start > len(items) {
			start = len(items)
		}
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		json.NewEncoder(w).Encode(models.ContentPage{
			Items: items[start:end], Page: page, TotalPages: (len(items) + size - 1) / size,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetContent(t *testing.T) {
	srv := newFakeNewsService(t, map[int64]Content{
		42: {Title: "Công nghệ AI", Description: "Mô tả", Category: "tech"},
	})
	c := NewClient(srv.URL, 5*time.Second)

	got, err := c.GetContent(context.Background(), 42, []string{FieldTitle, FieldDescription})
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Công nghệ AI" || got.Description != "Mô tả" {
		t.Errorf("got %+v", got)
	}
}

func TestClient_GetContentNotFound(t *testing.T) {
	srv := newFakeNewsService(t, nil)
	c := NewClient(srv.URL, 5*time.Second)

	_, err := c.GetContent(context.Background(), 999, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, 5*time.Second)

	_, err := c.GetContent(context.Background(), 1, nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for 5xx, got %v", err)
	}

	srv.Close()
	_, err = c.List(context.Background(), 0, 10)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for connection failure, got %v", err)
	}
}

func TestClient_List(t *testing.T) {
	srv := newFakeNewsService(t, map[int64]Content{
		1: {Title: "A", Category: "tech"},
		2: {Title: "B", Category: "sports"},
	})
	c := NewClient(srv.URL, 5*time.Second)

	page, err := c.List(context.Background(), 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(page.Items))
	}
}

func TestCategoryFinder_Find(t *testing.T) {
	srv := newFakeNewsService(t, map[int64]Content{
		7: {Title: "T", Category: "tech"},
	})
	c := NewClient(srv.URL, 5*time.Second)
	f := NewCategoryFinder(c, 10, 3)

	category, err := f.Find(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if category != "tech" {
		t.Errorf("expected tech, got %q", category)
	}

	category, err = f.Find(context.Background(), 12345)
	if err != nil {
		t.Fatal(err)
	}
	if category != "" {
		t.Errorf("expected empty category for unknown id, got %q", category)
	}
}

func TestCategoryFinder_BoundedWindow(t *testing.T) {
	var pagesServed int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		items := make([]models.ContentItem, size) // full pages forever
		json.NewEncoder(w).Encode(models.ContentPage{Items: items})
	}))
	defer srv.Close()
	c := NewClient(srv.URL, 5*time.Second)
	f := NewCategoryFinder(c, 5, 2)

	if _, err := f.Find(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if pagesServed != 2 {
		t.Errorf("expected scan to stop after 2 pages, served %d", pagesServed)
	}
}
