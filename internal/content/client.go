// Package content provides the HTTP client for the news-service internal API.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/intellinews/newsrec/internal/models"
)

// ErrNotFound is returned when the news service has no article for the id.
var ErrNotFound = errors.New("article not found")

// ErrUnavailable is returned when the news service cannot be reached or
// answers with a server error. Callers should treat it as retryable.
var ErrUnavailable = errors.New("news service unavailable")

// Content field names accepted by the internal content endpoint.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCategory    = "category"
)

// Content holds the fields of one article returned by the content endpoint.
// Fields not requested come back empty.
type Content struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Client calls the news-service internal API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the news service at baseURL with a per-call
// timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GetContent fetches the requested fields of one article.
// Returns ErrNotFound when the id is unknown to the news service.
func (c *Client) GetContent(ctx context.Context, newsID int64, fields []string) (*Content, error) {
	u := fmt.Sprintf("%s/api/v1/internal/content/%d", c.baseURL, newsID)
	if len(fields) > 0 {
		q := url.Values{}
		for _, f := range fields {
			q.Add("fields", f)
		}
		u += "?" + q.Encode()
	}

	var content Content
	if err := c.getJSON(ctx, u, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// List fetches one page of lightweight article listings for AI processing.
func (c *Client) List(ctx context.Context, page, size int) (*models.ContentPage, error) {
	u := fmt.Sprintf("%s/api/v1/internal/ai/news?page=%d&size=%d", c.baseURL, page, size)
	var result models.ContentPage
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByCategory fetches one page of article listings filtered by category.
func (c *Client) ListByCategory(ctx context.Context, category string, page, size int) (*models.ContentPage, error) {
	u := fmt.Sprintf("%s/api/v1/internal/ai/news?page=%d&size=%d&category=%s",
		c.baseURL, page, size, url.QueryEscape(category))
	var result models.ContentPage
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("news service returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CategoryFinder resolves an article's category from the paginated AI
// listings when the content endpoint does not carry it. The scan is bounded:
// at most maxPages pages of pageSize items each.
type CategoryFinder struct {
	client   *Client
	pageSize int
	maxPages int
}

// NewCategoryFinder creates a bounded category lookup over client.
func NewCategoryFinder(client *Client, pageSize, maxPages int) *CategoryFinder {
	if pageSize <= 0 {
		pageSize = 200
	}
	if maxPages <= 0 {
		maxPages = 1
	}
	return &CategoryFinder{client: client, pageSize: pageSize, maxPages: maxPages}
}

// Find returns the category for newsID, or "" when the article does not
// appear within the scan window.
func (f *CategoryFinder) Find(ctx context.Context, newsID int64) (string, error) {
	for page := 0; page < f.maxPages; page++ {
		listing, err := f.client.List(ctx, page, f.pageSize)
		if err != nil {
			return "", err
		}
		for _, item := range listing.Items {
			if item.ID == newsID {
				return item.Category, nil
			}
		}
		if len(listing.Items) < f.pageSize {
			break
		}
		if listing.TotalPages > 0 && page+1 >= listing.TotalPages {
			break
		}
	}
	return "", nil
}
