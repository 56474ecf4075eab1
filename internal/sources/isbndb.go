package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bookloader/bookloader/internal/models"
)

// ISBNdb is a client for the ISBNdb book API
type ISBNdb struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// isbndbResponse is the body of GET /book/{isbn}
type isbndbResponse struct {
	Book struct {
		Title         string   `json:"title"`
		Authors       []string `json:"authors"`
		Binding       string   `json:"binding"`
		Publisher     string   `json:"publisher"`
		DatePublished string   `json:"date_published"`
		Subjects      []string `json:"subjects"`
		Image         string   `json:"image"`
		Synopsis      string   `json:"synopsis"`
	} `json:"book"`
}

// NewISBNdb creates an ISBNdb client
func NewISBNdb(baseURL, apiKey string) *ISBNdb {
	return &ISBNdb{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		httpClient: newHTTPClient(),
	}
}

// ID implements Adapter
func (c *ISBNdb) ID() models.SourceID {
	return models.SourceISBNdb
}

// Fetch implements Adapter
func (c *ISBNdb) Fetch(ctx context.Context, isbn string) (models.Partial, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("API key required for ISBNdb")
	}

	bookURL := fmt.Sprintf("%s/book/%s", c.BaseURL, url.PathEscape(isbn))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, bookURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create ISBNdb request: %w", err)
	}
	req.Header.Set("Authorization", c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from ISBNdb: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ISBNdb API returned status %d: %s", resp.StatusCode, string(body))
	}

	var out isbndbResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode ISBNdb response: %w", err)
	}

	book := out.Book
	if book.Title == "" && len(book.Authors) == 0 {
		return nil, ErrNotFound
	}

	p := models.Partial{}
	p.Set(models.FieldTitle, book.Title)
	p.Set(models.FieldAuthors, strings.Join(book.Authors, ", "))
	p.Set(models.FieldBinding, book.Binding)
	p.Set(models.FieldPublisher, book.Publisher)
	p.Set(models.FieldPublishDate, year(book.DatePublished))
	p.Set(models.FieldDescription, book.Synopsis)
	p.Add(models.FieldImage, book.Image)
	p.Add(models.FieldCategories, book.Subjects...)

	return p, nil
}
