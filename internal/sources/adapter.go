package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bookloader/bookloader/internal/config"
	"github.com/bookloader/bookloader/internal/models"
)

// ErrNotFound is returned when a source has no record for the identifier
var ErrNotFound = errors.New("no record found")

// browserAgent is sent to sites that refuse obvious bots
const browserAgent = "Mozilla/5.0 (Windows NT 10.0; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/49.0.2623.110 Safari/537.36"

// Adapter fetches a best-effort partial record from one source
type Adapter interface {
	ID() models.SourceID
	Fetch(ctx context.Context, isbn string) (models.Partial, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
	}
}

// New builds the enabled adapters in source invocation order
func New(ctx context.Context, cfg *config.Config) ([]Adapter, error) {
	var adapters []Adapter
	for _, id := range models.Sources {
		if !cfg.SourceEnabled(id) {
			continue
		}
		switch id {
		case models.SourceAmazon:
			adapters = append(adapters, NewAmazon(cfg.Endpoints.Amazon))
		case models.SourceGoodreads:
			adapters = append(adapters, NewGoodreads(cfg.Endpoints.Goodreads))
		case models.SourceISBNdb:
			adapters = append(adapters, NewISBNdb(cfg.Endpoints.ISBNdb, cfg.ISBNdbAPIKey))
		case models.SourceGoogle:
			g, err := NewGoogleBooks(ctx, cfg.Endpoints.Google, cfg.GoogleAPIKey)
			if err != nil {
				return nil, fmt.Errorf("failed to create google books adapter: %w", err)
			}
			adapters = append(adapters, g)
		}
	}
	return adapters, nil
}

// getPage issues a GET with a browser user agent and returns the open
// response body on 200
func getPage(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned status %d: %s", url, resp.StatusCode, string(body))
	}

	return resp.Body, nil
}

// year returns the first four characters of a publication date
func year(date string) string {
	if len(date) > 4 {
		return date[:4]
	}
	return date
}
