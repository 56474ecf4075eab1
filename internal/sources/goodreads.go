package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/bookloader/bookloader/internal/models"
)

// maxGenres is how many genre links are read from a book page
const maxGenres = 3

// Goodreads scrapes the book page the site's search redirects to
type Goodreads struct {
	BaseURL    string
	httpClient *http.Client
}

// NewGoodreads creates a Goodreads adapter for baseURL
func NewGoodreads(baseURL string) *Goodreads {
	return &Goodreads{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
	}
}

// ID implements Adapter
func (g *Goodreads) ID() models.SourceID {
	return models.SourceGoodreads
}

// Fetch implements Adapter
func (g *Goodreads) Fetch(ctx context.Context, isbn string) (models.Partial, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s", g.BaseURL, url.QueryEscape(isbn))

	body, err := getPage(ctx, g.httpClient, searchURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse goodreads page: %w", err)
	}

	return parseGoodreads(doc)
}

func parseGoodreads(doc *html.Node) (models.Partial, error) {
	title := find(doc, byID("h1", "bookTitle"))
	if title == nil {
		return nil, ErrNotFound
	}

	p := models.Partial{}
	p.Set(models.FieldTitle, collapse(text(title)))
	p.Set(models.FieldAuthors, collapse(text(find(doc, byAttr("span", "itemprop", "name")))))

	if cover := find(doc, byID("img", "coverImage")); cover != nil {
		if src, ok := attr(cover, "src"); ok {
			p.Add(models.FieldImage, src)
		}
	}

	for i, link := range findAll(doc, byClass("a", "bookPageGenreLink")) {
		if i >= maxGenres {
			break
		}
		p.Add(models.FieldCategories, collapse(text(link)))
	}

	// The last span holds the full text when the description is truncated
	if desc := find(doc, byID("div", "description")); desc != nil {
		spans := findAll(desc, func(n *html.Node) bool { return n.Data == "span" })
		if len(spans) > 0 {
			p.Set(models.FieldDescription, innerHTML(spans[len(spans)-1]))
		}
	}

	p.Set(models.FieldBinding, collapse(text(find(doc, byAttr("span", "itemprop", "bookFormat")))))

	if details := find(doc, byID("div", "details")); details != nil {
		rows := findAll(details, byClass("div", "row"))
		if len(rows) > 1 {
			published := text(rows[1])
			if before, after, ok := strings.Cut(published, "by "); ok {
				publisher, _, _ := strings.Cut(after, "\n")
				p.Set(models.FieldPublisher, collapse(publisher))
				if words := strings.Fields(before); len(words) > 0 {
					p.Set(models.FieldPublishDate, words[len(words)-1])
				}
			}
		}
	}

	return p, nil
}
