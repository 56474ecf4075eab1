package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/bookloader/bookloader/internal/isbn"
	"github.com/bookloader/bookloader/internal/models"
)

// Amazon scrapes the retail product page of a book
type Amazon struct {
	BaseURL    string
	httpClient *http.Client
}

// NewAmazon creates an Amazon adapter for baseURL
func NewAmazon(baseURL string) *Amazon {
	return &Amazon{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
	}
}

// ID implements Adapter
func (a *Amazon) ID() models.SourceID {
	return models.SourceAmazon
}

// Fetch implements Adapter
func (a *Amazon) Fetch(ctx context.Context, isbn13 string) (models.Partial, error) {
	isbn10, err := isbn.ToISBN10(isbn13)
	if err != nil {
		return nil, fmt.Errorf("amazon product pages need an ISBN-10: %w", err)
	}

	body, err := getPage(ctx, a.httpClient, fmt.Sprintf("%s/dp/%s", a.BaseURL, isbn10))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amazon page: %w", err)
	}

	return parseAmazon(doc, isbn13)
}

func parseAmazon(doc *html.Node, isbn13 string) (models.Partial, error) {
	p := models.Partial{}

	var pubInfo, binding, pageISBN string
	if details := find(doc, byID("div", "detailBullets_feature_div")); details != nil {
		for _, item := range findAll(details, byClass("span", "a-list-item")) {
			t := text(item)
			switch {
			case strings.Contains(t, "Publisher"):
				pubInfo = t
			case strings.Contains(t, "Hardcover"), strings.Contains(t, "Paperback"):
				binding = t
			case strings.Contains(t, "ISBN-13"):
				pageISBN = t
			}
		}
	}

	if pageISBN != "" {
		if _, after, ok := strings.Cut(pageISBN, ":"); ok && digitsOnly(after) != isbn13 {
			return nil, fmt.Errorf("amazon page is for ISBN %s: %w", digitsOnly(after), ErrNotFound)
		}
	}

	p.Set(models.FieldTitle, collapse(text(find(doc, byID("span", "productTitle")))))

	author := find(doc, byClass("span", "author"))
	if author == nil {
		author = find(doc, byClass("a", "authorNameLink"))
	}
	if author != nil {
		name, _, _ := strings.Cut(text(author), "(")
		p.Set(models.FieldAuthors, collapse(name))
	}

	if img := find(doc, byID("img", "imgBlkFront")); img != nil {
		if dynamic, ok := attr(img, "data-a-dynamic-image"); ok {
			p.Add(models.FieldImage, largestFirst(dynamic)...)
		}
	}

	if ranks := find(doc, byClass("ul", "zg_hrsr")); ranks != nil {
		for _, item := range findAll(ranks, byClass("span", "a-list-item")) {
			_, after, ok := strings.Cut(text(item), " in ")
			if !ok {
				continue
			}
			category, _, _ := strings.Cut(after, "(")
			p.Add(models.FieldCategories, collapse(category))
		}
	}

	if desc := find(doc, byID("div", "bookDescription_feature_div")); desc != nil {
		if inner := find(desc, func(n *html.Node) bool { return n.Data == "div" }); inner != nil {
			p.Set(models.FieldDescription, outerHTML(inner))
		}
	}

	if pubInfo != "" {
		if _, after, ok := strings.Cut(pubInfo, ":"); ok {
			publisher, _, _ := strings.Cut(after, ";")
			publisher, _, _ = strings.Cut(publisher, "(")
			p.Set(models.FieldPublisher, collapse(publisher))
		}
		date := strings.TrimSpace(strings.ReplaceAll(pubInfo, ")", ""))
		if len(date) >= 4 {
			date = date[len(date)-4:]
		}
		p.Set(models.FieldPublishDate, date)
	}

	if binding != "" {
		kind, _, _ := strings.Cut(binding, ":")
		p.Set(models.FieldBinding, collapse(kind))
	}

	if len(p) == 0 {
		return nil, ErrNotFound
	}
	return p, nil
}

// largestFirst orders the URLs of a data-a-dynamic-image attribute, a JSON
// object of url to [width, height], by descending area
func largestFirst(dynamic string) []string {
	var sizes map[string][]int
	if err := json.Unmarshal([]byte(dynamic), &sizes); err != nil {
		return nil
	}

	area := func(dims []int) int {
		if len(dims) < 2 {
			return 0
		}
		return dims[0] * dims[1]
	}

	urls := make([]string, 0, len(sizes))
	for u := range sizes {
		urls = append(urls, u)
	}
	sort.Slice(urls, func(i, j int) bool {
		ai, aj := area(sizes[urls[i]]), area(sizes[urls[j]])
		if ai != aj {
			return ai > aj
		}
		return urls[i] < urls[j]
	})
	return urls
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
