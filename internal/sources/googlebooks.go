package sources

import (
	"context"
	"fmt"
	"strings"

	books "google.golang.org/api/books/v1"
	"google.golang.org/api/option"

	"github.com/bookloader/bookloader/internal/models"
)

// GoogleBooks queries the Google Books volumes API
type GoogleBooks struct {
	service *books.Service
}

// NewGoogleBooks creates a Google Books adapter. An empty endpoint uses the
// public API; an empty key sends unauthenticated requests.
func NewGoogleBooks(ctx context.Context, endpoint, apiKey string, opts ...option.ClientOption) (*GoogleBooks, error) {
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	} else {
		opts = append(opts, option.WithoutAuthentication())
	}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	service, err := books.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create books service: %w", err)
	}
	return &GoogleBooks{service: service}, nil
}

// ID implements Adapter
func (g *GoogleBooks) ID() models.SourceID {
	return models.SourceGoogle
}

// Fetch implements Adapter
func (g *GoogleBooks) Fetch(ctx context.Context, isbn string) (models.Partial, error) {
	volumes, err := g.service.Volumes.List("isbn:" + isbn).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query google books: %w", err)
	}
	if len(volumes.Items) == 0 || volumes.Items[0].VolumeInfo == nil {
		return nil, ErrNotFound
	}

	info := volumes.Items[0].VolumeInfo

	p := models.Partial{}
	p.Set(models.FieldTitle, info.Title)
	p.Set(models.FieldAuthors, strings.Join(info.Authors, ", "))
	p.Set(models.FieldPublisher, info.Publisher)
	p.Set(models.FieldPublishDate, year(info.PublishedDate))
	p.Set(models.FieldDescription, info.Description)
	p.Add(models.FieldCategories, info.Categories...)

	if links := info.ImageLinks; links != nil {
		p.Add(models.FieldImage,
			links.ExtraLarge,
			links.Large,
			links.Medium,
			links.Small,
			links.Thumbnail,
			links.SmallThumbnail)
	}

	return p, nil
}
