package cataloging

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/bookloader/bookloader/internal/config"
	"github.com/bookloader/bookloader/internal/isbn"
	"github.com/bookloader/bookloader/internal/models"
	"github.com/bookloader/bookloader/internal/sources"
)

type stubAdapter struct {
	id      models.SourceID
	partial models.Partial
	err     error
}

func (s *stubAdapter) ID() models.SourceID { return s.id }

func (s *stubAdapter) Fetch(ctx context.Context, isbn string) (models.Partial, error) {
	return s.partial, s.err
}

func TestLookupAgreeingSources(t *testing.T) {
	adapters := []sources.Adapter{
		&stubAdapter{id: models.SourceAmazon, partial: models.Partial{models.FieldTitle: {"Foo"}}},
		&stubAdapter{id: models.SourceGoodreads, partial: models.Partial{models.FieldTitle: {"Foo"}}},
	}

	rec, err := NewService(config.Default(), adapters).Lookup(context.Background(), "9780000000002")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if got := rec.Value(models.FieldTitle); got != "Foo" {
		t.Errorf("Expected title Foo, got %q", got)
	}
	if rec.Sources[models.FieldTitle] != models.SourceAmazon {
		t.Errorf("Expected priority source amazon, got %s", rec.Sources[models.FieldTitle])
	}
	if rec.ISBN != "9780000000002" {
		t.Errorf("Expected isbn 9780000000002, got %s", rec.ISBN)
	}

	// Requested but unresolved fields are present and null
	if v, ok := rec.Values[models.FieldPublisher]; !ok || v != nil {
		t.Errorf("Expected null publisher, got %v (present %v)", v, ok)
	}
	if rec.Categories == nil || len(rec.Categories) != 0 {
		t.Errorf("Expected empty categories, got %v", rec.Categories)
	}
}

func TestLookupUnrequestedFieldsAbsent(t *testing.T) {
	cfg := config.Default()
	cfg.Fields[models.FieldPublisher] = false
	cfg.Fields[models.FieldCategories] = false
	cfg.Fields[models.FieldImage] = false

	adapters := []sources.Adapter{
		&stubAdapter{id: models.SourceAmazon, partial: models.Partial{
			models.FieldTitle:      {"Foo"},
			models.FieldPublisher:  {"Bar"},
			models.FieldCategories: {"Cooking"},
		}},
	}

	rec, err := NewService(cfg, adapters).Lookup(context.Background(), "978-0-00-000000-2")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	m := rec.Map()
	for _, field := range []string{"publisher", "categories", "image"} {
		if _, ok := m[field]; ok {
			t.Errorf("Expected %s absent, got %v", field, m[field])
		}
	}
	if m["title"] != "Foo" {
		t.Errorf("Expected title Foo, got %v", m["title"])
	}
	if v, ok := m["binding"]; !ok || v != nil {
		t.Errorf("Expected binding present and null, got %v (present %v)", v, ok)
	}
}

func TestLookupFullRecord(t *testing.T) {
	cfg := config.Default()
	cfg.Aliases = map[string]config.AliasList{
		"Food & Drink": {Values: []string{"cooking"}},
	}

	adapters := []sources.Adapter{
		&stubAdapter{id: models.SourceAmazon, partial: models.Partial{
			models.FieldTitle:       {"Italian Food"},
			models.FieldDescription: {"<p>Recipes from <b>Italy</b></p>"},
			models.FieldImage:       {"https://a/large.jpg", "https://a/small.jpg"},
			models.FieldCategories:  {"Cooking--Regional"},
		}},
		&stubAdapter{id: models.SourceGoodreads, err: errors.New("blocked")},
		&stubAdapter{id: models.SourceISBNdb, partial: models.Partial{
			models.FieldTitle:       {"Italian Food (Penguin Classics)"},
			models.FieldPublisher:   {"Penguin"},
			models.FieldDescription: {"None"},
			models.FieldCategories:  {"Travel, Italy"},
		}},
	}

	rec, err := NewService(cfg, adapters).Lookup(context.Background(), "9780000000002")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if got := rec.Value(models.FieldTitle); got != "Italian Food" {
		t.Errorf("Expected priority title, got %q", got)
	}
	if got := rec.Value(models.FieldPublisher); got != "Penguin" {
		t.Errorf("Expected publisher Penguin, got %q", got)
	}
	if got := rec.Lists[models.FieldDescription]; !reflect.DeepEqual(got, []string{"<p>Recipes from <b>Italy</b></p>"}) {
		t.Errorf("Unexpected descriptions: %v", got)
	}
	if got := rec.Lists[models.FieldImage]; len(got) != 2 {
		t.Errorf("Expected 2 images, got %v", got)
	}
	if expected := []string{"Food & Drink", "Travel"}; !reflect.DeepEqual(rec.Categories, expected) {
		t.Errorf("Expected %v, got %v", expected, rec.Categories)
	}
}

func TestLookupInvalidIdentifier(t *testing.T) {
	svc := NewService(config.Default(), nil)

	for _, id := range []string{"", "12345", "9780000000003", "not-an-isbn"} {
		if _, err := svc.Lookup(context.Background(), id); !errors.Is(err, isbn.ErrInvalid) {
			t.Errorf("Expected ErrInvalid for %q, got %v", id, err)
		}
	}
}

func TestAliasErrorsSurface(t *testing.T) {
	cfg := config.Default()
	cfg.Aliases["History"] = config.AliasList{Err: errors.New("aliases must be a list")}

	svc := NewService(cfg, nil)
	if got := len(svc.AliasErrors()); got != 1 {
		t.Errorf("Expected 1 alias error, got %d", got)
	}
	if got := svc.Classifier().Classify([]string{"History"}); !reflect.DeepEqual(got, []string{"History"}) {
		t.Errorf("Expected degraded category to match, got %v", got)
	}
}
