package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/bookloader/bookloader/internal/cataloging"
	"github.com/bookloader/bookloader/internal/config"
	"github.com/bookloader/bookloader/internal/models"
	"github.com/bookloader/bookloader/internal/sources"
)

type stubAdapter struct {
	partial models.Partial
}

func (s *stubAdapter) ID() models.SourceID { return models.SourceAmazon }

func (s *stubAdapter) Fetch(ctx context.Context, isbn string) (models.Partial, error) {
	return s.partial, nil
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	cfg := config.Default()
	svc := cataloging.NewService(cfg, []sources.Adapter{
		&stubAdapter{partial: models.Partial{
			models.FieldTitle:      {"Foo"},
			models.FieldCategories: {"Cooking"},
		}},
	})
	mux := http.NewServeMux()
	New(svc).Routes(mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestLookupAndRecords(t *testing.T) {
	mux := newTestMux(t)

	rec := do(mux, http.MethodGet, "/api/lookup?isbn=9780000000002", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var record map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&record); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if record["title"] != "Foo" {
		t.Errorf("Expected title Foo, got %v", record["title"])
	}
	if v, ok := record["publisher"]; !ok || v != nil {
		t.Errorf("Expected publisher null, got %v (present %v)", v, ok)
	}
	if got := record["categories"]; !reflect.DeepEqual(got, []any{"Food & Drink"}) {
		t.Errorf("Expected [Food & Drink], got %v", got)
	}

	rec = do(mux, http.MethodGet, "/api/records", "")
	var list []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 stored record, got %d", len(list))
	}

	if rec := do(mux, http.MethodGet, "/api/records/978-0-00-000000-2", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for stored record, got %d", rec.Code)
	}
	if rec := do(mux, http.MethodDelete, "/api/records/9780000000002", ""); rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
	if rec := do(mux, http.MethodGet, "/api/records/9780000000002", ""); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", rec.Code)
	}
}

func TestLookupErrors(t *testing.T) {
	mux := newTestMux(t)

	tests := []struct {
		name   string
		method string
		target string
		code   int
	}{
		{name: "missing isbn", method: http.MethodGet, target: "/api/lookup", code: http.StatusBadRequest},
		{name: "invalid isbn", method: http.MethodGet, target: "/api/lookup?isbn=12345", code: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodPost, target: "/api/lookup?isbn=9780000000002", code: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(mux, tt.method, tt.target, ""); rec.Code != tt.code {
				t.Errorf("Expected %d, got %d", tt.code, rec.Code)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	mux := newTestMux(t)

	rec := do(mux, http.MethodPost, "/api/classify", `{"categories":["Cooking--Regional","Travel"],"explain":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ClassifyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if expected := []string{"Food & Drink", "Travel"}; !reflect.DeepEqual(resp.Categories, expected) {
		t.Errorf("Expected %v, got %v", expected, resp.Categories)
	}
	if len(resp.Matches) != 2 {
		t.Errorf("Expected 2 explained matches, got %d", len(resp.Matches))
	}

	if rec := do(mux, http.MethodPost, "/api/classify", "{"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad JSON, got %d", rec.Code)
	}
}

func TestClassifyRejectsOversizedRequests(t *testing.T) {
	mux := newTestMux(t)

	tooManyWords := strings.TrimSpace(strings.Repeat("cooking ", config.Default().ClassifyWordLimit+1))
	hugeBody := `{"categories":["` + strings.Repeat("a", maxClassifyBody) + `"]}`

	tests := []struct {
		name string
		body string
	}{
		{"word limit", `{"categories":["` + tooManyWords + `"]}`},
		{"word limit across delimiters", `{"categories":["` + strings.ReplaceAll(tooManyWords, " ", "--") + `"]}`},
		{"body limit", hugeBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(mux, http.MethodPost, "/api/classify", tt.body)
			if rec.Code != http.StatusRequestEntityTooLarge {
				t.Errorf("Expected 413, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		raw      []string
		expected int
	}{
		{nil, 0},
		{[]string{"Cooking--Regional", "Travel"}, 3},
		{[]string{"  History,  Modern  "}, 2},
	}

	for _, tt := range tests {
		if got := countWords(tt.raw); got != tt.expected {
			t.Errorf("Expected %d words for %v, got %d", tt.expected, tt.raw, got)
		}
	}
}

func TestHealthcheck(t *testing.T) {
	rec := do(newTestMux(t), http.MethodGet, "/healthcheck", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("Expected 200 OK, got %d %q", rec.Code, rec.Body.String())
	}
}
