package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/bookloader/bookloader/internal/models"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func TestLoadText(t *testing.T) {
	path := writeFile(t, "isbns.txt", "# to catalogue\n9780000000002\n\n  978-0-306-40615-7  \n9780008296490,paperback\n")

	ids, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	expected := []string{"9780000000002", "978-0-306-40615-7", "9780008296490"}
	if !reflect.DeepEqual(ids, expected) {
		t.Errorf("Expected %v, got %v", expected, ids)
	}
}

func TestLoadJSONL(t *testing.T) {
	path := writeFile(t, "isbns.jsonl", `{"isbn":"9780000000002"}
{"title":"no isbn"}

{"isbn":"9780306406157","note":"extra fields are ignored"}
`)

	ids, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	expected := []string{"9780000000002", "9780306406157"}
	if !reflect.DeepEqual(ids, expected) {
		t.Errorf("Expected %v, got %v", expected, ids)
	}

	if _, err := Load(writeFile(t, "bad.jsonl", "{not json}\n")); err == nil {
		t.Error("Expected error for malformed JSON, got nil")
	}
}

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isbns.parquet")
	entries := []Entry{{ISBN: "9780000000002"}, {ISBN: ""}, {ISBN: "9780306406157"}}
	if err := parquet.WriteFile(path, entries); err != nil {
		t.Fatalf("Failed to write parquet: %v", err)
	}

	ids, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	expected := []string{"9780000000002", "9780306406157"}
	if !reflect.DeepEqual(ids, expected) {
		t.Errorf("Expected %v, got %v", expected, ids)
	}
}

func TestLoadUnsupported(t *testing.T) {
	if _, err := Load(writeFile(t, "isbns.xlsx", "")); err == nil {
		t.Error("Expected error for unsupported format, got nil")
	}
}

type stubLooker struct {
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (s *stubLooker) Lookup(ctx context.Context, id string) (*models.Record, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.maxInFlight.Load()
		if n <= peak || s.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	if id == "bad" {
		return nil, errors.New("invalid identifier")
	}
	return models.NewRecord(id), nil
}

func TestRun(t *testing.T) {
	looker := &stubLooker{}
	ids := []string{"9780000000002", "bad", "9780306406157", "9780008296490", "9781111111111"}

	results := Run(context.Background(), looker, ids, 2)

	if len(results) != len(ids) {
		t.Fatalf("Expected %d results, got %d", len(ids), len(results))
	}
	for i, r := range results {
		if r.ISBN != ids[i] {
			t.Errorf("Expected result %d for %s, got %s", i, ids[i], r.ISBN)
		}
	}
	if results[1].Err == nil {
		t.Error("Expected failure for bad identifier")
	}
	if got := looker.maxInFlight.Load(); got > 2 {
		t.Errorf("Expected at most 2 concurrent lookups, got %d", got)
	}

	summary := Summarize(results)
	if summary.Total != 5 || summary.Succeeded != 4 || summary.Failed != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if got := len(Records(results)); got != 4 {
		t.Errorf("Expected 4 records, got %d", got)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, &stubLooker{}, []string{"9780000000002"}, 1)
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", results[0].Err)
	}
}
