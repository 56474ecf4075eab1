package storage

import (
	"sync"
	"testing"

	"github.com/bookloader/bookloader/internal/models"
)

func TestRecordStore(t *testing.T) {
	s := New()

	if _, ok := s.Get("9780000000002"); ok {
		t.Fatal("Expected empty store")
	}

	s.Set(models.NewRecord("9780306406157"))
	s.Set(models.NewRecord("9780000000002"))

	if _, ok := s.Get("9780000000002"); !ok {
		t.Error("Expected record to be stored")
	}

	list := s.List()
	if len(list) != 2 || list[0].ISBN != "9780000000002" {
		t.Errorf("Expected records ordered by ISBN, got %v", list)
	}

	if !s.Delete("9780000000002") {
		t.Error("Expected delete to report an existing record")
	}
	if s.Delete("9780000000002") {
		t.Error("Expected second delete to report nothing removed")
	}
}

func TestRecordStoreConcurrent(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for _, id := range []string{"9780000000002", "9780306406157", "9780008296490"} {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Set(models.NewRecord(id))
		}()
		go func() {
			defer wg.Done()
			s.List()
		}()
	}
	wg.Wait()

	if got := len(s.List()); got != 3 {
		t.Errorf("Expected 3 records, got %d", got)
	}
}
