package storage

import (
	"sort"
	"sync"

	"github.com/bookloader/bookloader/internal/models"
)

// RecordStore keeps the records looked up during a server's lifetime
type RecordStore struct {
	records map[string]*models.Record
	mu      sync.RWMutex
}

func New() *RecordStore {
	return &RecordStore{
		records: make(map[string]*models.Record),
	}
}

func (s *RecordStore) Get(isbn string) (*models.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, exists := s.records[isbn]
	return record, exists
}

func (s *RecordStore) Set(record *models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ISBN] = record
}

// List returns every record ordered by ISBN
func (s *RecordStore) List() []*models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Record, 0, len(s.records))
	for _, v := range s.records {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ISBN < result[j].ISBN
	})
	return result
}

func (s *RecordStore) Delete(isbn string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.records[isbn]
	delete(s.records, isbn)
	return exists
}
