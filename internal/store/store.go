package store

import (
	"sort"
	"sync"

	"solar_analyzer/internal/model"
)

// Store holds hourly records in memory, one per (date, hour), kept in
// chronological order.
type Store struct {
	mu      sync.RWMutex
	records []model.HourlyRecord // sorted by date, hour
	index   map[string]int       // record key -> position in records
	sources []string
}

func New() *Store {
	return &Store{
		index: make(map[string]int),
	}
}

// AddRecords merges records from a named source. A record for a (date, hour)
// already present is replaced, so later sources win.
func (s *Store) AddRecords(source string, records []model.HourlyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if source != "" {
		s.sources = append(s.sources, source)
	}
	if len(records) == 0 {
		return
	}

	for _, r := range records {
		if i, ok := s.index[r.Key()]; ok {
			s.records[i] = r
			continue
		}
		s.records = append(s.records, r)
		s.index[r.Key()] = len(s.records) - 1
	}

	sort.SliceStable(s.records, func(i, j int) bool {
		return before(s.records[i], s.records[j])
	})
	for i, r := range s.records {
		s.index[r.Key()] = i
	}
}

func before(a, b model.HourlyRecord) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.HourOfDay() < b.HourOfDay()
}

// Records returns a copy of all records in chronological order.
func (s *Store) Records() []model.HourlyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.HourlyRecord, len(s.records))
	copy(result, s.records)
	return result
}

// Len returns the number of distinct (date, hour) records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Sources returns the source names in the order they were added.
func (s *Store) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]string, len(s.sources))
	copy(result, s.sources)
	return result
}

// DateRange returns the first and last dates held.
func (s *Store) DateRange() (model.DateRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return model.DateRange{}, false
	}
	return model.DateRange{
		Start: s.records[0].Date,
		End:   s.records[len(s.records)-1].Date,
	}, true
}

// RecordsInRange returns records dated between from and to, both inclusive
// (YYYY-MM-DD). An empty bound is open.
func (s *Store) RecordsInRange(from, to string) []model.HourlyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.records
	if len(all) == 0 {
		return nil
	}

	startIdx := 0
	if from != "" {
		startIdx = sort.Search(len(all), func(i int) bool {
			return all[i].Date >= from
		})
	}
	endIdx := len(all)
	if to != "" {
		endIdx = sort.Search(len(all), func(i int) bool {
			return all[i].Date > to
		})
	}

	if startIdx >= endIdx {
		return nil
	}

	result := make([]model.HourlyRecord, endIdx-startIdx)
	copy(result, all[startIdx:endIdx])
	return result
}

// Reset drops all records and sources.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.sources = nil
	s.index = make(map[string]int)
}
