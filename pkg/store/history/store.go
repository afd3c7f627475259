package history

import (
	"sort"
	"sync"
	"time"

	"github.com/nutri-tools/nutri/pkg/models/domain"
)

// Predicate selects records for aggregation.
type Predicate func(domain.AnalysisRecord) bool

// Store is the append-only, insertion-ordered collection of canonical
// records. Records are never mutated once appended; removal keeps the order
// of the survivors.
type Store struct {
	mu      sync.RWMutex
	records []domain.AnalysisRecord
}

func NewStore() *Store {
	return &Store{records: make([]domain.AnalysisRecord, 0)}
}

// Append adds a record at the end. It never fails for a well-formed record.
func (s *Store) Append(rec domain.AnalysisRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// Remove deletes the record with the given id. It is a no-op when the id is
// absent so that duplicate delete dispatches stay idempotent. Reports whether
// anything was removed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.records {
		if rec.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the store unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
}

// Len reports the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// AggregateFor folds the totals of all records matching p. An empty match set
// yields the zero aggregate. The fold never mutates the store.
func (s *Store) AggregateFor(p Predicate) domain.TotalNutrition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var agg domain.TotalNutrition
	for _, rec := range s.records {
		if p(rec) {
			agg = agg.Add(rec.Total)
		}
	}
	return agg
}

// CountFor reports how many records match p.
func (s *Store) CountFor(p Predicate) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rec := range s.records {
		if p(rec) {
			n++
		}
	}
	return n
}

// TopN returns the n most recent records, timestamp descending. Records with
// equal timestamps tie-break on insertion order, later insertion first.
func (s *Store) TopN(n int) []domain.AnalysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AnalysisRecord, len(s.records))
	// Reverse insertion order so a stable sort keeps later insertions first
	// among equal timestamps.
	for i, rec := range s.records {
		out[len(s.records)-1-i] = rec
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if n < 0 || n > len(out) {
		n = len(out)
	}
	return out[:n]
}

// Snapshot returns a copy of all records in insertion order.
func (s *Store) Snapshot() []domain.AnalysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AnalysisRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Replace swaps the contents wholesale. Used when loading a persisted
// snapshot at startup.
func (s *Store) Replace(records []domain.AnalysisRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make([]domain.AnalysisRecord, len(records))
	copy(s.records, records)
}

// SameDay matches records whose timestamp falls on the same calendar day as
// ref, in ref's location. The home view calls it with time.Now() on every
// request: "today" changes without any data mutation, so it is never cached.
func SameDay(ref time.Time) Predicate {
	y, m, d := ref.Date()
	loc := ref.Location()
	return func(rec domain.AnalysisRecord) bool {
		ry, rm, rd := rec.Timestamp.In(loc).Date()
		return ry == y && rm == m && rd == d
	}
}
