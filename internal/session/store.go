package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aarunima248/fake-news/internal/engine"
)

// ErrStoreFull is returned by Append when the session has reached its record
// limit. The history is left unchanged; the caller can export or clear.
var ErrStoreFull = errors.New("session history is full")

// Store is one session's analysis history. Records are appended and never
// edited or removed individually; Clear is the only way to discard them.
// Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	max     int
	records []Record
}

// NewStore returns an empty history holding at most max records. A
// non-positive max means unbounded.
func NewStore(max int) *Store {
	return &Store{max: max}
}

// Append adds a record to the history.
func (s *Store) Append(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 && len(s.records) >= s.max {
		return fmt.Errorf("%w: limit of %d records reached", ErrStoreFull, s.max)
	}
	s.records = append(s.records, r)
	return nil
}

// Records returns a copy of the history in append order.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len reports the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Clear irreversibly empties the history. The session itself stays alive.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

// Stats computes summary statistics over the history.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Total: len(s.records)}
	var confSum float64
	var confN int
	for _, r := range s.records {
		switch r.Prediction {
		case engine.VerdictReal:
			st.Real++
		case engine.VerdictFake:
			st.Fake++
		}
		if r.Confidence != nil {
			confSum += *r.Confidence
			confN++
		}
	}
	if st.Total > 0 {
		st.RealPct = float64(st.Real) / float64(st.Total) * 100
		st.FakePct = float64(st.Fake) / float64(st.Total) * 100
		last := s.records[len(s.records)-1].Timestamp
		st.LastAnalyzedAt = &last
	}
	if confN > 0 {
		avg := confSum / float64(confN)
		st.AvgConfidence = &avg
	}
	return st
}
