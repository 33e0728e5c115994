package logging

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory. It is the default store of a run.
type MemoryStore struct {
	mu   sync.RWMutex
	recs []LogRecord
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(ctx context.Context, rec LogRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.recs = append(s.recs, rec)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, q LogQuery) ([]LogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []LogRecord
	for _, r := range s.recs {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (s *MemoryStore) Close() error { return nil }
