package audit

import (
	"context"
	"sync"
)

// Store persists audit records. The memory implementation is the default;
// postgres is configured via FIELDGATE_AUDIT_DB_DSN.
type Store interface {
	Append(ctx context.Context, record Record) error
}

// MemoryStore keeps records in memory. Suitable for development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// Records returns a snapshot of everything appended so far.
func (s *MemoryStore) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
