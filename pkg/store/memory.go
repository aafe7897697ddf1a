package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/vxgraph/pkg/report"
)

// MemoryStore keeps reports in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*report.Report
	order   []Summary
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports: make(map[string]*report.Report),
		now:     time.Now,
	}
}

// Put stores r.
func (s *MemoryStore) Put(_ context.Context, r *report.Report) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("store report: missing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = slices.DeleteFunc(s.order, func(sum Summary) bool { return sum.ID == r.ID })
	s.order = append(s.order, summarize(r, s.now()))
	s.reports[r.ID] = r
	return nil
}

// Get returns the report with the given id.
func (s *MemoryStore) Get(_ context.Context, id string) (*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

// List returns summaries, newest first.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(listLimit(limit), len(s.order))
	out := make([]Summary, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.order[i])
	}
	return out, nil
}

// Close does nothing.
func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
