// Package memory keeps the run journal in process memory.
package memory

import (
	"context"

	"github.com/viant/mgmtflow/internal/dao"
	"github.com/viant/mgmtflow/journal"
)

// Service is an in-memory journal store.
type Service struct {
	*dao.MemoryStore[string, journal.Run]
}

var _ journal.Store = (*Service)(nil)

// List returns matching runs, newest first.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*journal.Run, error) {
	runs, err := s.MemoryStore.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	journal.SortByStart(runs)
	return runs, nil
}

// New creates a store.
func New() *Service {
	return &Service{
		MemoryStore: dao.NewMemoryStore[string, journal.Run](func(r *journal.Run) string { return r.ID }, journal.MatchState),
	}
}
