package state

import (
	"context"
	"sync"
)

// CrawlState owns the search cursor and the set of listing paths already discovered
type CrawlState interface {
	// Offset returns the search offset of the next page to fetch
	Offset(ctx context.Context) (int, error)
	// Advance moves the cursor forward and returns the new offset
	Advance(ctx context.Context, by int) (int, error)
	// MarkSeen records path and reports whether it was new
	MarkSeen(ctx context.Context, path string) (bool, error)
}

type memoryState struct {
	mu     sync.Mutex
	offset int
	seen   map[string]struct{}
}

// NewMemoryState keeps the cursor and seen-set for the lifetime of the process only
func NewMemoryState(start int) CrawlState {
	return &memoryState{
		offset: start,
		seen:   make(map[string]struct{}),
	}
}

func (s *memoryState) Offset(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset, nil
}

func (s *memoryState) Advance(ctx context.Context, by int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset += by
	return s.offset, nil
}

func (s *memoryState) MarkSeen(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[path]; ok {
		return false, nil
	}
	s.seen[path] = struct{}{}
	return true, nil
}
