package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/repo"
	"github.com/tbourn/go-suits-backend/internal/search"
)

// SearchService answers content queries against an in-memory index of
// recent posts. The index is rebuilt lazily once it is older than TTL, so
// results may trail writes by up to that window.
type SearchService struct {
	DB *gorm.DB

	// MaxIndexed bounds how many recent posts enter the index.
	MaxIndexed int
	// TTL is how long a built index is served before a rebuild.
	TTL time.Duration

	mu      sync.Mutex
	idx     search.Index
	builtAt time.Time
}

// NewSearchService constructs a SearchService with sensible bounds.
func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{
		DB:         db,
		MaxIndexed: 5000,
		TTL:        30 * time.Second,
	}
}

// Search returns up to k posts most similar to the query.
func (s *SearchService) Search(ctx context.Context, query string, k int) ([]search.Result, error) {
	idx, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return idx.TopK(query, k), nil
}

// current returns the cached index, rebuilding it when stale.
func (s *SearchService) current(ctx context.Context) (search.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx != nil && time.Since(s.builtAt) < s.TTL {
		return s.idx, nil
	}

	posts, err := repo.ListRecentPosts(ctx, s.DB, 0, s.MaxIndexed)
	if err != nil {
		// A stale index beats an error when one exists.
		if s.idx != nil {
			return s.idx, nil
		}
		return nil, err
	}

	entries := make([]search.Entry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, search.Entry{ID: p.ID, Creator: p.Creator, Content: p.Content})
	}
	s.idx = search.NewIndex(entries)
	s.builtAt = time.Now()
	return s.idx, nil
}
