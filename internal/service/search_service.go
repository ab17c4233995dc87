package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookdueapp/bookdue-server/internal/search"
	"github.com/bookdueapp/bookdue-server/internal/store"
)

// SearchService provides deadline search, always scoped to the calling user.
type SearchService struct {
	index  *search.SearchIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, s *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  s,
		logger: logger,
	}
}

// Search executes a search for the user. The user scope is forced here so a
// handler bug can never widen a query across accounts.
func (s *SearchService) Search(ctx context.Context, userID string, params search.SearchParams) (*search.SearchResult, error) {
	params.UserID = userID
	return s.index.Search(ctx, params)
}

// DocumentCount returns the number of indexed deadlines.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the search index from the store. Used at startup when
// the mapping version changed and after bulk imports.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	var docs []*search.SearchDocument
	for deadline, err := range s.store.Deadlines.List(ctx) {
		if err != nil {
			return fmt.Errorf("list deadlines: %w", err)
		}
		docs = append(docs, search.DeadlineToSearchDocument(deadline))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index deadlines: %w", err)
	}

	s.logger.Info("full reindex complete", "documents", len(docs))
	return nil
}
