// Package service orchestrates news operations between the HTTP boundary and
// the repository: it wraps listings into pages, reduces deletes to a boolean
// outcome and records the operation metrics.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/helixir/news-admin-service/internal/domain"
	"github.com/helixir/news-admin-service/internal/observability"
	"github.com/helixir/news-admin-service/internal/repository"
)

// Operation names used for metrics labels.
const (
	opGet    = "get"
	opList   = "list"
	opSearch = "search"
	opUpdate = "update"
	opDelete = "delete"
)

// NewsPage is one page of news articles.
type NewsPage = domain.Page[*domain.NewsArticle]

// NewsService provides news article operations.
type NewsService struct {
	repo    repository.NewsRepository
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewNewsService creates a new NewsService.
func NewNewsService(repo repository.NewsRepository, metrics *observability.Metrics, logger zerolog.Logger) *NewsService {
	return &NewsService{
		repo:    repo,
		metrics: metrics,
		logger:  observability.WithComponent(logger, "news_service"),
	}
}

// GetOne returns a visible article. A missing or deleted article yields domain.ErrNotFound.
func (s *NewsService) GetOne(ctx context.Context, id int64) (*domain.NewsArticle, error) {
	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.recordNotFound(opGet, err)
		return nil, err
	}
	return article, nil
}

// ListPage returns one page of articles, newest first.
func (s *NewsService) ListPage(ctx context.Context, req domain.PageRequest) (NewsPage, error) {
	articles, total, err := s.repo.List(ctx, req)
	if err != nil {
		return NewsPage{}, err
	}

	s.metrics.RecordNewsPage(opList, len(articles))
	return domain.NewPage(articles, total, req), nil
}

// Search returns one page of articles whose title or content contains query.
func (s *NewsService) Search(ctx context.Context, query string, req domain.PageRequest) (NewsPage, error) {
	articles, total, err := s.repo.Search(ctx, query, req)
	if err != nil {
		return NewsPage{}, err
	}

	s.metrics.RecordNewsPage(opSearch, len(articles))
	return domain.NewPage(articles, total, req), nil
}

// Create persists a new article authored by authorID.
func (s *NewsService) Create(ctx context.Context, draft domain.NewsDraft, authorID int64) (*domain.NewsArticle, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	article, err := s.repo.Create(ctx, draft, authorID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordNewsCreated()
	logger := observability.WithNewsContext(s.logger, article.ID, authorID)
	logger.Info().Msg("news created")
	return article, nil
}

// Update applies the fields present in patch.
func (s *NewsService) Update(ctx context.Context, id int64, patch domain.NewsPatch, updatedBy int64) (*domain.NewsArticle, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	article, err := s.repo.Update(ctx, id, patch, updatedBy)
	if err != nil {
		s.recordNotFound(opUpdate, err)
		return nil, err
	}

	s.metrics.RecordNewsUpdated()
	logger := observability.WithNewsContext(s.logger, id, updatedBy)
	logger.Info().
		Bool("empty_patch", patch.IsEmpty()).
		Msg("news updated")
	return article, nil
}

// Delete soft-deletes an article. It reports false, without error, when the
// article does not exist or was already deleted.
func (s *NewsService) Delete(ctx context.Context, id int64, deletedBy int64) (bool, error) {
	if _, err := s.repo.SoftDelete(ctx, id, deletedBy); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.RecordNewsNotFound(opDelete)
			return false, nil
		}
		return false, fmt.Errorf("delete news %d: %w", id, err)
	}

	s.metrics.RecordNewsDeleted()
	logger := observability.WithNewsContext(s.logger, id, deletedBy)
	logger.Info().Msg("news deleted")
	return true, nil
}

func (s *NewsService) recordNotFound(operation string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		s.metrics.RecordNewsNotFound(operation)
	}
}
