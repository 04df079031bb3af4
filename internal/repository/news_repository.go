package repository

import (
	"context"

	"github.com/helixir/news-admin-service/internal/domain"
)

// NewsRepository handles news article persistence.
// Soft-deleted articles are invisible to every method: reads never return them
// and mutations treat them as missing.
type NewsRepository interface {
	// GetByID retrieves a news article by its ID.
	// Returns domain.ErrNotFound if no visible article exists.
	GetByID(ctx context.Context, id int64) (*domain.NewsArticle, error)

	// List retrieves one page of articles ordered by published_at descending,
	// newest first, with id descending as the tie-break.
	// When req.PublishedOnly is set, unpublished articles are excluded.
	// The total count reflects all matching records regardless of the page window.
	// Returns domain.ErrInvalidInput if the page request is out of range.
	List(ctx context.Context, req domain.PageRequest) ([]*domain.NewsArticle, int64, error)

	// Search is List restricted to articles whose title or content contains
	// query, compared case-insensitively. The query is matched literally.
	// Returns domain.ErrInvalidInput if query is empty.
	Search(ctx context.Context, query string, req domain.PageRequest) ([]*domain.NewsArticle, int64, error)

	// Create inserts a new article authored by authorID and returns it with the
	// store-assigned id, published_at and created_at.
	Create(ctx context.Context, draft domain.NewsDraft, authorID int64) (*domain.NewsArticle, error)

	// Update applies the fields present in patch and stamps updated_at and
	// updated_by, even when the patch is empty.
	// Returns domain.ErrNotFound if no visible article exists.
	Update(ctx context.Context, id int64, patch domain.NewsPatch, updatedBy int64) (*domain.NewsArticle, error)

	// SoftDelete stamps deleted_at and deleted_by. The row is kept.
	// Returns domain.ErrNotFound if no visible article exists, including when
	// the article was already deleted.
	SoftDelete(ctx context.Context, id int64, deletedBy int64) (*domain.NewsArticle, error)
}
