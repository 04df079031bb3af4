package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/helixir/news-admin-service/internal/database"
	"github.com/helixir/news-admin-service/internal/domain"
)

const newsTable = "news"

// newsColumns is the column list shared by every statement that returns articles.
// The order must match newsScanDest.destinations.
var newsColumns = []string{
	"id", "title", "content", "author_id", "published_at", "is_published",
	"created_at", "created_by", "updated_at", "updated_by", "deleted_at", "deleted_by",
}

var newsReturning = "RETURNING " + strings.Join(newsColumns, ", ")

// PgNewsRepository implements NewsRepository using PostgreSQL.
type PgNewsRepository struct {
	db DBTX
}

// Compile-time check that PgNewsRepository implements NewsRepository.
var _ NewsRepository = (*PgNewsRepository)(nil)

// NewPgNewsRepository creates a new PostgreSQL news repository.
func NewPgNewsRepository(db DBTX) *PgNewsRepository {
	return &PgNewsRepository{db: db}
}

// GetByID retrieves a visible news article by its ID.
func (r *PgNewsRepository) GetByID(ctx context.Context, id int64) (*domain.NewsArticle, error) {
	query, args, err := selectVisible(newsTable, newsColumns...).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build news query: %w", err)
	}

	article, err := scanNews(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNewsNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get news: %w", err)
	}
	return article, nil
}

// List retrieves one page of visible news articles.
func (r *PgNewsRepository) List(ctx context.Context, req domain.PageRequest) ([]*domain.NewsArticle, int64, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}
	return r.page(ctx, "", req)
}

// Search retrieves one page of visible news articles matching query.
func (r *PgNewsRepository) Search(ctx context.Context, query string, req domain.PageRequest) ([]*domain.NewsArticle, int64, error) {
	if query == "" {
		return nil, 0, domain.NewValidationError("q", "is required")
	}
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}
	return r.page(ctx, query, req)
}

// filterNews adds the listing predicates to b. An empty query disables the text match.
func filterNews(b sq.SelectBuilder, query string, publishedOnly bool) sq.SelectBuilder {
	if publishedOnly {
		b = b.Where(sq.Eq{"is_published": true})
	}
	if query != "" {
		pattern := containsPattern(query)
		b = b.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"content": pattern},
		})
	}
	return b
}

// page runs the count query and the page query over the same predicate set
// inside one read-only snapshot, so total always agrees with the page.
func (r *PgNewsRepository) page(ctx context.Context, query string, req domain.PageRequest) ([]*domain.NewsArticle, int64, error) {
	countQuery, countArgs, err := filterNews(selectVisible(newsTable, "count(*)"), query, req.PublishedOnly).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build news count query: %w", err)
	}

	pageQuery, pageArgs, err := filterNews(selectVisible(newsTable, newsColumns...), query, req.PublishedOnly).
		OrderBy("published_at DESC", "id DESC").
		Limit(uint64(req.PerPage)).
		Offset(uint64(req.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build news page query: %w", err)
	}

	var (
		total    int64
		articles []*domain.NewsArticle
	)
	err = database.InSnapshot(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count news: %w", err)
		}

		rows, err := tx.Query(ctx, pageQuery, pageArgs...)
		if err != nil {
			return fmt.Errorf("failed to query news: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			article, err := scanNewsFromRows(rows)
			if err != nil {
				return fmt.Errorf("failed to scan news: %w", err)
			}
			articles = append(articles, article)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating news: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return articles, total, nil
}

// Create inserts a new news article.
func (r *PgNewsRepository) Create(ctx context.Context, draft domain.NewsDraft, authorID int64) (*domain.NewsArticle, error) {
	query, args, err := psql.Insert(newsTable).
		Columns("title", "content", "is_published", "author_id", "created_by").
		Values(draft.Title, draft.Content, draft.IsPublished, authorID, authorID).
		Suffix(newsReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build news insert: %w", err)
	}

	article, err := scanNews(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to create news: %w", err)
	}
	return article, nil
}

// Update applies patch to a visible news article in a single conditional statement.
func (r *PgNewsRepository) Update(ctx context.Context, id int64, patch domain.NewsPatch, updatedBy int64) (*domain.NewsArticle, error) {
	b := updateVisible(newsTable, id)
	if patch.Title != nil {
		b = b.Set("title", *patch.Title)
	}
	if patch.Content != nil {
		b = b.Set("content", *patch.Content)
	}
	if patch.IsPublished != nil {
		b = b.Set("is_published", *patch.IsPublished)
	}

	query, args, err := b.
		Set("updated_at", sq.Expr("now()")).
		Set("updated_by", updatedBy).
		Suffix(newsReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build news update: %w", err)
	}

	article, err := scanNews(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNewsNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to update news: %w", err)
	}
	return article, nil
}

// SoftDelete tombstones a visible news article in a single conditional statement.
func (r *PgNewsRepository) SoftDelete(ctx context.Context, id int64, deletedBy int64) (*domain.NewsArticle, error) {
	query, args, err := updateVisible(newsTable, id).
		Set("deleted_at", sq.Expr("now()")).
		Set("deleted_by", deletedBy).
		Suffix(newsReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build news delete: %w", err)
	}

	article, err := scanNews(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNewsNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to delete news: %w", err)
	}
	return article, nil
}

// newsScanDest holds the destination pointers for scanning a NewsArticle row.
// This eliminates code duplication between pgx.Row and pgx.Rows scanning.
type newsScanDest struct {
	article domain.NewsArticle
}

// destinations returns the slice of pointers for Scan operations.
func (d *newsScanDest) destinations() []interface{} {
	a := &d.article
	return []interface{}{
		&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.PublishedAt, &a.IsPublished,
		&a.CreatedAt, &a.CreatedBy, &a.UpdatedAt, &a.UpdatedBy, &a.DeletedAt, &a.DeletedBy,
	}
}

// scanNews scans a single row into a NewsArticle.
func scanNews(row pgx.Row) (*domain.NewsArticle, error) {
	var dest newsScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return &dest.article, nil
}

// scanNewsFromRows scans the current row from pgx.Rows into a NewsArticle.
func scanNewsFromRows(rows pgx.Rows) (*domain.NewsArticle, error) {
	var dest newsScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return &dest.article, nil
}
