package httpserver

import (
	"time"

	"github.com/helixir/news-admin-service/internal/domain"
	"github.com/helixir/news-admin-service/internal/service"
)

// News response types for JSON serialization. Nullable fields are emitted as null.

type newsResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	IsPublished bool       `json:"is_published"`
	AuthorID    *int64     `json:"author_id"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at"`
}

type newsPageResponse struct {
	Items   []newsResponse `json:"items"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Pages   int            `json:"pages"`
}

// Converter functions

func domainNewsToResponse(a *domain.NewsArticle) newsResponse {
	return newsResponse{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		IsPublished: a.IsPublished,
		AuthorID:    a.AuthorID,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		DeletedAt:   a.DeletedAt,
	}
}

func newsPageToResponse(p service.NewsPage) newsPageResponse {
	items := make([]newsResponse, len(p.Items))
	for i, a := range p.Items {
		items[i] = domainNewsToResponse(a)
	}
	return newsPageResponse{
		Items:   items,
		Total:   p.Total,
		Page:    p.Page,
		PerPage: p.PerPage,
		Pages:   p.Pages,
	}
}
