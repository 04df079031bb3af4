// Package domain provides the news article model, the pagination contract
// and the error types shared by the news admin service.
package domain

import (
	"time"
	"unicode/utf8"
)

// EntityNews is the entity name used in NotFoundError for news articles.
const EntityNews = "news"

// MaxTitleLength is the maximum title length in characters.
const MaxTitleLength = 255

// Audit holds the bookkeeping columns carried by every persisted entity.
type Audit struct {
	CreatedAt time.Time  `json:"created_at"`
	CreatedBy *int64     `json:"created_by,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	UpdatedBy *int64     `json:"updated_by,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy *int64     `json:"deleted_by,omitempty"`
}

// IsDeleted reports whether the entity carries a soft-delete tombstone.
func (a Audit) IsDeleted() bool {
	return a.DeletedAt != nil
}

// NewsArticle is a persisted news article.
type NewsArticle struct {
	ID          int64
	Title       string
	Content     string
	AuthorID    *int64
	PublishedAt *time.Time
	IsPublished bool
	Audit
}

// NewsDraft is the input for creating a news article.
type NewsDraft struct {
	Title       string
	Content     string
	IsPublished bool
}

// Validate checks the title length. Empty title and content are accepted;
// presence of both fields is enforced where the request is decoded.
func (d NewsDraft) Validate() error {
	return validateTitle(d.Title)
}

// NewsPatch is a partial update. A nil field is left untouched.
type NewsPatch struct {
	Title       *string
	Content     *string
	IsPublished *bool
}

// IsEmpty reports whether the patch changes no content fields.
func (p NewsPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.IsPublished == nil
}

// Validate checks only the fields present in the patch.
func (p NewsPatch) Validate() error {
	if p.Title != nil {
		return validateTitle(*p.Title)
	}
	return nil
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return NewValidationError("title", "must be at most 255 characters")
	}
	return nil
}
