package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/helixir/news-admin-service/internal/domain"
)

// pageQuery holds the listing query parameters.
type pageQuery struct {
	Page          int  `query:"page" validate:"min=1"`
	PerPage       int  `query:"per_page" validate:"min=1,max=100"`
	PublishedOnly bool `query:"published_only"`
}

// searchQuery holds the search text.
type searchQuery struct {
	Q string `query:"q" validate:"required,min=1"`
}

// createNewsRequest is the JSON request body for creating an article.
// Title and content must be present but may be empty strings.
type createNewsRequest struct {
	Title       *string `json:"title" validate:"required,max=255"`
	Content     *string `json:"content" validate:"required"`
	IsPublished *bool   `json:"is_published"`
}

func (req createNewsRequest) toDraft() domain.NewsDraft {
	published := true
	if req.IsPublished != nil {
		published = *req.IsPublished
	}
	return domain.NewsDraft{
		Title:       *req.Title,
		Content:     *req.Content,
		IsPublished: published,
	}
}

// optionalField records whether a JSON key was present and whether it was null.
// Omitted keys leave Set false; encoding/json calls UnmarshalJSON for null too.
type optionalField[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *optionalField[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// ptr returns a pointer to the value when the field was supplied.
func (o optionalField[T]) ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// updateNewsRequest is the JSON request body for PUT and PATCH. Every field is optional.
type updateNewsRequest struct {
	Title       optionalField[string] `json:"title"`
	Content     optionalField[string] `json:"content"`
	IsPublished optionalField[bool]   `json:"is_published"`
}

// toPatch converts the request into a patch. Explicit nulls are rejected
// because none of the fields is nullable.
func (req updateNewsRequest) toPatch() (domain.NewsPatch, error) {
	switch {
	case req.Title.Null:
		return domain.NewsPatch{}, domain.NewValidationError("title", "must not be null")
	case req.Content.Null:
		return domain.NewsPatch{}, domain.NewValidationError("content", "must not be null")
	case req.IsPublished.Null:
		return domain.NewsPatch{}, domain.NewValidationError("is_published", "must not be null")
	}
	return domain.NewsPatch{
		Title:       req.Title.ptr(),
		Content:     req.Content.ptr(),
		IsPublished: req.IsPublished.ptr(),
	}, nil
}

// newValidator returns a validator that reports fields by their wire names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// validationError converts the first validator failure into a domain.ValidationError.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("request", "is invalid")
	}

	fe := fieldErrs[0]
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "min":
		msg = fmt.Sprintf("must be at least %s%s", fe.Param(), unit)
	case "max":
		msg = fmt.Sprintf("must be at most %s%s", fe.Param(), unit)
	default:
		msg = "is invalid"
	}
	return domain.NewValidationError(fe.Field(), msg)
}

// parsePageQuery reads page, per_page and published_only, applying defaults
// for omitted parameters.
func (s *Server) parsePageQuery(r *http.Request) (pageQuery, error) {
	q := r.URL.Query()
	pq := pageQuery{
		Page:          domain.DefaultPage,
		PerPage:       s.cfg.DefaultPerPage,
		PublishedOnly: true,
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return pq, domain.NewValidationError("page", "must be an integer")
		}
		pq.Page = n
	}
	if v := q.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return pq, domain.NewValidationError("per_page", "must be an integer")
		}
		pq.PerPage = n
	}
	if v := q.Get("published_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return pq, domain.NewValidationError("published_only", "must be a boolean")
		}
		pq.PublishedOnly = b
	}

	if err := s.validate.Struct(pq); err != nil {
		return pq, validationError(err)
	}
	if pq.PerPage > s.cfg.MaxPerPage {
		return pq, domain.NewValidationError("per_page", fmt.Sprintf("must be at most %d", s.cfg.MaxPerPage))
	}
	if err := pq.toPageRequest().Validate(); err != nil {
		return pq, err
	}
	return pq, nil
}

func (pq pageQuery) toPageRequest() domain.PageRequest {
	return domain.PageRequest{
		Page:          pq.Page,
		PerPage:       pq.PerPage,
		PublishedOnly: pq.PublishedOnly,
	}
}

// parseNewsID reads the {newsID} path parameter. IDs must be positive integers.
func parseNewsID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}
