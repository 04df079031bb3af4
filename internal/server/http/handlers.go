package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/helixir/news-admin-service/internal/domain"
)

const maxRequestBodySize = 1 << 20 // 1 MB limit for request bodies

// listNews handles GET /api/v1/news.
func (s *Server) listNews(w http.ResponseWriter, r *http.Request) {
	pq, err := s.parsePageQuery(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	page, err := s.news.ListPage(r.Context(), pq.toPageRequest())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newsPageToResponse(page))
}

// searchNews handles GET /api/v1/news/search.
func (s *Server) searchNews(w http.ResponseWriter, r *http.Request) {
	pq, err := s.parsePageQuery(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	sq := searchQuery{Q: r.URL.Query().Get("q")}
	if err := s.validate.Struct(sq); err != nil {
		writeDomainError(w, r, validationError(err))
		return
	}

	page, err := s.news.Search(r.Context(), sq.Q, pq.toPageRequest())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newsPageToResponse(page))
}

// getNews handles GET /api/v1/news/{newsID}.
func (s *Server) getNews(w http.ResponseWriter, r *http.Request) {
	id, err := parseNewsID(chi.URLParam(r, "newsID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	article, err := s.news.GetOne(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domainNewsToResponse(article))
}

// createNews handles POST /api/v1/news.
func (s *Server) createNews(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(r)
	if !ok {
		writeDomainError(w, r, domain.ErrUnauthorized)
		return
	}

	var req createNewsRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeDomainError(w, r, validationError(err))
		return
	}

	article, err := s.news.Create(r.Context(), req.toDraft(), identity.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/news/"+strconv.FormatInt(article.ID, 10))
	writeJSON(w, http.StatusCreated, domainNewsToResponse(article))
}

// updateNews handles PUT and PATCH /api/v1/news/{newsID}. Both apply only
// the fields present in the body.
func (s *Server) updateNews(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(r)
	if !ok {
		writeDomainError(w, r, domain.ErrUnauthorized)
		return
	}

	id, err := parseNewsID(chi.URLParam(r, "newsID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req updateNewsRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	article, err := s.news.Update(r.Context(), id, patch, identity.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domainNewsToResponse(article))
}

// deleteNews handles DELETE /api/v1/news/{newsID}.
func (s *Server) deleteNews(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(r)
	if !ok {
		writeDomainError(w, r, domain.ErrUnauthorized)
		return
	}

	id, err := parseNewsID(chi.URLParam(r, "newsID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	deleted, err := s.news.Delete(r.Context(), id, identity.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !deleted {
		writeDomainError(w, r, domain.NewNewsNotFoundError(id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody reads a size-limited JSON body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		return domain.NewValidationError("body", "could not be read")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.NewValidationError("body", "must be a valid JSON object")
	}
	return nil
}

// writeDomainError maps domain errors to HTTP status codes. Unmapped errors
// are logged and reported as 500 without detail.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "news not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Field+": "+ve.Message)
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrRateLimited):
		var rle *domain.RateLimitError
		if errors.As(err, &rle) && rle.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int((rle.RetryAfter+time.Second-1)/time.Second)))
		}
		writeError(w, http.StatusTooManyRequests, "rate limited")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
