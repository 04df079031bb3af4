package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/helixir/news-admin-service/internal/auth"
	"github.com/helixir/news-admin-service/internal/domain"
	"github.com/helixir/news-admin-service/internal/observability"
)

const (
	headerCorrelationID = "X-Correlation-ID"
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
)

// correlationIDMiddleware ensures every request has a correlation ID and
// attaches the request and correlation IDs to the request logger.
func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		correlationID := r.Header.Get(headerCorrelationID)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		w.Header().Set(headerCorrelationID, correlationID)

		ctx := observability.WithRequestID(r.Context(), requestID)
		ctx = observability.WithCorrelationID(ctx, correlationID)

		logger := observability.WithRequestContext(*zerolog.Ctx(ctx), requestID, correlationID)
		ctx = logger.WithContext(ctx)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog writes one line per completed request.
func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("http request")
}

// jsonContentTypeMiddleware sets Content-Type: application/json for all responses.
func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request count and latency labeled by the matched
// route pattern, which keeps label cardinality bounded.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(status), time.Since(start).Seconds())
	})
}

// authenticate verifies the bearer token and stores the caller identity in the
// request context. Missing or invalid tokens are rejected with 401.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get(headerAuthorization), bearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			writeDomainError(w, r, domain.ErrUnauthorized)
			return
		}

		identity, err := s.verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("bearer token rejected")
			writeDomainError(w, r, domain.ErrUnauthorized)
			return
		}

		hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Int64("actor_id", identity.UserID)
		})
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}

// requireRole rejects authenticated callers that lack role with 403.
func (s *Server) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				writeDomainError(w, r, domain.ErrUnauthorized)
				return
			}
			if !identity.HasRole(role) {
				writeDomainError(w, r, domain.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitWrites applies the shared token bucket to admin writes.
func (s *Server) rateLimitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.writeLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		reservation := s.writeLimiter.Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			if s.metrics != nil {
				s.metrics.RecordWriteRateLimited()
			}
			writeDomainError(w, r, domain.NewRateLimitError("admin_writes", delay))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// identityFromRequest returns the authenticated caller. Routes behind
// authenticate always carry one.
func identityFromRequest(r *http.Request) (auth.Identity, bool) {
	return auth.IdentityFromContext(r.Context())
}
