// Package repository provides data access interfaces and implementations
// for the news admin service.
//
// # Overview
//
// This package defines repository interfaces and their PostgreSQL implementations
// following the repository pattern to abstract data persistence from business logic.
//
// # Repository Interfaces
//
//   - NewsRepository: Manages news articles, their listing, search and soft deletion
//
// # Visibility
//
// Soft-deleted rows keep their data and carry a deleted_at tombstone. Every read
// and mutation statement is built from the same base builders (selectVisible and
// updateVisible), which always add the "deleted_at IS NULL" predicate.
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use by multiple goroutines.
// The underlying pgxpool handles connection pooling and synchronization; each call
// holds a connection only for its own duration.
//
// # Error Handling
//
// All methods return domain-specific errors from the domain package.
// Wrap database errors with context using fmt.Errorf with %w verb.
// Common errors include:
//
//   - domain.ErrNotFound: Resource does not exist or is soft-deleted
//   - domain.ErrInvalidInput: Invalid parameters provided
//
// # Usage Pattern
//
// Repositories are typically created at application startup and passed to services:
//
//	db, _ := database.New(ctx, cfg, logger)
//	newsRepo := repository.NewPgNewsRepository(db)
package repository

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/helixir/news-admin-service/internal/database"
)

// DBTX is the pool interface repositories run statements on.
type DBTX = database.DBTX

// psql builds PostgreSQL statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// notDeleted is the tombstone predicate. It renders as "deleted_at IS NULL".
var notDeleted = sq.Eq{"deleted_at": nil}

// selectVisible starts a SELECT on table restricted to rows that are not soft-deleted.
func selectVisible(table string, columns ...string) sq.SelectBuilder {
	return psql.Select(columns...).From(table).Where(notDeleted)
}

// updateVisible starts an UPDATE of the row with the given id, provided it is
// not soft-deleted. The id predicate and the tombstone predicate are applied
// in a single statement so the existence check and the write cannot interleave.
func updateVisible(table string, id int64) sq.UpdateBuilder {
	return psql.Update(table).Where(sq.Eq{"id": id}).Where(notDeleted)
}

// escapeLike escapes the LIKE metacharacters in s so it matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns an ILIKE pattern matching s anywhere in a value.
func containsPattern(s string) string {
	return "%" + escapeLike(s) + "%"
}
