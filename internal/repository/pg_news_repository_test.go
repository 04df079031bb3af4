package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/news-admin-service/internal/database"
	"github.com/helixir/news-admin-service/internal/domain"
)

const newsSelectList = "id, title, content, author_id, published_at, is_published, " +
	"created_at, created_by, updated_at, updated_by, deleted_at, deleted_by"

func newsRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "title", "content", "author_id", "published_at", "is_published",
		"created_at", "created_by", "updated_at", "updated_by", "deleted_at", "deleted_by",
	})
}

// addNewsRow appends a visible, never-updated article authored by authorID.
func addNewsRow(rows *pgxmock.Rows, id int64, title, content string, authorID int64, publishedAt time.Time) *pgxmock.Rows {
	return rows.AddRow(
		id, title, content, &authorID, &publishedAt, true,
		publishedAt, &authorID, nil, nil, nil, nil,
	)
}

func sqlPattern(query string) string {
	return "^" + regexp.QuoteMeta(query) + "$"
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`back\slash`, `back\\slash`},
		{`%_\`, `\%\_\\`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeLike(tt.in), tt.in)
	}
	assert.Equal(t, `%50\%%`, containsPattern("50%"))
}

func TestVisibleBuilders(t *testing.T) {
	t.Run("select always carries the tombstone predicate", func(t *testing.T) {
		query, args, err := selectVisible(newsTable, "id").ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT id FROM news WHERE deleted_at IS NULL", query)
		assert.Empty(t, args)
	})

	t.Run("update matches id and tombstone", func(t *testing.T) {
		query, args, err := updateVisible(newsTable, 9).Set("title", "x").ToSql()
		require.NoError(t, err)
		assert.Equal(t, "UPDATE news SET title = $1 WHERE id = $2 AND deleted_at IS NULL", query)
		assert.Equal(t, []interface{}{"x", int64(9)}, args)
	})
}

func TestPgNewsRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	getQuery := sqlPattern("SELECT " + newsSelectList + " FROM news WHERE deleted_at IS NULL AND id = $1")

	t.Run("returns article when found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)
		now := time.Now().UTC()

		mock.ExpectQuery(getQuery).
			WithArgs(int64(42)).
			WillReturnRows(addNewsRow(newsRows(), 42, "Title", "Body", 7, now))

		result, err := repo.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), result.ID)
		assert.Equal(t, "Title", result.Title)
		require.NotNil(t, result.AuthorID)
		assert.Equal(t, int64(7), *result.AuthorID)
		assert.Nil(t, result.DeletedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found error when not exists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)

		mock.ExpectQuery(getQuery).
			WithArgs(int64(42)).
			WillReturnError(pgx.ErrNoRows)

		result, err := repo.GetByID(ctx, 42)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		var nf *domain.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, domain.EntityNews, nf.Entity)
		assert.Equal(t, "42", nf.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps database errors", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)

		mock.ExpectQuery(getQuery).
			WithArgs(int64(42)).
			WillReturnError(errors.New("connection refused"))

		_, err = repo.GetByID(ctx, 42)
		require.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrNotFound))
		assert.Contains(t, err.Error(), "failed to get news")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgNewsRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("published only uses the same predicates for count and page", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)
		now := time.Now().UTC()

		mock.ExpectBeginTx(database.SnapshotTxOptions)
		mock.ExpectQuery(sqlPattern("SELECT count(*) FROM news WHERE deleted_at IS NULL AND is_published = $1")).
			WithArgs(true).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(15)))

		rows := newsRows()
		for i := int64(5); i >= 1; i-- {
			rows = addNewsRow(rows, i, "Title", "Body", 7, now.Add(-time.Duration(i)*time.Hour))
		}
		mock.ExpectQuery(sqlPattern("SELECT " + newsSelectList +
			" FROM news WHERE deleted_at IS NULL AND is_published = $1" +
			" ORDER BY published_at DESC, id DESC LIMIT 10 OFFSET 10")).
			WithArgs(true).
			WillReturnRows(rows)
		mock.ExpectCommit()

		articles, total, err := repo.List(ctx, domain.PageRequest{Page: 2, PerPage: 10, PublishedOnly: true})
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, articles, 5)
		assert.Equal(t, int64(5), articles[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("all articles omits the published predicate", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)

		mock.ExpectBeginTx(database.SnapshotTxOptions)
		mock.ExpectQuery(sqlPattern("SELECT count(*) FROM news WHERE deleted_at IS NULL")).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectQuery(sqlPattern("SELECT " + newsSelectList +
			" FROM news WHERE deleted_at IS NULL ORDER BY published_at DESC, id DESC LIMIT 25 OFFSET 0")).
			WillReturnRows(newsRows())
		mock.ExpectCommit()

		articles, total, err := repo.List(ctx, domain.PageRequest{Page: 1, PerPage: 25})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, articles)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the count fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)

		mock.ExpectBeginTx(database.SnapshotTxOptions)
		mock.ExpectQuery(`SELECT count\(\*\) FROM news`).
			WithArgs(true).
			WillReturnError(errors.New("database error"))
		mock.ExpectRollback()

		articles, total, err := repo.List(ctx, domain.DefaultPageRequest())
		require.Error(t, err)
		assert.Nil(t, articles)
		assert.Zero(t, total)
		assert.Contains(t, err.Error(), "failed to count news")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the page query fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)

		mock.ExpectBeginTx(database.SnapshotTxOptions)
		mock.ExpectQuery(`SELECT count\(\*\) FROM news`).
			WithArgs(true).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
		mock.ExpectQuery(`SELECT id, title`).
			WithArgs(true).
			WillReturnError(errors.New("database error"))
		mock.ExpectRollback()

		_, _, err = repo.List(ctx, domain.DefaultPageRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query news")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects out of range page requests", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)

		_, _, err = repo.List(ctx, domain.PageRequest{Page: 0, PerPage: 10})
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))

		_, _, err = repo.List(ctx, domain.PageRequest{Page: 1, PerPage: 101})
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))

		_, _, err = repo.List(ctx, domain.PageRequest{Page: 92233720368547760, PerPage: 100})
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("last addressable page keeps the offset within bigint", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)

		mock.ExpectBeginTx(database.SnapshotTxOptions)
		mock.ExpectQuery(sqlPattern("SELECT count(*) FROM news WHERE deleted_at IS NULL")).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
		mock.ExpectQuery(sqlPattern("SELECT " + newsSelectList +
			" FROM news WHERE deleted_at IS NULL ORDER BY published_at DESC, id DESC" +
			" LIMIT 100 OFFSET 9223372036854775800")).
			WillReturnRows(newsRows())
		mock.ExpectCommit()

		articles, total, err := repo.List(ctx, domain.PageRequest{Page: 92233720368547759, PerPage: 100})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Empty(t, articles)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgNewsRepository_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("matches title or content case insensitively", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)
		now := time.Now().UTC()

		where := " FROM news WHERE deleted_at IS NULL AND is_published = $1 AND (title ILIKE $2 OR content ILIKE $3)"

		mock.ExpectBeginTx(database.SnapshotTxOptions)
		mock.ExpectQuery(sqlPattern("SELECT count(*)"+where)).
			WithArgs(true, "%go\\_lang%", "%go\\_lang%").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
		mock.ExpectQuery(sqlPattern("SELECT "+newsSelectList+where+
			" ORDER BY published_at DESC, id DESC LIMIT 10 OFFSET 0")).
			WithArgs(true, "%go\\_lang%", "%go\\_lang%").
			WillReturnRows(addNewsRow(newsRows(), 3, "About go_lang", "Body", 7, now))
		mock.ExpectCommit()

		articles, total, err := repo.Search(ctx, "go_lang", domain.DefaultPageRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, articles, 1)
		assert.Equal(t, "About go_lang", articles[0].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no match returns empty page", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)

		mock.ExpectBeginTx(database.SnapshotTxOptions)
		mock.ExpectQuery(`SELECT count\(\*\) FROM news`).
			WithArgs(false, "%zzz%", "%zzz%").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectQuery(`SELECT id, title`).
			WithArgs(false, "%zzz%", "%zzz%").
			WillReturnRows(newsRows())
		mock.ExpectCommit()

		articles, total, err := repo.Search(ctx, "zzz", domain.PageRequest{Page: 1, PerPage: 10, PublishedOnly: false})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, articles)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects empty query", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)

		_, _, err = repo.Search(ctx, "", domain.DefaultPageRequest())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))

		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "q", ve.Field)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgNewsRepository_Create(t *testing.T) {
	ctx := context.Background()
	insertQuery := sqlPattern("INSERT INTO news (title,content,is_published,author_id,created_by) " +
		"VALUES ($1,$2,$3,$4,$5) RETURNING " + newsSelectList)

	t.Run("stamps author and creator", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)
		now := time.Now().UTC()

		mock.ExpectQuery(insertQuery).
			WithArgs("A", "B", true, int64(7), int64(7)).
			WillReturnRows(addNewsRow(newsRows(), 1, "A", "B", 7, now))

		result, err := repo.Create(ctx, domain.NewsDraft{Title: "A", Content: "B", IsPublished: true}, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.ID)
		require.NotNil(t, result.AuthorID)
		assert.Equal(t, int64(7), *result.AuthorID)
		require.NotNil(t, result.CreatedBy)
		assert.Equal(t, int64(7), *result.CreatedBy)
		assert.NotNil(t, result.PublishedAt)
		assert.Nil(t, result.DeletedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps database errors", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)

		mock.ExpectQuery(insertQuery).
			WithArgs("A", "B", false, int64(7), int64(7)).
			WillReturnError(errors.New("database error"))

		_, err = repo.Create(ctx, domain.NewsDraft{Title: "A", Content: "B"}, 7)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create news")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgNewsRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("sets only the supplied fields", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)
		now := time.Now().UTC()
		title := "New"

		mock.ExpectQuery(sqlPattern("UPDATE news SET title = $1, updated_at = now(), updated_by = $2 " +
			"WHERE id = $3 AND deleted_at IS NULL RETURNING " + newsSelectList)).
			WithArgs("New", int64(9), int64(5)).
			WillReturnRows(addNewsRow(newsRows(), 5, "New", "Old", 7, now))

		result, err := repo.Update(ctx, 5, domain.NewsPatch{Title: &title}, 9)
		require.NoError(t, err)
		assert.Equal(t, "New", result.Title)
		assert.Equal(t, "Old", result.Content)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sets every field when all are supplied", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)
		now := time.Now().UTC()
		title, content, published := "T", "C", false

		mock.ExpectQuery(sqlPattern("UPDATE news SET title = $1, content = $2, is_published = $3, " +
			"updated_at = now(), updated_by = $4 WHERE id = $5 AND deleted_at IS NULL RETURNING " + newsSelectList)).
			WithArgs("T", "C", false, int64(9), int64(5)).
			WillReturnRows(addNewsRow(newsRows(), 5, "T", "C", 7, now))

		_, err = repo.Update(ctx, 5, domain.NewsPatch{Title: &title, Content: &content, IsPublished: &published}, 9)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty patch still stamps the audit columns", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)
		now := time.Now().UTC()

		mock.ExpectQuery(sqlPattern("UPDATE news SET updated_at = now(), updated_by = $1 " +
			"WHERE id = $2 AND deleted_at IS NULL RETURNING " + newsSelectList)).
			WithArgs(int64(9), int64(5)).
			WillReturnRows(addNewsRow(newsRows(), 5, "Title", "Body", 7, now))

		_, err = repo.Update(ctx, 5, domain.NewsPatch{}, 9)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when no visible row matches", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)

		mock.ExpectQuery(`UPDATE news SET`).
			WithArgs(int64(9), int64(5)).
			WillReturnError(pgx.ErrNoRows)

		result, err := repo.Update(ctx, 5, domain.NewsPatch{}, 9)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgNewsRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()
	deleteQuery := sqlPattern("UPDATE news SET deleted_at = now(), deleted_by = $1 " +
		"WHERE id = $2 AND deleted_at IS NULL RETURNING " + newsSelectList)

	t.Run("stamps the tombstone", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)
		now := time.Now().UTC()
		authorID, deletedBy := int64(7), int64(9)

		mock.ExpectQuery(deleteQuery).
			WithArgs(int64(9), int64(5)).
			WillReturnRows(newsRows().AddRow(
				int64(5), "Title", "Body", &authorID, &now, true,
				now, &authorID, nil, nil, &now, &deletedBy,
			))

		result, err := repo.SoftDelete(ctx, 5, 9)
		require.NoError(t, err)
		assert.True(t, result.IsDeleted())
		require.NotNil(t, result.DeletedBy)
		assert.Equal(t, int64(9), *result.DeletedBy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already deleted returns not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgNewsRepository(mock)

		mock.ExpectQuery(deleteQuery).
			WithArgs(int64(9), int64(5)).
			WillReturnError(pgx.ErrNoRows)

		result, err := repo.SoftDelete(ctx, 5, 9)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNewsScanDest(t *testing.T) {
	var dest newsScanDest
	assert.Len(t, dest.destinations(), len(newsColumns))
}
