package devapi

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"

	"agora/internal/config"
	"agora/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a GORM *gorm.DB on the postgres dialect backed by sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_Exists(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE username = $1`)).
		WithArgs("alice01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE email = $1`)).
		WithArgs("new@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	usernameTaken, emailTaken, err := repo.Exists(context.Background(), "alice01", "new@example.com")
	require.NoError(t, err)
	assert.True(t, usernameTaken)
	assert.False(t, emailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByLogin(t *testing.T) {
	tests := []struct {
		name     string
		rows     *sqlmock.Rows
		queryErr error
		wantUser bool
		wantErr  bool
	}{
		{
			name:     "found",
			rows:     sqlmock.NewRows([]string{"id", "username", "email"}).AddRow(3, "alice01", "alice@example.com"),
			wantUser: true,
		},
		{
			name: "no match",
			rows: sqlmock.NewRows([]string{"id", "username", "email"}),
		},
		{
			name:     "query failure",
			queryErr: errors.New("connection reset"),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewUserRepository(db)

			expect := mock.ExpectQuery(`SELECT \* FROM "users" WHERE .*username = \$1 OR email = \$2`).
				WithArgs("alice01", "alice01", 1)
			if tt.queryErr != nil {
				expect.WillReturnError(tt.queryErr)
			} else {
				expect.WillReturnRows(tt.rows)
			}

			user, err := repo.GetByLogin(context.Background(), "alice01")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantUser {
				require.NotNil(t, user)
				assert.Equal(t, int64(3), user.ID)
			} else {
				assert.Nil(t, user)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT posts.*, `+commentCountColumn+` FROM "posts" WHERE "posts"."id" = $1`)).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "author_id", "view_count", "published", "comment_count"}).
			AddRow(7, "Hello", "Body", 10, 4, true, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(10, "user10"))

	post, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, int64(2), post.CommentCount)
	assert.Equal(t, "user10", post.Author.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListPublished(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts" WHERE published = $1`)).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT posts.*, `+commentCountColumn+` FROM "posts" WHERE published = $1 ORDER BY created_at desc, id desc LIMIT $2 OFFSET $3`)).
		WithArgs(true, 3, 3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author_id", "comment_count"}).AddRow(1, "Oldest", 10, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(10, "user10"))

	posts, total, err := repo.ListPublished(context.Background(), 3, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, posts, 1)
	assert.Equal(t, "user10", posts[0].Author.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_IncrementViews(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "view_count"=view_count + 1 WHERE id = $1`)).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.IncrementViews(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	parent := int64(1)
	comment := &Comment{Content: "Nice post!", PostID: 2, UserID: 3, ParentID: &parent}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "comments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), comment))
	assert.Equal(t, int64(9), comment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServer_DatabaseFailures(t *testing.T) {
	db, mock := setupMockDB(t)
	app := NewServer(&config.Config{JWTSecret: testSecret}, db).App()

	t.Run("query error is a 500", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts"`)).
			WillReturnError(errors.New("connection reset"))

		status, body := call(t, app, http.MethodGet, "/api/posts", "", nil)
		assert.Equal(t, http.StatusInternalServerError, status)
		resp := decode[models.ErrorResponse](t, body)
		assert.False(t, resp.Success)
		assert.Equal(t, "Internal server error", resp.Message)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping is a 503", func(t *testing.T) {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		status, body := call(t, app, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.JSONEq(t, `{"status":"unavailable"}`, string(body))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing post is a 404", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "view_count"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
		mock.ExpectQuery(regexp.QuoteMeta(`FROM "posts" WHERE "posts"."id" = $1`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		status, body := call(t, app, http.MethodGet, "/api/posts/41", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Post not found", decode[models.ErrorResponse](t, body).Message)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
