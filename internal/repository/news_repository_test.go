package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koreklar/koreskole-api/internal/models"
)

func newNewsMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestNewsRepositoryList(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "title_translated", "body", "body_translated", "source_lang", "author_id", "social_post_link", "created_at", "updated_at"}).
		AddRow("n1", "Nyt hold starter", "New class starting", "Body", "Body en", "da", "m1", nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, title_translated, body, body_translated, source_lang, author_id, social_post_link, created_at, updated_at\nFROM news ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM news")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.NewsFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "da", items[0].SourceLang)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "title_translated", "body", "body_translated", "source_lang", "author_id", "social_post_link", "created_at", "updated_at"}).
		AddRow("n1", "Nyt hold starter", "New class starting", "Body", "Body en", "da", "m1", "https://www.facebook.com/123", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, title_translated, body, body_translated, source_lang, author_id, social_post_link, created_at, updated_at\nFROM news WHERE id = $1")).
		WithArgs("n1").
		WillReturnRows(rows)

	item, err := repo.GetByID(context.Background(), "n1")
	require.NoError(t, err)
	require.NotNil(t, item.SocialPostLink)
	assert.Equal(t, "https://www.facebook.com/123", *item.SocialPostLink)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectExec("INSERT INTO news").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	item := &models.News{Title: "Nyt hold starter", TitleTranslated: "New class starting", Body: "Body", BodyTranslated: "Body en", SourceLang: "da", AuthorID: "m1"}
	err := repo.Create(context.Background(), item)
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.False(t, item.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectExec("UPDATE news SET").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	item := &models.News{ID: "n1", Title: "Opdateret", TitleTranslated: "Updated", Body: "Body", BodyTranslated: "Body en", SourceLang: "da"}
	err := repo.Update(context.Background(), item)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositorySetSocialPostLink(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE news SET social_post_link = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("n1", "https://www.facebook.com/123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetSocialPostLink(context.Background(), "n1", "https://www.facebook.com/123")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM news WHERE id = $1")).
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "n1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositoryListImages(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	rows := sqlmock.NewRows([]string{"id", "news_id", "storage_path", "sort_order", "created_at"}).
		AddRow("i1", "n1", "news/m1/a.jpg", 0, time.Now()).
		AddRow("i2", "n1", "news/m1/b.jpg", 1, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, news_id, storage_path, sort_order, created_at\nFROM news_images WHERE news_id = $1 ORDER BY sort_order ASC")).
		WithArgs("n1").
		WillReturnRows(rows)

	images, err := repo.ListImages(context.Background(), "n1")
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, 0, images[0].SortOrder)
	assert.Equal(t, 1, images[1].SortOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositoryCreateImage(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectExec("INSERT INTO news_images").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	image := &models.NewsImage{NewsID: "n1", StoragePath: "news/m1/a.jpg", SortOrder: 0}
	err := repo.CreateImage(context.Background(), image)
	require.NoError(t, err)
	assert.NotEmpty(t, image.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositoryDeleteImage(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM news_images WHERE id = $1")).
		WithArgs("i1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DeleteImage(context.Background(), "i1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
