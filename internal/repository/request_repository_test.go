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

func newRequestMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func requestColumns() []string {
	return []string{"id", "kind", "name", "email", "phone", "message", "language", "cv_path", "status", "created_at", "updated_at"}
}

func TestRequestRepositoryList(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	rows := sqlmock.NewRows(requestColumns()).
		AddRow("r1", "CONTACT", "Mette Jensen", "mette@example.com", nil, "Hej", "da", nil, "NEW", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, name, email, phone, message, language, cv_path, status, created_at, updated_at\nFROM requests WHERE 1=1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM requests WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	requests, total, err := repo.List(context.Background(), models.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, requests, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListFiltered(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	kind := models.RequestKindApplication
	status := models.RequestStatusNew
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, name, email, phone, message, language, cv_path, status, created_at, updated_at\nFROM requests WHERE 1=1 AND kind = $1 AND status = $2 AND (name ILIKE $3 OR email ILIKE $3) ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(kind, status, "%lars%").
		WillReturnRows(sqlmock.NewRows(requestColumns()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM requests WHERE 1=1 AND kind = $1 AND status = $2 AND (name ILIKE $3 OR email ILIKE $3)")).
		WithArgs(kind, status, "%lars%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	requests, total, err := repo.List(context.Background(), models.RequestFilter{Kind: &kind, Status: &status, Search: "lars"})
	require.NoError(t, err)
	assert.Empty(t, requests)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryCreateDefaultsStatus(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec("INSERT INTO requests").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.Request{Kind: models.RequestKindContact, Name: "Mette Jensen", Email: "mette@example.com", Message: "Hej", Language: "da"}
	err := repo.Create(context.Background(), request)
	require.NoError(t, err)
	assert.NotEmpty(t, request.ID)
	assert.Equal(t, models.RequestStatusNew, request.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("r1", models.RequestStatusDone, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "r1", models.RequestStatusDone)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryDeleteRemovesNotesFirst(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM request_notes WHERE request_id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM requests WHERE id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "r1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryNotes(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO request_notes (id, request_id, author_id, body, created_at) VALUES ($1, $2, $3, $4, $5)")).
		WithArgs(sqlmock.AnyArg(), "r1", "m1", "Ringet til kunden", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, request_id, author_id, body, created_at\nFROM request_notes WHERE request_id = $1 ORDER BY created_at ASC")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_id", "author_id", "body", "created_at"}).
			AddRow("note-1", "r1", "m1", "Ringet til kunden", time.Now()))

	note := &models.RequestNote{RequestID: "r1", AuthorID: "m1", Body: "Ringet til kunden"}
	require.NoError(t, repo.CreateNote(context.Background(), note))
	assert.NotEmpty(t, note.ID)

	notes, err := repo.ListNotes(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Ringet til kunden", notes[0].Body)
	assert.NoError(t, mock.ExpectationsWereMet())
}
