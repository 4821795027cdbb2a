package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/koreklar/koreskole-api/internal/models"
	"github.com/koreklar/koreskole-api/internal/service"
	"github.com/koreklar/koreskole-api/pkg/mail"
)

type requestRepoStub struct {
	created []*models.Request
}

func (s *requestRepoStub) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error) {
	return nil, 0, nil
}

func (s *requestRepoStub) GetByID(ctx context.Context, id string) (*models.Request, error) {
	return nil, sql.ErrNoRows
}

func (s *requestRepoStub) Create(ctx context.Context, request *models.Request) error {
	request.ID = "req-1"
	s.created = append(s.created, request)
	return nil
}

func (s *requestRepoStub) UpdateStatus(ctx context.Context, id string, status models.RequestStatus) error {
	return nil
}

func (s *requestRepoStub) Delete(ctx context.Context, id string) error { return nil }

func (s *requestRepoStub) ListNotes(ctx context.Context, requestID string) ([]models.RequestNote, error) {
	return nil, nil
}

func (s *requestRepoStub) CreateNote(ctx context.Context, note *models.RequestNote) error {
	return nil
}

type mailerStub struct {
	sent int
}

func (s *mailerStub) Send(messages ...mail.Message) error {
	s.sent += len(messages)
	return nil
}

func newContactFixture() (*ContactHandler, *requestRepoStub, *mailerStub) {
	gin.SetMode(gin.TestMode)
	repo := &requestRepoStub{}
	mailer := &mailerStub{}
	svc := service.NewContactService(repo, mailer, "kontakt@koreklar.dk", zap.NewNop())
	return NewContactHandler(svc), repo, mailer
}

func TestContactHandlerSubmit(t *testing.T) {
	h, repo, mailer := newContactFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(service.ContactRequest{
		Name:     "Mette Jensen",
		Email:    "mette@example.com",
		Message:  "Hvornår starter næste hold?",
		Language: "da",
	})
	req, _ := http.NewRequest(http.MethodPost, "/contact", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.created, 1)
	assert.Equal(t, 2, mailer.sent)
	assert.Contains(t, w.Body.String(), "req-1")
}

func TestContactHandlerSubmitInvalidBody(t *testing.T) {
	h, repo, _ := newContactFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req, _ := http.NewRequest(http.MethodPost, "/contact", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Submit(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.created)
}

func TestContactHandlerSubmitValidationFailure(t *testing.T) {
	h, repo, mailer := newContactFixture()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(service.ContactRequest{
		Name:     "M",
		Email:    "not-an-email",
		Message:  "hej",
		Language: "fr",
	})
	req, _ := http.NewRequest(http.MethodPost, "/contact", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Submit(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.created)
	assert.Zero(t, mailer.sent)
}
