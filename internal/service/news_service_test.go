package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/koreklar/koreskole-api/internal/client"
	"github.com/koreklar/koreskole-api/internal/models"
)

type mockNewsRepo struct {
	items  map[string]*models.News
	images map[string][]models.NewsImage
	ops    []string

	createErr   error
	imageErrOn  int
	imageCalls  int
	socialLinks map[string]string
}

func newMockNewsRepo() *mockNewsRepo {
	return &mockNewsRepo{
		items:       make(map[string]*models.News),
		images:      make(map[string][]models.NewsImage),
		socialLinks: make(map[string]string),
		imageErrOn:  -1,
	}
}

func (m *mockNewsRepo) List(ctx context.Context, filter models.NewsFilter) ([]models.News, int, error) {
	out := make([]models.News, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, *item)
	}
	return out, len(out), nil
}

func (m *mockNewsRepo) GetByID(ctx context.Context, id string) (*models.News, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockNewsRepo) Create(ctx context.Context, item *models.News) error {
	if m.createErr != nil {
		return m.createErr
	}
	if item.ID == "" {
		item.ID = "news-1"
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	cp := *item
	m.items[item.ID] = &cp
	m.ops = append(m.ops, "create:"+item.ID)
	return nil
}

func (m *mockNewsRepo) Update(ctx context.Context, item *models.News) error {
	cp := *item
	m.items[item.ID] = &cp
	m.ops = append(m.ops, "update:"+item.ID)
	return nil
}

func (m *mockNewsRepo) SetSocialPostLink(ctx context.Context, id, link string) error {
	m.socialLinks[id] = link
	if item, ok := m.items[id]; ok {
		item.SocialPostLink = &link
	}
	return nil
}

func (m *mockNewsRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	m.ops = append(m.ops, "delete-news:"+id)
	return nil
}

func (m *mockNewsRepo) ListImages(ctx context.Context, newsID string) ([]models.NewsImage, error) {
	return m.images[newsID], nil
}

func (m *mockNewsRepo) CreateImage(ctx context.Context, image *models.NewsImage) error {
	m.imageCalls++
	if m.imageErrOn == m.imageCalls {
		return errors.New("insert failed")
	}
	if image.ID == "" {
		image.ID = fmt.Sprintf("img-%d", m.imageCalls)
	}
	m.images[image.NewsID] = append(m.images[image.NewsID], *image)
	m.ops = append(m.ops, "create-image:"+image.ID)
	return nil
}

func (m *mockNewsRepo) DeleteImage(ctx context.Context, id string) error {
	for newsID, images := range m.images {
		kept := images[:0]
		for _, img := range images {
			if img.ID != id {
				kept = append(kept, img)
			}
		}
		m.images[newsID] = kept
	}
	m.ops = append(m.ops, "delete-image:"+id)
	return nil
}

type mockTranslator struct {
	sourceLang string
	err        error
	calls      int
}

func (m *mockTranslator) TranslatePair(ctx context.Context, text string) (*client.BilingualText, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &client.BilingualText{
		Original:   text,
		Translated: "translated " + text,
		SourceLang: m.sourceLang,
	}, nil
}

type mockMediaStorage struct {
	saveCalls int
	failOn    int
	ops       []string
	deleteErr error
}

func (m *mockMediaStorage) Save(filename string, data []byte) (string, error) {
	m.saveCalls++
	if m.failOn == m.saveCalls {
		return "", errors.New("upload failed")
	}
	m.ops = append(m.ops, "save:"+filename)
	return filename, nil
}

func (m *mockMediaStorage) Delete(filename string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.ops = append(m.ops, "delete:"+filename)
	return nil
}

type mockNormalizer struct{}

func (m *mockNormalizer) Normalize(data []byte) ([]byte, error) {
	if strings.HasPrefix(string(data), "bad") {
		return nil, errors.New("not an image")
	}
	return data, nil
}

type mockSocial struct {
	url     string
	err     error
	called  bool
	message string
	link    string
}

func (m *mockSocial) Publish(ctx context.Context, message, link string) (string, error) {
	m.called = true
	m.message = message
	m.link = link
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

func newTestNewsService(repo *mockNewsRepo, tr *mockTranslator, store *mockMediaStorage, social SocialPublisher) *NewsService {
	limits := MediaLimits{MaxUploadBytes: 10 << 20, MaxFiles: 10}
	return NewNewsService(repo, tr, store, &mockNormalizer{}, social, "https://koreklar.dk", limits, zap.NewNop())
}

func TestNewsServiceCreateDanishSource(t *testing.T) {
	repo := newMockNewsRepo()
	tr := &mockTranslator{sourceLang: models.LangDanish}
	svc := newTestNewsService(repo, tr, &mockMediaStorage{}, nil)

	item, err := svc.Create(context.Background(), "member-1", CreateNewsRequest{
		Title: "Ny weekend-pakke",
		Body:  "Vi tilbyder nu intensive weekendhold i Aalborg.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.LangDanish, item.SourceLang)
	assert.Equal(t, "Ny weekend-pakke", item.Title)
	assert.Equal(t, "translated Ny weekend-pakke", item.TitleTranslated)
	assert.Equal(t, "member-1", item.AuthorID)
	assert.Equal(t, 2, tr.calls)
	assert.Len(t, repo.items, 1)
}

func TestNewsServiceCreateRequiresAuthor(t *testing.T) {
	svc := newTestNewsService(newMockNewsRepo(), &mockTranslator{sourceLang: "da"}, &mockMediaStorage{}, nil)

	_, err := svc.Create(context.Background(), "", CreateNewsRequest{
		Title: "Ny weekend-pakke",
		Body:  "Vi tilbyder nu intensive weekendhold.",
	})
	require.Error(t, err)
}

func TestNewsServiceCreateTranslationFailureAborts(t *testing.T) {
	repo := newMockNewsRepo()
	tr := &mockTranslator{err: errors.New("upstream down")}
	svc := newTestNewsService(repo, tr, &mockMediaStorage{}, nil)

	_, err := svc.Create(context.Background(), "member-1", CreateNewsRequest{
		Title: "Ny weekend-pakke",
		Body:  "Vi tilbyder nu intensive weekendhold.",
	})
	require.Error(t, err)
	assert.Empty(t, repo.items)
}

func TestNewsServiceCreateSkipsFailedUpload(t *testing.T) {
	repo := newMockNewsRepo()
	store := &mockMediaStorage{failOn: 2}
	svc := newTestNewsService(repo, &mockTranslator{sourceLang: "da"}, store, nil)

	item, err := svc.Create(context.Background(), "member-1", CreateNewsRequest{
		Title: "Ny weekend-pakke",
		Body:  "Vi tilbyder nu intensive weekendhold.",
		Media: []MediaUpload{
			{Filename: "a.jpg", Data: []byte("image-a")},
			{Filename: "b.jpg", Data: []byte("image-b")},
			{Filename: "c.jpg", Data: []byte("image-c")},
		},
	})
	require.NoError(t, err)
	require.Len(t, item.Images, 2)
	assert.Equal(t, 0, item.Images[0].SortOrder)
	assert.Equal(t, 2, item.Images[1].SortOrder)
}

func TestNewsServiceCreateSkipsUnreadableImage(t *testing.T) {
	repo := newMockNewsRepo()
	svc := newTestNewsService(repo, &mockTranslator{sourceLang: "da"}, &mockMediaStorage{}, nil)

	item, err := svc.Create(context.Background(), "member-1", CreateNewsRequest{
		Title: "Ny weekend-pakke",
		Body:  "Vi tilbyder nu intensive weekendhold.",
		Media: []MediaUpload{
			{Filename: "broken.jpg", Data: []byte("bad bytes")},
			{Filename: "ok.jpg", Data: []byte("image")},
		},
	})
	require.NoError(t, err)
	require.Len(t, item.Images, 1)
	assert.Equal(t, 1, item.Images[0].SortOrder)
}

func TestNewsServiceCreatePublishesToSocial(t *testing.T) {
	repo := newMockNewsRepo()
	social := &mockSocial{url: "https://www.facebook.com/12345"}
	svc := newTestNewsService(repo, &mockTranslator{sourceLang: "da"}, &mockMediaStorage{}, social)

	item, err := svc.Create(context.Background(), "member-1", CreateNewsRequest{
		Title:           "Ny weekend-pakke",
		Body:            "Vi tilbyder nu intensive weekendhold.",
		PublishToSocial: true,
	})
	require.NoError(t, err)
	assert.True(t, social.called)
	require.NotNil(t, item.SocialPostLink)
	assert.Equal(t, "https://www.facebook.com/12345", *item.SocialPostLink)
	assert.Equal(t, "https://www.facebook.com/12345", repo.socialLinks[item.ID])
}

func TestNewsServiceSocialPostCarriesTextAndMediaURLs(t *testing.T) {
	repo := newMockNewsRepo()
	social := &mockSocial{url: "https://www.facebook.com/12345"}
	svc := newTestNewsService(repo, &mockTranslator{sourceLang: "da"}, &mockMediaStorage{}, social)

	item, err := svc.Create(context.Background(), "member-1", CreateNewsRequest{
		Title:           "Ny weekend-pakke",
		Body:            "Vi tilbyder nu intensive weekendhold.",
		PublishToSocial: true,
		Media: []MediaUpload{
			{Filename: "a.jpg", Data: []byte("image-a")},
			{Filename: "b.jpg", Data: []byte("image-b")},
		},
	})
	require.NoError(t, err)
	require.Len(t, item.Images, 2)

	assert.Contains(t, social.message, "Ny weekend-pakke")
	assert.Contains(t, social.message, "Vi tilbyder nu intensive weekendhold.")
	for _, image := range item.Images {
		assert.Contains(t, social.message, "https://koreklar.dk/uploads/"+image.StoragePath)
	}
	assert.Equal(t, "https://koreklar.dk/nyheder/"+item.ID, social.link)
}

func TestNewsServiceCreateRejectsTooManyImages(t *testing.T) {
	repo := newMockNewsRepo()
	tr := &mockTranslator{sourceLang: "da"}
	svc := NewNewsService(repo, tr, &mockMediaStorage{}, &mockNormalizer{}, nil,
		"https://koreklar.dk", MediaLimits{MaxFiles: 2}, zap.NewNop())

	_, err := svc.Create(context.Background(), "member-1", CreateNewsRequest{
		Title: "Ny weekend-pakke",
		Body:  "Vi tilbyder nu intensive weekendhold.",
		Media: []MediaUpload{
			{Filename: "a.jpg", Data: []byte("image-a")},
			{Filename: "b.jpg", Data: []byte("image-b")},
			{Filename: "c.jpg", Data: []byte("image-c")},
		},
	})
	require.Error(t, err)
	assert.Empty(t, repo.items)
	assert.Zero(t, tr.calls)
}

func TestNewsServiceCreateRejectsOversizedImage(t *testing.T) {
	repo := newMockNewsRepo()
	svc := NewNewsService(repo, &mockTranslator{sourceLang: "da"}, &mockMediaStorage{}, &mockNormalizer{}, nil,
		"https://koreklar.dk", MediaLimits{MaxUploadBytes: 4}, zap.NewNop())

	_, err := svc.Create(context.Background(), "member-1", CreateNewsRequest{
		Title: "Ny weekend-pakke",
		Body:  "Vi tilbyder nu intensive weekendhold.",
		Media: []MediaUpload{{Filename: "big.jpg", Data: []byte("way too large")}},
	})
	require.Error(t, err)
	assert.Empty(t, repo.items)
}

func TestNewsServiceCreateSocialFailureDoesNotAbort(t *testing.T) {
	repo := newMockNewsRepo()
	social := &mockSocial{err: errors.New("graph api down")}
	svc := newTestNewsService(repo, &mockTranslator{sourceLang: "da"}, &mockMediaStorage{}, social)

	item, err := svc.Create(context.Background(), "member-1", CreateNewsRequest{
		Title:           "Ny weekend-pakke",
		Body:            "Vi tilbyder nu intensive weekendhold.",
		PublishToSocial: true,
	})
	require.NoError(t, err)
	assert.Nil(t, item.SocialPostLink)
	assert.Len(t, repo.items, 1)
}

func TestNewsServiceUpdateRetranslates(t *testing.T) {
	repo := newMockNewsRepo()
	repo.items["news-1"] = &models.News{ID: "news-1", Title: "Gammel", AuthorID: "member-1", SourceLang: "da"}
	tr := &mockTranslator{sourceLang: "en"}
	svc := newTestNewsService(repo, tr, &mockMediaStorage{}, nil)

	item, err := svc.Update(context.Background(), "news-1", UpdateNewsRequest{
		Title: "Updated weekend course",
		Body:  "We now offer intensive weekend courses.",
	})
	require.NoError(t, err)
	assert.Equal(t, "en", item.SourceLang)
	assert.Equal(t, "translated Updated weekend course", item.TitleTranslated)
	assert.Equal(t, 2, tr.calls)
}

func TestNewsServiceUpdateAppendsMediaAfterExisting(t *testing.T) {
	repo := newMockNewsRepo()
	repo.items["news-1"] = &models.News{ID: "news-1", AuthorID: "member-1"}
	repo.images["news-1"] = []models.NewsImage{
		{ID: "img-a", NewsID: "news-1", StoragePath: "news/member-1/a.jpg", SortOrder: 0},
	}
	svc := newTestNewsService(repo, &mockTranslator{sourceLang: "da"}, &mockMediaStorage{}, nil)

	item, err := svc.Update(context.Background(), "news-1", UpdateNewsRequest{
		Title: "Ny weekend-pakke",
		Body:  "Vi tilbyder nu intensive weekendhold.",
		Media: []MediaUpload{{Filename: "b.jpg", Data: []byte("image-b")}},
	})
	require.NoError(t, err)
	require.Len(t, item.Images, 2)
	assert.Equal(t, 1, item.Images[1].SortOrder)
}

func TestNewsServiceDeleteCascadesInOrder(t *testing.T) {
	repo := newMockNewsRepo()
	store := &mockMediaStorage{}
	repo.items["news-1"] = &models.News{ID: "news-1", AuthorID: "member-1"}
	repo.images["news-1"] = []models.NewsImage{
		{ID: "img-a", NewsID: "news-1", StoragePath: "news/member-1/a.jpg"},
		{ID: "img-b", NewsID: "news-1", StoragePath: "news/member-1/b.jpg"},
	}
	svc := newTestNewsService(repo, &mockTranslator{sourceLang: "da"}, store, nil)

	require.NoError(t, svc.Delete(context.Background(), "news-1"))

	assert.Equal(t, []string{"delete:news/member-1/a.jpg", "delete:news/member-1/b.jpg"}, store.ops)
	assert.Equal(t, []string{"delete-image:img-a", "delete-image:img-b", "delete-news:news-1"}, repo.ops)
	assert.Empty(t, repo.items)
}

func TestNewsServiceDeleteStorageFailureAborts(t *testing.T) {
	repo := newMockNewsRepo()
	store := &mockMediaStorage{deleteErr: errors.New("disk error")}
	repo.items["news-1"] = &models.News{ID: "news-1", AuthorID: "member-1"}
	repo.images["news-1"] = []models.NewsImage{
		{ID: "img-a", NewsID: "news-1", StoragePath: "news/member-1/a.jpg"},
	}
	svc := newTestNewsService(repo, &mockTranslator{sourceLang: "da"}, store, nil)

	err := svc.Delete(context.Background(), "news-1")
	require.Error(t, err)
	assert.Len(t, repo.items, 1)
}

func TestNewsServiceGetNotFound(t *testing.T) {
	svc := newTestNewsService(newMockNewsRepo(), &mockTranslator{sourceLang: "da"}, &mockMediaStorage{}, nil)
	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
}
