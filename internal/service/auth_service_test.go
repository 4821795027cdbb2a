package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/koreklar/koreskole-api/internal/models"
	"github.com/koreklar/koreskole-api/pkg/config"
)

type mockAuthRepo struct {
	members map[string]*models.Member
	byEmail map[string]string
	tokens  map[string]*models.RefreshToken
	revoked []string
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{
		members: make(map[string]*models.Member),
		byEmail: make(map[string]string),
		tokens:  make(map[string]*models.RefreshToken),
	}
}

func (m *mockAuthRepo) addMember(member models.Member, password string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	member.PasswordHash = string(hash)
	m.members[member.ID] = &member
	m.byEmail[member.Email] = member.ID
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	if id, ok := m.byEmail[email]; ok {
		cp := *m.members[id]
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.Member, error) {
	if member, ok := m.members[id]; ok {
		cp := *member
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = "rt-" + token.Token
	}
	cp := *token
	m.tokens[token.Token] = &cp
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if stored, ok := m.tokens[token]; ok {
		cp := *stored
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revoked = append(m.revoked, id)
	for _, stored := range m.tokens {
		if stored.ID == id {
			stored.Revoked = true
		}
	}
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        time.Hour,
		RefreshExpiration: 24 * time.Hour,
	}
}

func TestAuthServiceLogin(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addMember(models.Member{ID: "m1", Email: "admin@koreklar.dk", FullName: "Admin", Role: models.RoleAdmin, Active: true}, "hunter2hunter2")
	svc := NewAuthService(repo, testJWTConfig(), zap.NewNop())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@koreklar.dk", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "m1", res.Member.ID)
	assert.Equal(t, models.RoleAdmin, res.Member.Role)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "m1", claims.MemberID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addMember(models.Member{ID: "m1", Email: "admin@koreklar.dk", Role: models.RoleAdmin, Active: true}, "hunter2hunter2")
	svc := NewAuthService(repo, testJWTConfig(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@koreklar.dk", Password: "wrong-password"})
	require.Error(t, err)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addMember(models.Member{ID: "m1", Email: "admin@koreklar.dk", Role: models.RoleAdmin, Active: false}, "hunter2hunter2")
	svc := NewAuthService(repo, testJWTConfig(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@koreklar.dk", Password: "hunter2hunter2"})
	require.Error(t, err)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addMember(models.Member{ID: "m1", Email: "admin@koreklar.dk", Role: models.RoleAdmin, Active: true}, "hunter2hunter2")
	svc := NewAuthService(repo, testJWTConfig(), zap.NewNop())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@koreklar.dk", Password: "hunter2hunter2"})
	require.NoError(t, err)

	res, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, login.RefreshToken, res.RefreshToken)
	assert.Len(t, repo.revoked, 1)

	// Old token is revoked and cannot be replayed.
	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestAuthServiceRefreshExpired(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addMember(models.Member{ID: "m1", Email: "admin@koreklar.dk", Role: models.RoleAdmin, Active: true}, "hunter2hunter2")
	repo.tokens["stale"] = &models.RefreshToken{ID: "rt-stale", MemberID: "m1", Token: "stale", ExpiresAt: time.Now().Add(-time.Hour)}
	svc := NewAuthService(repo, testJWTConfig(), zap.NewNop())

	_, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(newMockAuthRepo(), testJWTConfig(), zap.NewNop())
	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestAuthServiceLogoutRevokes(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addMember(models.Member{ID: "m1", Email: "admin@koreklar.dk", Role: models.RoleAdmin, Active: true}, "hunter2hunter2")
	svc := NewAuthService(repo, testJWTConfig(), zap.NewNop())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@koreklar.dk", Password: "hunter2hunter2"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))
	assert.Len(t, repo.revoked, 1)

	// Unknown tokens are a no-op.
	require.NoError(t, svc.Logout(context.Background(), "unknown"))
}
