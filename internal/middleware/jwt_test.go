package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/koreklar/koreskole-api/internal/models"
	"github.com/koreklar/koreskole-api/internal/service"
	"github.com/koreklar/koreskole-api/pkg/config"
)

const testSecret = "middleware-test-secret"

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	authSvc := service.NewAuthService(nil, config.JWTConfig{
		Secret:            testSecret,
		Expiration:        time.Hour,
		RefreshExpiration: 24 * time.Hour,
	}, zap.NewNop())

	r := gin.New()
	protected := r.Group("/admin", JWT(authSvc))
	protected.GET("/ping", func(c *gin.Context) {
		claims := c.MustGet(ContextMemberKey).(*models.JWTClaims)
		c.JSON(http.StatusOK, gin.H{"member_id": claims.MemberID})
	})
	adminOnly := protected.Group("", RequireRoles(models.RoleAdmin))
	adminOnly.GET("/restricted", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func signToken(t *testing.T, role models.MemberRole, secret string) string {
	t.Helper()
	claims := models.JWTClaims{
		MemberID: "m1",
		Role:     role,
		Email:    "admin@koreklar.dk",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "m1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTMissingHeader(t *testing.T) {
	r := testRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMalformedHeader(t *testing.T) {
	r := testRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTWrongSignature(t *testing.T) {
	r := testRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleAdmin, "other-secret"))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTValidTokenPasses(t *testing.T) {
	r := testRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleEditor, testSecret))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "m1")
}

func TestRequireRolesForbidsEditor(t *testing.T) {
	r := testRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/restricted", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleEditor, testSecret))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesAllowsAdmin(t *testing.T) {
	r := testRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/restricted", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleAdmin, testSecret))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
