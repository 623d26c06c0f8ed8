package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carrental-api/models"
	"carrental-api/repositories"
	"carrental-api/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authFixture struct {
	router *gin.Engine
	auth   *services.AuthService
	store  *repositories.MemoryStore
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	auth := services.NewAuthService(store.Users(), "test-secret", time.Hour)

	r := gin.New()
	protected := r.Group("/", AuthMiddleware(auth, store.Users()))
	protected.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString(ContextUserID), "role": c.GetString(ContextRole)})
	})
	protected.GET("/owner-only", RequireRole(models.RoleOwner), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return &authFixture{router: r, auth: auth, store: store}
}

func (f *authFixture) addUser(t *testing.T, id, role string) (*models.User, string) {
	t.Helper()
	user := &models.User{ID: id, Name: id, Email: id + "@example.com", Password: "x", Role: role}
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	token, err := f.auth.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

func (f *authFixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Message
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	f := newAuthFixture(t)

	w := f.do(httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User Not Authenticated", decodeMessage(t, w))
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := f.do(req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", decodeMessage(t, w))
}

func TestAuthMiddlewareAcceptsCookieAndBearer(t *testing.T) {
	f := newAuthFixture(t)
	user, token := f.addUser(t, "u1", models.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = f.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareRejectsDeletedUser(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.auth.GenerateToken(&models.User{ID: "ghost", Role: models.RoleOwner})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := f.do(req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareUsesStoredRole(t *testing.T) {
	f := newAuthFixture(t)
	user := &models.User{ID: "u2", Name: "u2", Email: "u2@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, f.store.Users().Create(context.Background(), user))

	// Token claims owner, but the account is a plain user.
	forged := *user
	forged.Role = models.RoleOwner
	token, err := f.auth.GenerateToken(&forged)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/owner-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := f.do(req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleAllowsOwner(t *testing.T) {
	f := newAuthFixture(t)
	_, token := f.addUser(t, "o1", models.RoleOwner)

	req := httptest.NewRequest(http.MethodGet, "/owner-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := f.do(req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
