package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return s
}

func middlewareRouter(secret []byte) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/me", RequireAuth(secret), func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "role": Role(c)})
	})
	r.GET("/admin", RequireAuth(secret), RequireRole(RoleAdministrator), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	secret := []byte("mw-secret")
	r := middlewareRouter(secret)

	token := signToken(t, secret, jwt.MapClaims{
		"sub":  "42",
		"role": RoleMember,
		"typ":  "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	w := get(r, "/me", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
	assert.Contains(t, w.Body.String(), RoleMember)
}

func TestRequireAuthRejections(t *testing.T) {
	secret := []byte("mw-secret")
	r := middlewareRouter(secret)

	expired := signToken(t, secret, jwt.MapClaims{
		"sub": "42", "typ": "access", "exp": time.Now().Add(-time.Hour).Unix(),
	})
	refresh := signToken(t, secret, jwt.MapClaims{
		"sub": "42", "typ": "refresh", "exp": time.Now().Add(time.Hour).Unix(),
	})
	wrongKey := signToken(t, []byte("other-secret"), jwt.MapClaims{
		"sub": "42", "typ": "access", "exp": time.Now().Add(time.Hour).Unix(),
	})
	badSub := signToken(t, secret, jwt.MapClaims{
		"sub": "abc", "typ": "access", "exp": time.Now().Add(time.Hour).Unix(),
	})

	cases := []struct {
		name string
		auth string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired", "Bearer " + expired},
		{"refresh token", "Bearer " + refresh},
		{"wrong key", "Bearer " + wrongKey},
		{"non-numeric sub", "Bearer " + badSub},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(r, "/me", tc.auth)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	secret := []byte("mw-secret")
	r := middlewareRouter(secret)

	memberToken := signToken(t, secret, jwt.MapClaims{
		"sub": "1", "role": RoleMember, "typ": "access", "exp": time.Now().Add(time.Hour).Unix(),
	})
	adminToken := signToken(t, secret, jwt.MapClaims{
		"sub": "2", "role": RoleAdministrator, "typ": "access", "exp": time.Now().Add(time.Hour).Unix(),
	})

	w := get(r, "/admin", "Bearer "+memberToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(r, "/admin", "Bearer "+adminToken)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
