package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(t *testing.T, a *AdminAuth, r *http.Request) (int, string) {
	t.Helper()
	role := ""
	w := httptest.NewRecorder()
	a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		role = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})(w, r)
	return w.Code, role
}

func TestNewAdminAuthRequiresSecret(t *testing.T) {
	_, err := NewAdminAuth("", "")
	assert.Error(t, err)
}

func TestApiKey(t *testing.T) {
	a, err := NewAdminAuth("secret", "api-key")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPut, "/admin/stores", nil)
	r.Header.Set("Authorization", "api-key")
	code, role := protected(t, a, r)
	assert.Equal(t, http.StatusNoContent, code)
	assert.Equal(t, "api", role)

	r.Header.Set("Authorization", "wrong")
	code, _ = protected(t, a, r)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestBearerAndCookieTokens(t *testing.T) {
	a, err := NewAdminAuth("secret", "")
	require.NoError(t, err)
	token, err := a.CreateToken("ops@example.com", "admin", time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPut, "/admin/stores", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	code, role := protected(t, a, r)
	assert.Equal(t, http.StatusNoContent, code)
	assert.Equal(t, "admin", role)

	r = httptest.NewRequest(http.MethodPut, "/admin/stores", nil)
	r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
	code, _ = protected(t, a, r)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestRejectsBadTokens(t *testing.T) {
	a, err := NewAdminAuth("secret", "")
	require.NoError(t, err)

	viewer, err := a.CreateToken("someone", "viewer", time.Hour)
	require.NoError(t, err)
	expired, err := a.CreateToken("ops", "admin", -time.Minute)
	require.NoError(t, err)
	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"}).SignedString([]byte("other"))
	require.NoError(t, err)

	for name, token := range map[string]string{"viewer": viewer, "expired": expired, "foreign": other, "garbage": "abc.def.ghi"} {
		r := httptest.NewRequest(http.MethodPut, "/admin/stores", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		code, _ := protected(t, a, r)
		assert.Equal(t, http.StatusUnauthorized, code, name)
	}

	code, _ := protected(t, a, httptest.NewRequest(http.MethodPut, "/admin/stores", nil))
	assert.Equal(t, http.StatusUnauthorized, code)
}
