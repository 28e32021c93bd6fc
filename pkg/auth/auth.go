package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/matst80/store-locator/pkg/logger"
)

const TokenCookieName = "sl-admin"

var ErrUnauthorized = errors.New("auth: unauthorized")

type ContextValue string

var ContextRole = ContextValue("role")

// RoleFromContext returns the role the middleware attached, or "".
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(ContextRole).(string)
	return role
}

// AdminAuth accepts either the shared API key in the Authorization header or
// an HS256 token signed with the server key, sent as a bearer token or in the
// admin cookie.
type AdminAuth struct {
	serverKey    []byte
	serverApiKey string
	now          func() time.Time
}

func NewAdminAuth(tokenHash, apiKey string) (*AdminAuth, error) {
	if tokenHash == "" && apiKey == "" {
		return nil, fmt.Errorf("admin auth needs a token hash or an api key")
	}
	return &AdminAuth{serverKey: []byte(tokenHash), serverApiKey: apiKey, now: time.Now}, nil
}

func (a *AdminAuth) CreateToken(username, role string, ttl time.Duration) (string, error) {
	if len(a.serverKey) == 0 {
		return "", fmt.Errorf("no token key configured")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      a.now().Add(ttl).Unix(),
	})
	return token.SignedString(a.serverKey)
}

func (a *AdminAuth) ParseJwt(tokenString string) (jwt.MapClaims, error) {
	if len(a.serverKey) == 0 {
		return nil, ErrUnauthorized
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.serverKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// Authenticate returns the caller's role.
func (a *AdminAuth) Authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if a.serverApiKey != "" && header != "" &&
		subtle.ConstantTimeCompare([]byte(header), []byte(a.serverApiKey)) == 1 {
		return "api", nil
	}

	tokenString := ""
	if bearer, ok := strings.CutPrefix(header, "Bearer "); ok {
		tokenString = strings.TrimSpace(bearer)
	} else if c, err := r.Cookie(TokenCookieName); err == nil {
		tokenString = c.Value
	}
	if tokenString == "" {
		return "", ErrUnauthorized
	}

	claims, err := a.ParseJwt(tokenString)
	if err != nil {
		return "", err
	}
	role, _ := claims["role"].(string)
	if role != "admin" {
		return "", fmt.Errorf("%w: role %q", ErrUnauthorized, role)
	}
	return role, nil
}

func (a *AdminAuth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := a.Authenticate(r)
		if err != nil {
			logger.Get().Infof("rejected admin request %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ContextRole, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
