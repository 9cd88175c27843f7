package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgAuth "github.com/angelmondragon/parkinglot-manager/pkg/auth"
	"github.com/angelmondragon/parkinglot-manager/pkg/config"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "parking_session"

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "parking-lots", ExpirationMinutes: 60}

type fakeSessions struct {
	live map[string]bool
	err  error
}

func (f fakeSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return f.live[accessID], f.err
}

func mintToken(t *testing.T, role enums.UserRole, jti string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testJWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   7,
		Username: "lotm",
		Role:     role,
		JTI:      jti,
	})
	require.NoError(t, err)
	return token
}

func captureIdentity(principal *pkgAuth.Principal, accessID *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := pkgAuth.PrincipalFromContext(r.Context()); ok {
			*principal = p
		}
		*accessID = AccessIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateAttachesPrincipal(t *testing.T) {
	var principal pkgAuth.Principal
	var accessID string
	sessions := fakeSessions{live: map[string]bool{"jti-1": true}}
	handler := Authenticate(testJWT, testCookie, sessions, nil)(captureIdentity(&principal, &accessID))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: mintToken(t, enums.UserRoleLotManager, "jti-1")})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), principal.UserID)
	assert.Equal(t, "lotm", principal.Username)
	assert.Equal(t, enums.UserRoleLotManager, principal.Role)
	assert.Equal(t, "jti-1", accessID)
}

func TestAuthenticateRevokedSessionIsAnonymous(t *testing.T) {
	var principal pkgAuth.Principal
	var accessID string
	handler := Authenticate(testJWT, testCookie, fakeSessions{live: map[string]bool{}}, nil)(captureIdentity(&principal, &accessID))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: mintToken(t, enums.UserRoleUser, "gone")})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Zero(t, principal.UserID)
	assert.Empty(t, accessID)
	assertCookieCleared(t, rec)
}

func TestAuthenticateGarbageCookieIsCleared(t *testing.T) {
	var principal pkgAuth.Principal
	var accessID string
	handler := Authenticate(testJWT, testCookie, fakeSessions{}, nil)(captureIdentity(&principal, &accessID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "not-a-jwt"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, principal.UserID)
	assertCookieCleared(t, rec)
}

func TestAuthenticateLookupFailureKeepsCookie(t *testing.T) {
	var principal pkgAuth.Principal
	var accessID string
	sessions := fakeSessions{err: errors.New("redis down")}
	handler := Authenticate(testJWT, testCookie, sessions, nil)(captureIdentity(&principal, &accessID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: mintToken(t, enums.UserRoleUser, "jti-2")})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Zero(t, principal.UserID)
	assert.Empty(t, rec.Result().Cookies())
}

func assertCookieCleared(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie {
			assert.Equal(t, -1, c.MaxAge)
			return
		}
	}
	t.Fatalf("expected %s to be cleared", testCookie)
}
