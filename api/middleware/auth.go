package middleware

import (
	"net/http"
	"strings"

	pkgAuth "github.com/angelmondragon/parkinglot-manager/pkg/auth"
	"github.com/angelmondragon/parkinglot-manager/pkg/auth/session"
	"github.com/angelmondragon/parkinglot-manager/pkg/config"
	"github.com/angelmondragon/parkinglot-manager/pkg/logger"
)

// Authenticate resolves the session cookie into a principal. Requests without
// a valid, live session continue anonymously; a stale cookie is cleared.
func Authenticate(cfg config.JWTConfig, cookieName string, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || strings.TrimSpace(cookie.Value) == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			claims, err := pkgAuth.ParseAccessToken(cfg, cookie.Value)
			if err != nil || claims.ID == "" {
				if logg != nil {
					logg.Debug(ctx, "auth.session_cookie_invalid")
				}
				clearCookie(w, cookieName)
				next.ServeHTTP(w, r)
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(ctx, claims.ID)
				if err != nil {
					if logg != nil {
						logg.Error(ctx, "auth.session_lookup_failed", err)
					}
					next.ServeHTTP(w, r)
					return
				}
				if !ok {
					clearCookie(w, cookieName)
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx = pkgAuth.WithPrincipal(ctx, claims.Principal())
			ctx = withAccessID(ctx, claims.ID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID)
				ctx = logg.WithUsername(ctx, claims.Username)
				ctx = logg.WithActorRole(ctx, string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
