package middleware

import (
	"net/http"

	"github.com/angelmondragon/parkinglot-manager/api/responses"
	pkgAuth "github.com/angelmondragon/parkinglot-manager/pkg/auth"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
	"github.com/angelmondragon/parkinglot-manager/pkg/logger"
)

const loginPath = "/login"

// RequireAuthenticated redirects anonymous page requests to the login page.
// JSON requests get a 401 envelope instead.
func RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := pkgAuth.PrincipalFromContext(r.Context()); !ok {
				rejectAnonymous(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole admits principals holding one of roles. Anonymous requests go
// to the login page; everyone else gets forbidden.
func RequireRole(forbidden http.HandlerFunc, logg *logger.Logger, roles ...enums.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := pkgAuth.PrincipalFromContext(r.Context())
			if !ok {
				rejectAnonymous(w, r)
				return
			}
			if !principal.HasRole(roles...) {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "path", r.URL.Path), "auth.role_denied")
				}
				switch {
				case wantsJSON(r):
					responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				case forbidden == nil:
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				default:
					forbidden(w, r)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rejectAnonymous(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}
