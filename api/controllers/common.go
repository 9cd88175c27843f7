package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/parkinglot-manager/api/views"
	pkgAuth "github.com/angelmondragon/parkinglot-manager/pkg/auth"
	"github.com/angelmondragon/parkinglot-manager/pkg/config"
	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
	"github.com/angelmondragon/parkinglot-manager/pkg/flash"
	"github.com/angelmondragon/parkinglot-manager/pkg/logger"
)

// Renderer is the view surface the page handlers depend on.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name string, p views.Page)
	Error(w http.ResponseWriter, r *http.Request, status int)
}

// Pages bundles what every HTML handler needs.
type Pages struct {
	Views   Renderer
	Flash   flash.Flasher
	Session config.SessionConfig
	Logger  *logger.Logger
}

func (p Pages) log() *logger.Logger {
	if p.Logger == nil {
		return logger.Nop()
	}
	return p.Logger
}

// redirectWithFlash queues msg and redirects with 303 so the browser issues a GET.
func (p Pages) redirectWithFlash(w http.ResponseWriter, r *http.Request, to string, msg flash.Message) {
	if p.Flash != nil {
		if err := p.Flash.Add(w, r, msg); err != nil {
			p.log().Error(r.Context(), "flash.add_failed", err)
		}
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (p Pages) fail(w http.ResponseWriter, r *http.Request, event string, err error) {
	p.log().Error(r.Context(), event, err)
	p.Views.Error(w, r, http.StatusInternalServerError)
}

func (p Pages) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   p.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (p Pages) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func principalFrom(ctx context.Context) *pkgAuth.Principal {
	p, ok := pkgAuth.PrincipalFromContext(ctx)
	if !ok {
		return nil
	}
	return &p
}

// conflictField returns the form field a conflict error points at, if any.
func conflictField(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		return ""
	}
	if details, ok := typed.Details().(map[string]string); ok {
		return details["field"]
	}
	return ""
}
