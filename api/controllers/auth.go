package controllers

import (
	"net/http"

	"github.com/angelmondragon/parkinglot-manager/api/middleware"
	"github.com/angelmondragon/parkinglot-manager/api/validators"
	"github.com/angelmondragon/parkinglot-manager/api/views"
	"github.com/angelmondragon/parkinglot-manager/internal/auth"
	"github.com/angelmondragon/parkinglot-manager/internal/parkinglots"
	"github.com/angelmondragon/parkinglot-manager/internal/users"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
	"github.com/angelmondragon/parkinglot-manager/pkg/flash"
)

const (
	MsgRegistered = "Registration successful! Please login with your credentials."
	MsgLoggedOut  = "You have been logged out successfully!"
)

func Home(p Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.Views.Render(w, r, http.StatusOK, views.PageIndex, views.Page{Title: "Parking Lot Manager"})
	}
}

func RegisterPage(p Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.Views.Render(w, r, http.StatusOK, views.PageRegister, views.Page{
			Title: "Register",
			Form:  validators.RegisterForm{},
		})
	}
}

// Register creates a USER account. Field and uniqueness errors re-render the
// form with the submitted values.
func Register(p Pages, svc users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form validators.RegisterForm
		fieldErrs, err := validators.DecodeForm(r, &form)
		if err != nil {
			p.fail(w, r, "register.decode_failed", err)
			return
		}
		page := views.Page{Title: "Register", Form: form}
		if len(fieldErrs) > 0 {
			page.Errors = fieldErrs
			p.Views.Render(w, r, http.StatusUnprocessableEntity, views.PageRegister, page)
			return
		}

		_, err = svc.RegisterUser(r.Context(), users.RegisterInput{
			Username:    form.Username,
			Password:    form.Password,
			Email:       form.Email,
			FirstName:   form.FirstName,
			LastName:    form.LastName,
			PhoneNumber: form.PhoneNumber,
		})
		if err != nil {
			status := http.StatusUnprocessableEntity
			if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
				p.log().Error(r.Context(), "register.failed", err)
				status = http.StatusInternalServerError
			}
			page.Messages = []flash.Message{flash.Error(pkgerrors.UserMessage(err))}
			p.Views.Render(w, r, status, views.PageRegister, page)
			return
		}

		p.log().Info(p.log().WithUsername(r.Context(), form.Username), "register.succeeded")
		p.redirectWithFlash(w, r, "/login", flash.Success(MsgRegistered))
	}
}

func LoginPage(p Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := views.Page{Title: "Login", Form: validators.LoginForm{}}
		if validators.HasQueryFlag(r, "error") {
			page.Messages = append(page.Messages, flash.Error(auth.MsgInvalidCredentials))
		}
		if validators.HasQueryFlag(r, "logout") {
			page.Messages = append(page.Messages, flash.Success(MsgLoggedOut))
		}
		p.Views.Render(w, r, http.StatusOK, views.PageLogin, page)
	}
}

// Login authenticates the form credentials, sets the session cookie and
// sends the user to the landing page of their role.
func Login(p Pages, svc auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form validators.LoginForm
		fieldErrs, err := validators.DecodeForm(r, &form)
		if err != nil || len(fieldErrs) > 0 {
			http.Redirect(w, r, "/login?error", http.StatusSeeOther)
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginRequest{Username: form.Username, Password: form.Password})
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
				p.log().Warn(p.log().WithUsername(r.Context(), form.Username), "login.rejected")
				http.Redirect(w, r, "/login?error", http.StatusSeeOther)
				return
			}
			p.log().Error(r.Context(), "login.failed", err)
			p.redirectWithFlash(w, r, "/login", flash.Error(pkgerrors.UserMessage(err)))
			return
		}

		p.setSessionCookie(w, result.Token, result.ExpiresAt)
		http.Redirect(w, r, landingFor(result.Principal.Role), http.StatusSeeOther)
	}
}

func landingFor(role enums.UserRole) string {
	if role == enums.UserRoleLotManager {
		return "/lot-manager/dashboard"
	}
	return "/dashboard"
}

// Logout ends the server-side session. A failed revoke is logged and the
// cookie is cleared regardless.
func Logout(p Pages, svc auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context(), middleware.AccessIDFromContext(r.Context())); err != nil {
			p.log().Error(r.Context(), "logout.revoke_failed", err)
		}
		p.clearSessionCookie(w)
		http.Redirect(w, r, "/login?logout", http.StatusSeeOther)
	}
}

// Dashboard shows the signed-in user and the lots currently accepting cars.
func Dashboard(p Pages, userSvc users.Service, lotSvc parkinglots.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := userSvc.CurrentUser(r.Context(), principalFrom(r.Context()))
		if err != nil {
			p.fail(w, r, "dashboard.user_failed", err)
			return
		}
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		lots, err := lotSvc.GetAvailableParkingLots(r.Context())
		if err != nil {
			p.fail(w, r, "dashboard.lots_failed", err)
			return
		}
		p.Views.Render(w, r, http.StatusOK, views.PageDashboard, views.Page{
			Title: "Dashboard",
			Data: map[string]any{
				"user":               user,
				"parkingLots":        lots,
				"totalAvailableLots": len(lots),
			},
		})
	}
}
