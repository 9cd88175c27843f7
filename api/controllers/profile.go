package controllers

import (
	"net/http"
	"unicode/utf8"

	"github.com/angelmondragon/parkinglot-manager/api/middleware"
	"github.com/angelmondragon/parkinglot-manager/api/validators"
	"github.com/angelmondragon/parkinglot-manager/api/views"
	"github.com/angelmondragon/parkinglot-manager/internal/auth"
	"github.com/angelmondragon/parkinglot-manager/internal/users"
	"github.com/angelmondragon/parkinglot-manager/pkg/db/models"
	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
	"github.com/angelmondragon/parkinglot-manager/pkg/flash"
)

const (
	MsgProfileUpdated    = "Profile updated successfully!"
	MsgPasswordChanged   = "Password changed successfully!"
	MsgPasswordTooShort  = "New password must be at least 6 characters long!"
	MsgPasswordMismatch  = "New passwords do not match!"
	MsgPasswordIncorrect = "Current password is incorrect!"
	MsgAccountDeleted    = "Your account has been deleted successfully!"
	MsgAccountDeleteFail = "Error deleting account. Please try again."

	minPasswordLength = 6
	profilePath       = "/profile"
)

// ProfilePages groups the self-service account handlers.
type ProfilePages struct {
	Pages
	Users users.Service
	Auth  auth.Service
}

// currentUser loads the signed-in user or redirects to the login page.
func (pp ProfilePages) currentUser(w http.ResponseWriter, r *http.Request) *models.User {
	user, err := pp.Users.CurrentUser(r.Context(), principalFrom(r.Context()))
	if err != nil {
		pp.fail(w, r, "profile.load_failed", err)
		return nil
	}
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil
	}
	return user
}

func (pp ProfilePages) View(w http.ResponseWriter, r *http.Request) {
	user := pp.currentUser(w, r)
	if user == nil {
		return
	}
	pp.Views.Render(w, r, http.StatusOK, views.PageProfile, views.Page{
		Title: "My profile",
		Data:  map[string]any{"user": user},
	})
}

func (pp ProfilePages) EditForm(w http.ResponseWriter, r *http.Request) {
	user := pp.currentUser(w, r)
	if user == nil {
		return
	}
	form := validators.ProfileForm{
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PhoneNumber: user.Phone(),
	}
	pp.renderEdit(w, r, http.StatusOK, user.Username, form, nil, nil)
}

func (pp ProfilePages) renderEdit(w http.ResponseWriter, r *http.Request, status int, username string, form validators.ProfileForm, errs map[string]string, msgs []flash.Message) {
	pp.Views.Render(w, r, status, views.PageProfileEdit, views.Page{
		Title:    "Edit profile",
		Form:     form,
		Errors:   errs,
		Messages: msgs,
		Data:     map[string]any{"username": username},
	})
}

// Update saves the editable profile fields. The username is shown again on
// every redisplay of the form.
func (pp ProfilePages) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := principalFrom(ctx)
	username := ""
	if principal != nil {
		username = principal.Username
	}

	var form validators.ProfileForm
	fieldErrs, err := validators.DecodeForm(r, &form)
	if err != nil {
		pp.renderEdit(w, r, http.StatusBadRequest, username, form, nil, []flash.Message{flash.Error(pkgerrors.UserMessage(err))})
		return
	}
	if len(fieldErrs) > 0 {
		pp.renderEdit(w, r, http.StatusUnprocessableEntity, username, form, fieldErrs, nil)
		return
	}

	_, err = pp.Users.UpdateUserProfile(ctx, principal, users.ProfileInput{
		Email:       form.Email,
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		PhoneNumber: form.PhoneNumber,
	})
	if err != nil {
		if field := conflictField(err); field != "" {
			pp.renderEdit(w, r, http.StatusUnprocessableEntity, username, form, map[string]string{field: pkgerrors.UserMessage(err)}, nil)
			return
		}
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		pp.log().Error(ctx, "profile.update_failed", err)
		pp.renderEdit(w, r, http.StatusInternalServerError, username, form, nil, []flash.Message{flash.Error(pkgerrors.UserMessage(err))})
		return
	}

	pp.redirectWithFlash(w, r, profilePath, flash.Success(MsgProfileUpdated))
}

func (pp ProfilePages) ChangePasswordForm(w http.ResponseWriter, r *http.Request) {
	pp.renderChangePassword(w, r, http.StatusOK, nil)
}

func (pp ProfilePages) renderChangePassword(w http.ResponseWriter, r *http.Request, status int, msgs []flash.Message) {
	pp.Views.Render(w, r, status, views.PageChangePassword, views.Page{
		Title:    "Change password",
		Messages: msgs,
	})
}

// ChangePassword checks length, then confirmation, then the current password.
func (pp ProfilePages) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var form validators.PasswordForm
	if _, err := validators.DecodeForm(r, &form); err != nil {
		pp.renderChangePassword(w, r, http.StatusBadRequest, []flash.Message{flash.Error(pkgerrors.UserMessage(err))})
		return
	}

	switch {
	case utf8.RuneCountInString(form.NewPassword) < minPasswordLength:
		pp.renderChangePassword(w, r, http.StatusUnprocessableEntity, []flash.Message{flash.Error(MsgPasswordTooShort)})
		return
	case form.NewPassword != form.ConfirmPassword:
		pp.renderChangePassword(w, r, http.StatusUnprocessableEntity, []flash.Message{flash.Error(MsgPasswordMismatch)})
		return
	}

	changed, err := pp.Users.ChangePassword(ctx, principalFrom(ctx), form.OldPassword, form.NewPassword)
	if err != nil {
		pp.log().Error(ctx, "profile.change_password_failed", err)
		pp.renderChangePassword(w, r, http.StatusInternalServerError, []flash.Message{flash.Error(pkgerrors.UserMessage(err))})
		return
	}
	if !changed {
		pp.renderChangePassword(w, r, http.StatusUnprocessableEntity, []flash.Message{flash.Error(MsgPasswordIncorrect)})
		return
	}

	pp.redirectWithFlash(w, r, profilePath, flash.Success(MsgPasswordChanged))
}

func (pp ProfilePages) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	pp.Views.Render(w, r, http.StatusOK, views.PageProfileDelete, views.Page{Title: "Delete account"})
}

// Delete removes the caller's account and ends their session.
func (pp ProfilePages) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := pp.Users.DeleteCurrentUser(ctx, principalFrom(ctx)); err != nil {
		pp.log().Error(ctx, "profile.delete_failed", err)
		pp.redirectWithFlash(w, r, profilePath, flash.Error(MsgAccountDeleteFail))
		return
	}

	if pp.Auth != nil {
		if err := pp.Auth.Logout(ctx, middleware.AccessIDFromContext(ctx)); err != nil {
			pp.log().Error(ctx, "profile.delete_revoke_failed", err)
		}
	}
	pp.clearSessionCookie(w)
	pp.log().Info(ctx, "profile.deleted")
	pp.redirectWithFlash(w, r, "/", flash.Success(MsgAccountDeleted))
}
