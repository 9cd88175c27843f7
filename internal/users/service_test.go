package users

import (
	"context"
	"testing"

	"github.com/angelmondragon/parkinglot-manager/pkg/auth"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(newTestDB(t))
	svc, err := NewService(repo, newTestHasher())
	require.NoError(t, err)
	return svc, repo
}

func registerInput(username, email string) RegisterInput {
	return RegisterInput{
		Username:  username,
		Password:  "secret1",
		Email:     email,
		FirstName: "Jane",
		LastName:  "Doe",
	}
}

func principalFor(t *testing.T, svc Service, username string) *auth.Principal {
	t.Helper()
	user, err := svc.FindByUsername(context.Background(), username)
	require.NoError(t, err)
	require.NotNil(t, user)
	return &auth.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(nil, newTestHasher())
	require.Error(t, err)
	_, err = NewService(NewRepository(newTestDB(t)), nil)
	require.Error(t, err)
}

func TestRegisterUserHashesPasswordAndAssignsUserRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := registerInput("jdoe", "jdoe@example.com")
	in.PhoneNumber = "  "
	user, err := svc.RegisterUser(ctx, in)
	require.NoError(t, err)
	require.Equal(t, enums.UserRoleUser, user.Role)
	require.NotEqual(t, "secret1", user.PasswordHash)
	require.Nil(t, user.PhoneNumber)

	ok, err := newTestHasher().Verify("secret1", user.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRegisterUserDuplicateUsernameLeavesOriginalUnchanged(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	original, err := svc.RegisterUser(ctx, registerInput("admin", "admin@parking.com"))
	require.NoError(t, err)

	dup := registerInput("admin", "other@parking.com")
	dup.Password = "different"
	_, err = svc.RegisterUser(ctx, dup)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	require.Equal(t, "Username already exists!", pkgerrors.UserMessage(err))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	stored, err := svc.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	require.Equal(t, original.PasswordHash, stored.PasswordHash)
	require.Equal(t, "admin@parking.com", stored.Email)
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, registerInput("first", "shared@example.com"))
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, registerInput("second", "shared@example.com"))
	require.Equal(t, "Email already exists!", pkgerrors.UserMessage(err))

	exists, err := svc.ExistsByUsername(ctx, "second")
	require.NoError(t, err)
	require.False(t, exists)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestCurrentUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.CurrentUser(ctx, nil)
	require.NoError(t, err)
	require.Nil(t, user)

	user, err = svc.CurrentUser(ctx, &auth.Principal{UserID: 404, Username: "ghost", Role: enums.UserRoleUser})
	require.NoError(t, err)
	require.Nil(t, user)

	_, err = svc.RegisterUser(ctx, registerInput("jdoe", "jdoe@example.com"))
	require.NoError(t, err)
	user, err = svc.CurrentUser(ctx, principalFor(t, svc, "jdoe"))
	require.NoError(t, err)
	require.Equal(t, "jdoe", user.Username)
}

func TestUpdateUserProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, registerInput("jdoe", "jdoe@example.com"))
	require.NoError(t, err)
	_, err = svc.RegisterUser(ctx, registerInput("other", "other@example.com"))
	require.NoError(t, err)
	p := principalFor(t, svc, "jdoe")

	_, err = svc.UpdateUserProfile(ctx, nil, ProfileInput{Email: "x@example.com"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	require.Equal(t, "User not found!", pkgerrors.UserMessage(err))

	_, err = svc.UpdateUserProfile(ctx, p, ProfileInput{Email: "other@example.com", FirstName: "J", LastName: "D"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	require.Equal(t, "Email already exists!", pkgerrors.UserMessage(err))

	updated, err := svc.UpdateUserProfile(ctx, p, ProfileInput{
		Email:       "jane@example.com",
		FirstName:   "Janet",
		LastName:    "Dough",
		PhoneNumber: "555-0101",
	})
	require.NoError(t, err)
	require.Equal(t, "jdoe", updated.Username)
	require.Equal(t, "jane@example.com", updated.Email)
	require.Equal(t, "Janet", updated.FirstName)
	require.Equal(t, "555-0101", updated.Phone())

	// keeping the same email is not a conflict with oneself
	_, err = svc.UpdateUserProfile(ctx, p, ProfileInput{Email: "jane@example.com", FirstName: "Janet", LastName: "Dough"})
	require.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, registerInput("jdoe", "jdoe@example.com"))
	require.NoError(t, err)
	p := principalFor(t, svc, "jdoe")

	ok, err := svc.ChangePassword(ctx, nil, "secret1", "newpass")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.ChangePassword(ctx, p, "wrong", "newpass")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.ChangePassword(ctx, p, "secret1", "newpass")
	require.NoError(t, err)
	require.True(t, ok)

	stored, err := svc.FindByUsername(ctx, "jdoe")
	require.NoError(t, err)
	verified, err := newTestHasher().Verify("newpass", stored.PasswordHash)
	require.NoError(t, err)
	require.True(t, verified)
	verified, err = newTestHasher().Verify("secret1", stored.PasswordHash)
	require.NoError(t, err)
	require.False(t, verified)
}

func TestDeleteCurrentUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.DeleteCurrentUser(ctx, nil))

	_, err := svc.RegisterUser(ctx, registerInput("jdoe", "jdoe@example.com"))
	require.NoError(t, err)
	p := principalFor(t, svc, "jdoe")

	require.NoError(t, svc.DeleteCurrentUser(ctx, p))
	user, err := svc.FindByEmail(ctx, "jdoe@example.com")
	require.NoError(t, err)
	require.Nil(t, user)
}
