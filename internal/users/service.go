package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/parkinglot-manager/pkg/auth"
	"github.com/angelmondragon/parkinglot-manager/pkg/db/models"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
)

// Service covers account registration and self-service profile management.
// Calls that act on "the current user" take the caller's principal
// explicitly; a nil principal means an anonymous caller.
type Service interface {
	RegisterUser(ctx context.Context, input RegisterInput) (*models.User, error)
	CurrentUser(ctx context.Context, principal *auth.Principal) (*models.User, error)
	UpdateUserProfile(ctx context.Context, principal *auth.Principal, input ProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, principal *auth.Principal, oldPassword, newPassword string) (bool, error)
	DeleteCurrentUser(ctx context.Context, principal *auth.Principal) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type userRepository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

type service struct {
	repo   userRepository
	hasher passwordHasher
}

// NewService constructs the user service.
func NewService(repo userRepository, hasher passwordHasher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	return &service{repo: repo, hasher: hasher}, nil
}

func (s *service) RegisterUser(ctx context.Context, input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	taken, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, MsgUsernameExists).WithDetails(map[string]string{"field": "username"})
	}

	taken, err = s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, MsgEmailExists).WithDetails(map[string]string{"field": "email"})
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	// a concurrent registration can still win the race; the unique index
	// rejects it and the repo maps that to the same conflict messages
	user, err := s.repo.Create(ctx, CreateUserDTO{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PhoneNumber:  optionalString(input.PhoneNumber),
		Role:         enums.UserRoleUser,
	})
	if err != nil {
		return nil, wrapUnlessTyped(err, "create user")
	}
	return user, nil
}

func (s *service) CurrentUser(ctx context.Context, principal *auth.Principal) (*models.User, error) {
	if principal == nil || principal.UserID <= 0 {
		return nil, nil
	}
	user, err := s.repo.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load current user")
	}
	return user, nil
}

func (s *service) UpdateUserProfile(ctx context.Context, principal *auth.Principal, input ProfileInput) (*models.User, error) {
	user, err := s.CurrentUser(ctx, principal)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, MsgUserNotFound)
	}

	email := strings.TrimSpace(input.Email)
	if email != user.Email {
		taken, err := s.repo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, MsgEmailExists).WithDetails(map[string]string{"field": "email"})
		}
	}

	user.Email = email
	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.PhoneNumber = optionalString(input.PhoneNumber)

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, wrapUnlessTyped(err, "save profile")
	}
	return user, nil
}

func (s *service) ChangePassword(ctx context.Context, principal *auth.Principal, oldPassword, newPassword string) (bool, error) {
	user, err := s.CurrentUser(ctx, principal)
	if err != nil || user == nil {
		return false, err
	}

	ok, err := s.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return false, nil
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user.PasswordHash = hash
	if err := s.repo.Save(ctx, user); err != nil {
		return false, wrapUnlessTyped(err, "save password")
	}
	return true, nil
}

func (s *service) DeleteCurrentUser(ctx context.Context, principal *auth.Principal) error {
	if principal == nil || principal.UserID <= 0 {
		return nil
	}
	if _, err := s.repo.DeleteByID(ctx, principal.UserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	return nil
}

func (s *service) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

func (s *service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *service) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.repo.ExistsByUsername(ctx, username)
}

func (s *service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

func wrapUnlessTyped(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
