package users

import (
	"context"
	"testing"

	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
	"github.com/stretchr/testify/require"
)

func seedDTO(username, email string) CreateUserDTO {
	return CreateUserDTO{
		Username:     username,
		PasswordHash: "hash",
		Email:        email,
		FirstName:    "Jane",
		LastName:     "Doe",
	}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, seedDTO("jdoe", "jdoe@example.com"))
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, enums.UserRoleUser, created.Role)

	byName, err := repo.FindByUsername(ctx, "jdoe")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	byEmail, err := repo.FindByEmail(ctx, "jdoe@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "jdoe", byID.Username)

	exists, err := repo.ExistsByUsername(ctx, "jdoe")
	require.NoError(t, err)
	require.True(t, exists)
	exists, err = repo.ExistsByEmail(ctx, "other@example.com")
	require.NoError(t, err)
	require.False(t, exists)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestRepositoryAbsentIsNil(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	user, err := repo.FindByUsername(ctx, "ghost")
	require.NoError(t, err)
	require.Nil(t, user)

	user, err = repo.FindByID(ctx, 999)
	require.NoError(t, err)
	require.Nil(t, user)

	removed, err := repo.DeleteByID(ctx, 999)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestRepositoryUniqueViolationsAreConflicts(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, seedDTO("jdoe", "jdoe@example.com"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, seedDTO("jdoe", "second@example.com"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
	require.Equal(t, MsgUsernameExists, pkgerrors.As(err).Message())

	_, err = repo.Create(ctx, seedDTO("second", "jdoe@example.com"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
	require.Equal(t, MsgEmailExists, pkgerrors.As(err).Message())

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestRepositoryDelete(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, seedDTO("jdoe", "jdoe@example.com"))
	require.NoError(t, err)

	removed, err := repo.DeleteByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, removed)

	user, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Nil(t, user)
}
