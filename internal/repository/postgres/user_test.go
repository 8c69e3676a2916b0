package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/models"
	"github.com/reviveshine/lib2usexpress/internal/repository"
	"github.com/reviveshine/lib2usexpress/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)
	params := repository.CreateUserParams{
		Email:          "kollie@example.lr",
		HashedPassword: "not-really-hashed",
		FirstName:      "Moses",
		LastName:       "Kollie",
		UserType:       models.UserTypeSeller,
		Location:       "Monrovia, Liberia",
	}

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			got, err := repo.CreateUser(t.Context(), params)

			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, got.ID)
			require.Equal(t, params.Email, got.Email)
			require.Equal(t, params.FirstName, got.FirstName)
			require.Equal(t, params.LastName, got.LastName)
			require.Equal(t, models.UserTypeSeller, got.UserType)
			require.Equal(t, params.Location, got.Location)
			require.False(t, got.Verified, "new seller must not be verified")
			require.Nil(t, got.DisabledAt)
			require.WithinDuration(t, time.Now(), got.CreatedAt, 5*time.Second)
		})
	})

	t.Run("create user with same email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			_, err := repo.CreateUser(t.Context(), params)
			require.NoError(t, err)

			_, err = repo.CreateUser(t.Context(), params)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("get user by id and email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			created, err := repo.CreateUser(t.Context(), params)
			require.NoError(t, err)

			byID, err := repo.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			require.Equal(t, created.ID, byID.ID)

			byEmail, err := repo.GetUserByEmail(t.Context(), params.Email)
			require.NoError(t, err)
			require.Equal(t, created.ID, byEmail.ID)
		})
	})

	t.Run("get not existed user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			_, err := repo.GetUserByID(t.Context(), uuid.New())
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

			_, err = repo.GetUserByEmail(t.Context(), "nobody@example.com")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("update profile partially", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			created, err := repo.CreateUser(t.Context(), params)
			require.NoError(t, err)

			location := "Philadelphia, USA"
			got, err := repo.UpdateProfile(t.Context(), created.ID, models.ProfileUpdate{Location: &location})

			require.NoError(t, err)
			require.Equal(t, location, got.Location)
			require.Equal(t, params.FirstName, got.FirstName, "nil field must be left untouched")
			require.Equal(t, params.LastName, got.LastName, "nil field must be left untouched")
		})
	})

	t.Run("set verified", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			created, err := repo.CreateUser(t.Context(), params)
			require.NoError(t, err)

			got, err := repo.SetVerified(t.Context(), created.ID, true)

			require.NoError(t, err)
			require.True(t, got.Verified)
		})
	})

	t.Run("set disabled and enable back", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			created, err := repo.CreateUser(t.Context(), params)
			require.NoError(t, err)

			now := time.Now()
			got, err := repo.SetDisabled(t.Context(), created.ID, &now)
			require.NoError(t, err)
			require.NotNil(t, got.DisabledAt)

			got, err = repo.SetDisabled(t.Context(), created.ID, nil)
			require.NoError(t, err)
			require.Nil(t, got.DisabledAt)
		})
	})
}
