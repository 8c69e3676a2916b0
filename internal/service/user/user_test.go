package user

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
	"github.com/reviveshine/lib2usexpress/internal/repository/postgres"
	"github.com/reviveshine/lib2usexpress/internal/testutil"
)

// Service over real repos inside a rolled back transaction
type userFixture struct {
	service *UserService
	users   *postgres.UserRepo
	refresh *postgres.RefreshTokenRepo
}

func newFixture(tx pgx.Tx) userFixture {
	return userFixture{
		service: NewService(postgres.NewStorage(tx), nil),
		users:   &postgres.UserRepo{DB: tx},
		refresh: &postgres.RefreshTokenRepo{DB: tx},
	}
}

func (f userFixture) createUser(t *testing.T, userType string) models.User {
	t.Helper()
	user, err := f.users.CreateUser(t.Context(), repository.CreateUserParams{
		Email:          uuid.NewString() + "@example.com",
		HashedPassword: "hash",
		FirstName:      "Tete",
		LastName:       "Weah",
		UserType:       userType,
	})
	require.NoError(t, err)
	return user
}

func (f userFixture) saveToken(t *testing.T, userID uuid.UUID) models.RefreshToken {
	t.Helper()
	token, err := f.refresh.Save(t.Context(), models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     uuid.NewString(),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return token
}

func Test_UserService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("verify seller ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(tx)
			seller := f.createUser(t, models.UserTypeSeller)

			got, err := f.service.VerifySeller(t.Context(), seller.ID)

			require.NoError(t, err)
			require.True(t, got.Verified)
		})
	})

	t.Run("verify rejects buyers", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(tx)
			buyer := f.createUser(t, models.UserTypeBuyer)

			_, err := f.service.VerifySeller(t.Context(), buyer.ID)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrForbidden)
		})
	})

	t.Run("verify unknown user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(tx)

			_, err := f.service.VerifySeller(t.Context(), uuid.New())

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("disable revokes refresh tokens", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(tx)
			user := f.createUser(t, models.UserTypeBuyer)
			token := f.saveToken(t, user.ID)

			got, err := f.service.DisableUser(t.Context(), user.ID)

			require.NoError(t, err)
			require.NotNil(t, got.DisabledAt)

			stored, err := f.refresh.Get(t.Context(), token.Token)
			require.NoError(t, err)
			require.NotNil(t, stored.RevokedAt, "outstanding tokens must be revoked on disable")
		})
	})

	t.Run("disable rolls back when revoking fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(tx)
			user := f.createUser(t, models.UserTypeBuyer)

			// Hide the tokens table so the revocation step fails mid-transaction
			_, err := tx.Exec(t.Context(), "ALTER TABLE refresh_tokens RENAME TO refresh_tokens_hidden")
			require.NoError(t, err)

			_, err = f.service.DisableUser(t.Context(), user.ID)
			require.Error(t, err)

			stored, err := f.users.GetUserByID(t.Context(), user.ID)
			require.NoError(t, err)
			require.Nil(t, stored.DisabledAt, "failed disable must not leave the user locked")
		})
	})

	t.Run("enable user back", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(tx)
			user := f.createUser(t, models.UserTypeBuyer)
			_, err := f.service.DisableUser(t.Context(), user.ID)
			require.NoError(t, err)

			got, err := f.service.EnableUser(t.Context(), user.ID)

			require.NoError(t, err)
			require.Nil(t, got.DisabledAt)
		})
	})

	t.Run("update profile", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			f := newFixture(tx)
			user := f.createUser(t, models.UserTypeBuyer)

			location := "Brewerville, Liberia"
			got, err := f.service.UpdateProfile(t.Context(), user.ID, models.ProfileUpdate{Location: &location})

			require.NoError(t, err)
			require.Equal(t, location, got.Location)
		})
	})
}
