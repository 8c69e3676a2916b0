package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/models"
	"github.com/reviveshine/lib2usexpress/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const userCols = `id, created_at, email, password_hash, first_name, last_name, user_type, location, verified, disabled_at`

const createUser = `-- name: CreateUser
INSERT INTO users (id, email, password_hash, first_name, last_name, user_type, location)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userCols

func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), arg.Email, arg.HashedPassword, arg.FirstName, arg.LastName, arg.UserType, arg.Location)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return user, apperrors.ErrUserAlreadyExists
		}
	}

	return user, err
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userCols + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return user, apperrors.ErrUserNotFound
	}

	return user, err
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userCols + ` FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return user, apperrors.ErrUserNotFound
	}

	return user, err
}

const updateProfile = `-- name: UpdateProfile
UPDATE users
SET first_name = COALESCE($2, first_name),
    last_name  = COALESCE($3, last_name),
    location   = COALESCE($4, location)
WHERE id = $1
RETURNING ` + userCols

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateProfile, id, update.FirstName, update.LastName, update.Location)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return user, apperrors.ErrUserNotFound
	}

	return user, err
}

const setVerified = `-- name: SetVerified
UPDATE users
SET verified = $2
WHERE id = $1
RETURNING ` + userCols

func (r *UserRepo) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (models.User, error) {
	rows, _ := r.DB.Query(ctx, setVerified, id, verified)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return user, apperrors.ErrUserNotFound
	}

	return user, err
}

const setDisabled = `-- name: SetDisabled
UPDATE users
SET disabled_at = $2
WHERE id = $1
RETURNING ` + userCols

func (r *UserRepo) SetDisabled(ctx context.Context, id uuid.UUID, disabledAt *time.Time) (models.User, error) {
	rows, _ := r.DB.Query(ctx, setDisabled, id, disabledAt)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return user, apperrors.ErrUserNotFound
	}

	return user, err
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Email, &u.HashedPassword, &u.FirstName, &u.LastName, &u.UserType, &u.Location, &u.Verified, &u.DisabledAt)
	return u, err
}
