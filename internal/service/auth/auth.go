package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/models"
	"github.com/reviveshine/lib2usexpress/internal/repository"
	"github.com/reviveshine/lib2usexpress/internal/service/auth/tokenmanager"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

// Default hasher used when caller does not provide one
var DefaultHasher PasswordHasher = BcryptHasher{}

type Config struct {
	// Hasher to use during registration or login
	// BcryptHasher is used when not set
	Hasher PasswordHasher
}

type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	UserType  string
	Location  string
}

// AuthService issues, rotates and validates user credentials
//
// Refresh token rotation is scoped per token chain (per session): exchanging
// a token consumes only that token, other devices of the same user keep
// their own chains until logout-all revokes everything.
type AuthService struct {
	token    *tokenmanager.TokenManager
	hasher   PasswordHasher
	userRepo repository.UserRepo
}

func NewService(cfg Config, token *tokenmanager.TokenManager, userRepo repository.UserRepo) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	if token == nil || userRepo == nil {
		return nil, errors.New("token manager and user repo must not be nil")
	}

	return &AuthService{
		token:    token,
		hasher:   hasher,
		userRepo: userRepo,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, params RegisterParams) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return models.User{}, pair, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Email:          params.Email,
		HashedPassword: hash,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		UserType:       params.UserType,
		Location:       params.Location,
	})
	if err != nil {
		return user, pair, err
	}

	pair, err = s.token.GeneratePair(ctx, user)
	if err != nil {
		return user, pair, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return user, pair, nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	// Ignore lookup error: Compare against the empty hash below fails the
	// same way as a wrong password, so missing users are not distinguishable
	user, _ := s.userRepo.GetUserByEmail(ctx, email)

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return user, pair, apperrors.ErrUserNotFound
	}

	if user.DisabledAt != nil {
		return user, pair, apperrors.ErrUserDisabled
	}

	pair, err := s.token.GeneratePair(ctx, user)
	if err != nil {
		return user, pair, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return user, pair, nil
}

// RefreshPair exchanges a valid refresh token for a brand new pair
// The used token is consumed atomically: a second exchange fails
func (s *AuthService) RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	token, err := s.token.UseRefresh(ctx, refresh)
	if err != nil {
		return pair, err
	}

	user, err := s.userRepo.GetUserByID(ctx, token.UserID)
	if err != nil {
		return pair, fmt.Errorf("token owner lookup failed. Err: %w", err)
	}

	if user.DisabledAt != nil {
		return pair, apperrors.ErrUserDisabled
	}

	pair, err = s.token.GeneratePair(ctx, user)
	if err != nil {
		return pair, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return pair, nil
}

// Logout consumes the presented refresh token so it can't be exchanged later
// Errors for unknown or already dead tokens are ignored: logout is idempotent
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	_, err := s.token.UseRefresh(ctx, refresh)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrRefreshTokenNotFound),
		errors.Is(err, apperrors.ErrRefreshTokenIsUsed),
		errors.Is(err, apperrors.ErrRefreshTokenExpired):
		return nil
	default:
		return err
	}
}

// LogoutAll revokes every outstanding refresh token of the user
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.token.RevokeAll(ctx, userID)
}

// VerifyAccess validates the access token and returns the authenticated user
func (s *AuthService) VerifyAccess(ctx context.Context, access string) (models.User, error) {
	claims, err := s.token.ParseAccess(ctx, access)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return user, err
	}
	if user.DisabledAt != nil {
		return user, apperrors.ErrUserDisabled
	}

	return user, nil
}
