package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/logger"
	"github.com/reviveshine/lib2usexpress/internal/models"
	"github.com/reviveshine/lib2usexpress/internal/repository"
)

type UserService struct {
	storage repository.Storage
	logger  logger.Logger
}

func NewService(storage repository.Storage, l logger.Logger) *UserService {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &UserService{
		storage: storage,
		logger:  l,
	}
}

func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (models.User, error) {
	return s.storage.User().UpdateProfile(ctx, userID, update)
}

// VerifySeller marks the seller as verified so it may list products
func (s *UserService) VerifySeller(ctx context.Context, sellerID uuid.UUID) (models.User, error) {
	user, err := s.storage.User().GetUserByID(ctx, sellerID)
	if err != nil {
		return models.User{}, err
	}

	if user.UserType != models.UserTypeSeller {
		return models.User{}, fmt.Errorf("user is not a seller: %w", apperrors.ErrForbidden)
	}

	return s.storage.User().SetVerified(ctx, sellerID, true)
}

// DisableUser locks the account and revokes its outstanding refresh tokens.
// Both writes run in one transaction: a failed revocation must not leave the
// user locked while its sessions stay live
func (s *UserService) DisableUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	now := time.Now()

	var user models.User
	var revoked int64

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		var err error

		user, err = st.User().SetDisabled(ctx, userID, &now)
		if err != nil {
			return err
		}

		revoked, err = st.Refresh().RevokeAllForUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to revoke user tokens: %w", err)
		}

		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	s.logger.Info("user disabled", "userID", userID, "revokedTokens", revoked)
	return user, nil
}

// EnableUser lifts the disabled flag
func (s *UserService) EnableUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().SetDisabled(ctx, userID, nil)
}
