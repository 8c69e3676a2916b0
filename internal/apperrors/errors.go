package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserDisabled      = errors.New("user is disabled")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenIsUsed   = errors.New("refresh token is used")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")

	ErrPresenceInvalidStatus = errors.New("presence status is invalid")

	ErrProductNotFound   = errors.New("product not found")
	ErrSellerNotVerified = errors.New("seller is not verified")
	ErrNotProductOwner   = errors.New("product belongs to different seller")

	ErrRecipientNotFound = errors.New("message recipient not found")

	ErrNoShippingRates = errors.New("no carriers returned rates")

	ErrForbidden = errors.New("operation is not allowed for this user")
)
