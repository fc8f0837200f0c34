package auth

import (
	"context"
	"time"

	"github.com/hirel/referral-network/internal/user"
)

// TokenService mints and verifies signed bearer tokens.
// The production implementation is JWTService.
type TokenService interface {
	CreateToken(userID int64, ttl time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserStore is the identity lookup surface the auth flows need. The service
// never queries by arbitrary fields; this is the full contract.
type UserStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*user.User, error)
	FindByID(ctx context.Context, id int64) (*user.User, error)
	Create(ctx context.Context, email, mobileNumber *string) (*user.User, error)
}

// OTPStore persists one-time codes. Consume must be atomic: it fails with
// ErrOTPAlreadyUsed when the record was consumed concurrently.
type OTPStore interface {
	Create(ctx context.Context, userID int64, email, mobileNumber *string, code string, expiresAt time.Time) (*OTPRecord, error)
	FindValid(ctx context.Context, userID int64, code string, now time.Time) (*OTPRecord, error)
	Consume(ctx context.Context, id int64) error
}

// EmailService delivers one-time codes out of band. The auth service only
// depends on its success or failure signal.
type EmailService interface {
	SendOTPEmail(ctx context.Context, toEmail, code string, validFor time.Duration) error
}
