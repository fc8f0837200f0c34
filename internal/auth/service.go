package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hirel/referral-network/internal/logging"
	"github.com/hirel/referral-network/internal/user"
)

// ErrInvalidOTP is the single outcome for every verification failure: wrong
// code, expired, already used, or unknown identifier. Callers cannot tell
// which part of the guess was wrong.
var ErrInvalidOTP = errors.New("invalid or expired OTP")

// Service implements the passwordless login flows: issuing one-time codes and
// exchanging a valid code for a signed access token.
type Service struct {
	users  UserStore
	otps   OTPStore
	tokens TokenService
	email  EmailService
	logger *logging.Logger

	otpLength           int
	otpDuration         time.Duration
	accessTokenDuration time.Duration
}

func NewService(
	users UserStore,
	otps OTPStore,
	tokens TokenService,
	email EmailService,
	logger *logging.Logger,
	otpLength int,
	otpDuration time.Duration,
	accessTokenDuration time.Duration,
) *Service {
	return &Service{
		users:               users,
		otps:                otps,
		tokens:              tokens,
		email:               email,
		logger:              logger,
		otpLength:           otpLength,
		otpDuration:         otpDuration,
		accessTokenDuration: accessTokenDuration,
	}
}

// AuthTokens is the verify-otp success payload.
type AuthTokens struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RequestOTP issues a one-time code for the identifier, creating the user on
// first contact. Exactly one of email and mobileNumber must be non-empty; the
// handler enforces that before calling. The generated code is returned so the
// handler can echo it in development mode.
//
// Previously issued unconsumed codes stay valid until they expire.
func (s *Service) RequestOTP(ctx context.Context, email, mobileNumber string) (string, error) {
	identifier, emailPtr, mobilePtr := normalizeIdentifier(email, mobileNumber)

	u, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return "", fmt.Errorf("failed to look up user: %w", err)
		}
		u, err = s.users.Create(ctx, emailPtr, mobilePtr)
		if err != nil {
			return "", fmt.Errorf("failed to create user: %w", err)
		}
		s.logger.Info("user created for new identifier", "user_id", u.ID)
	}

	code, err := GenerateCode(s.otpLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.otpDuration)
	if _, err := s.otps.Create(ctx, u.ID, emailPtr, mobilePtr, code, expiresAt); err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}

	if emailPtr != nil {
		// Delivery is fire-and-forget; a lost email is recovered by
		// requesting a fresh code.
		go func() {
			if err := s.email.SendOTPEmail(context.Background(), identifier, code, s.otpDuration); err != nil {
				s.logger.Warn("failed to send otp email", "identifier", identifier, "error", err)
			}
		}()
	} else {
		// No SMS provider is wired up yet; the code still reaches dev
		// clients through the handler's development echo.
		s.logger.Info("otp generated for mobile identifier", "identifier", identifier)
	}

	return code, nil
}

// VerifyOTP validates and consumes a one-time code, minting an access token
// on success. Consumption is atomic: of two concurrent verifications of the
// same code, at most one receives a token.
func (s *Service) VerifyOTP(ctx context.Context, email, mobileNumber, code string) (*AuthTokens, error) {
	identifier, _, _ := normalizeIdentifier(email, mobileNumber)

	u, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Never create a user here; an unknown identifier fails closed.
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	record, err := s.otps.FindValid(ctx, u.ID, code, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrOTPNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("failed to find otp: %w", err)
	}

	if err := s.otps.Consume(ctx, record.ID); err != nil {
		if errors.Is(err, ErrOTPAlreadyUsed) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("failed to consume otp: %w", err)
	}

	accessToken, err := s.tokens.CreateToken(u.ID, s.accessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	s.logger.Info("otp verified", "user_id", u.ID)

	return &AuthTokens{
		AccessToken: accessToken,
		TokenType:   "bearer",
	}, nil
}

// normalizeIdentifier lowercases email identifiers and returns the value in
// pointer form for the column matching its kind.
func normalizeIdentifier(email, mobileNumber string) (identifier string, emailPtr, mobilePtr *string) {
	if email != "" {
		normalized := strings.ToLower(strings.TrimSpace(email))
		return normalized, &normalized, nil
	}
	trimmed := strings.TrimSpace(mobileNumber)
	return trimmed, nil, &trimmed
}
