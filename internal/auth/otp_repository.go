package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/hirel/referral-network/internal/database"
)

var (
	ErrOTPNotFound    = errors.New("otp not found")
	ErrOTPAlreadyUsed = errors.New("otp already consumed")
)

// OTPRecord is an immutable snapshot of a one-time code.
type OTPRecord struct {
	ID           int64
	UserID       *int64
	Email        *string
	MobileNumber *string
	Code         string
	ExpiresAt    time.Time
	Used         bool
	CreatedAt    time.Time
}

// OTPRepository handles one-time code persistence. Previously issued codes
// for the same identifier are left untouched on issue; multiple unconsumed
// codes may coexist until they expire.
type OTPRepository struct {
	db *bun.DB
}

func NewOTPRepository(db *bun.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Create persists a new code bound to a user and an absolute expiry. The
// identifier lands in the column matching its kind; the other stays null.
func (r *OTPRepository) Create(ctx context.Context, userID int64, email, mobileNumber *string, code string, expiresAt time.Time) (*OTPRecord, error) {
	dbOTP := &database.OTP{
		UserID:       &userID,
		Email:        email,
		MobileNumber: mobileNumber,
		Code:         code,
		ExpiresAt:    expiresAt,
		Used:         false,
	}

	_, err := r.db.NewInsert().
		Model(dbOTP).
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to create otp: %w", err)
	}

	return mapDBOTPToRecord(dbOTP), nil
}

// FindValid retrieves the newest unconsumed, unexpired code matching the user
// and the exact code. The caller supplies a single now reference so every
// candidate is judged against the same instant.
func (r *OTPRepository) FindValid(ctx context.Context, userID int64, code string, now time.Time) (*OTPRecord, error) {
	dbOTP := new(database.OTP)
	err := r.db.NewSelect().
		Model(dbOTP).
		Where("user_id = ?", userID).
		Where("otp_code = ?", code).
		Where("used = ?", false).
		Where("expires_at > ?", now).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOTPNotFound
		}
		return nil, fmt.Errorf("failed to find valid otp: %w", err)
	}

	return mapDBOTPToRecord(dbOTP), nil
}

// Consume marks a code used via a conditional update. The rows-affected check
// makes consumption atomic: of two concurrent verifications holding the same
// record, only one can win.
func (r *OTPRepository) Consume(ctx context.Context, id int64) error {
	result, err := r.db.NewUpdate().
		Model((*database.OTP)(nil)).
		Set("used = ?", true).
		Where("id = ?", id).
		Where("used = ?", false).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to consume otp: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrOTPAlreadyUsed
	}

	return nil
}

func mapDBOTPToRecord(dbo *database.OTP) *OTPRecord {
	return &OTPRecord{
		ID:           dbo.ID,
		UserID:       dbo.UserID,
		Email:        dbo.Email,
		MobileNumber: dbo.MobileNumber,
		Code:         dbo.Code,
		ExpiresAt:    dbo.ExpiresAt,
		Used:         dbo.Used,
		CreatedAt:    dbo.CreatedAt,
	}
}
