package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/hirel/referral-network/internal/database"
)

var (
	ErrNotFound            = errors.New("user not found")
	ErrDuplicateIdentifier = errors.New("identifier already registered")
	ErrNoFieldsToUpdate    = errors.New("no fields provided for update")
)

// Repository handles user persistence.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. Exactly one of email and mobileNumber should be
// set; the caller enforces that invariant.
func (r *Repository) Create(ctx context.Context, email, mobileNumber *string) (*User, error) {
	dbUser := &database.User{
		Email:        email,
		MobileNumber: mobileNumber,
		IsActive:     true,
		IsAdmin:      false,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateIdentifier
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// FindByIdentifier retrieves a user by email or mobile number.
func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", identifier).
		WhereOr("mobile_number = ?", identifier).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by identifier: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// FindByID retrieves a user by its surrogate identifier.
func (r *Repository) FindByID(ctx context.Context, id int64) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// UpdateProfile updates full_name and/or mobile_number and returns the new
// snapshot. At least one field must be provided.
func (r *Repository) UpdateProfile(ctx context.Context, userID int64, fullName, mobileNumber *string) (*User, error) {
	if fullName == nil && mobileNumber == nil {
		return nil, ErrNoFieldsToUpdate
	}

	q := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("updated_at = NOW()").
		Where("id = ?", userID)

	if fullName != nil {
		q = q.Set("full_name = ?", *fullName)
	}
	if mobileNumber != nil {
		q = q.Set("mobile_number = ?", *mobileNumber)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateIdentifier
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.FindByID(ctx, userID)
}

// mapDBUserToModel converts the database model to the domain snapshot.
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Email:        dbu.Email,
		MobileNumber: dbu.MobileNumber,
		FullName:     dbu.FullName,
		IsActive:     dbu.IsActive,
		IsAdmin:      dbu.IsAdmin,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
