package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the bun table model for identity records. Exactly one of Email and
// MobileNumber is guaranteed non-null for users created via the OTP flow.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Email        *string   `bun:"email,unique,nullzero"`
	MobileNumber *string   `bun:"mobile_number,unique,nullzero"`
	FullName     *string   `bun:"full_name,nullzero"`
	IsActive     bool      `bun:"is_active,notnull,default:true"`
	IsAdmin      bool      `bun:"is_admin,notnull,default:false"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// OTP is the bun table model for one-time codes. The identifier the code was
// issued to is stored in the matching column; the other stays null.
type OTP struct {
	bun.BaseModel `bun:"table:otps,alias:o"`

	ID           int64     `bun:"id,pk,autoincrement"`
	UserID       *int64    `bun:"user_id,nullzero"`
	Email        *string   `bun:"email,nullzero"`
	MobileNumber *string   `bun:"mobile_number,nullzero"`
	Code         string    `bun:"otp_code,notnull"`
	ExpiresAt    time.Time `bun:"expires_at,notnull"`
	Used         bool      `bun:"used,notnull,default:false"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// JobPost is the bun table model for job postings.
type JobPost struct {
	bun.BaseModel `bun:"table:job_posts,alias:j"`

	ID              uuid.UUID  `bun:"id,pk,type:uuid"`
	PostingDate     *time.Time `bun:"posting_date,nullzero"`
	RoleName        string     `bun:"role_name,notnull"`
	DepartmentName  *string    `bun:"department_name,nullzero"`
	Location        *string    `bun:"location,nullzero"`
	CompanyName     string     `bun:"company_name,notnull"`
	ContactEmail    *string    `bun:"contact_email,nullzero"`
	ApplicationLink *string    `bun:"application_link,nullzero"`
	JobDescription  string     `bun:"job_description,notnull"`
	ReferralStatus  *string    `bun:"referral_status,nullzero"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
