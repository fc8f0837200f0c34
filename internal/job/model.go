package job

import (
	"time"

	"github.com/google/uuid"
)

// JobPost is an immutable snapshot of a job posting.
type JobPost struct {
	ID              uuid.UUID  `json:"id"`
	PostingDate     *time.Time `json:"posting_date"`
	RoleName        string     `json:"role_name"`
	DepartmentName  *string    `json:"department_name"`
	Location        *string    `json:"location"`
	CompanyName     string     `json:"company_name"`
	ContactEmail    *string    `json:"contact_email"`
	ApplicationLink *string    `json:"application_link"`
	JobDescription  string     `json:"job_description"`
	ReferralStatus  *string    `json:"referral_status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateParams carries the fields a client may set on creation. The server
// assigns the id and posting date.
type CreateParams struct {
	RoleName        string
	DepartmentName  *string
	Location        *string
	CompanyName     string
	ContactEmail    *string
	ApplicationLink *string
	JobDescription  string
	ReferralStatus  *string
}

// UpdateParams is a partial update; nil fields are left untouched.
type UpdateParams struct {
	RoleName        *string
	DepartmentName  *string
	Location        *string
	CompanyName     *string
	ContactEmail    *string
	ApplicationLink *string
	JobDescription  *string
	ReferralStatus  *string
}

// SearchParams are optional case-insensitive substring filters, AND-combined.
type SearchParams struct {
	RoleName       string
	CompanyName    string
	Location       string
	DepartmentName string
	Offset         int
	Limit          int
}
