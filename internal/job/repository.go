package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/hirel/referral-network/internal/database"
)

var (
	ErrNotFound         = errors.New("job not found")
	ErrInvalidAttribute = errors.New("invalid suggestion attribute")
)

// suggestionColumns whitelists the columns the suggestion endpoints may ask
// distinct values for.
var suggestionColumns = map[string]bool{
	"role_name":       true,
	"company_name":    true,
	"location":        true,
	"department_name": true,
}

// Repository handles job posting persistence.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new posting. The server assigns the id and posting date.
func (r *Repository) Create(ctx context.Context, params CreateParams) (*JobPost, error) {
	now := time.Now().UTC()
	dbJob := &database.JobPost{
		ID:              uuid.New(),
		PostingDate:     &now,
		RoleName:        params.RoleName,
		DepartmentName:  params.DepartmentName,
		Location:        params.Location,
		CompanyName:     params.CompanyName,
		ContactEmail:    params.ContactEmail,
		ApplicationLink: params.ApplicationLink,
		JobDescription:  params.JobDescription,
		ReferralStatus:  params.ReferralStatus,
	}

	_, err := r.db.NewInsert().
		Model(dbJob).
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return mapDBJobToModel(dbJob), nil
}

// GetByID retrieves a posting by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*JobPost, error) {
	dbJob := new(database.JobPost)
	err := r.db.NewSelect().
		Model(dbJob).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return mapDBJobToModel(dbJob), nil
}

// List retrieves postings matching the filters, newest posting date first.
func (r *Repository) List(ctx context.Context, params SearchParams) ([]*JobPost, error) {
	var dbJobs []*database.JobPost

	q := r.db.NewSelect().Model(&dbJobs)

	if params.RoleName != "" {
		q = q.Where("role_name ILIKE ?", "%"+params.RoleName+"%")
	}
	if params.CompanyName != "" {
		q = q.Where("company_name ILIKE ?", "%"+params.CompanyName+"%")
	}
	if params.Location != "" {
		q = q.Where("location ILIKE ?", "%"+params.Location+"%")
	}
	if params.DepartmentName != "" {
		q = q.Where("department_name ILIKE ?", "%"+params.DepartmentName+"%")
	}

	err := q.Order("posting_date DESC").
		Offset(params.Offset).
		Limit(params.Limit).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	jobs := make([]*JobPost, 0, len(dbJobs))
	for _, dbJob := range dbJobs {
		jobs = append(jobs, mapDBJobToModel(dbJob))
	}
	return jobs, nil
}

// Update applies a partial update and returns the new snapshot.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*JobPost, error) {
	q := r.db.NewUpdate().
		Model((*database.JobPost)(nil)).
		Set("updated_at = NOW()").
		Where("id = ?", id)

	if params.RoleName != nil {
		q = q.Set("role_name = ?", *params.RoleName)
	}
	if params.DepartmentName != nil {
		q = q.Set("department_name = ?", *params.DepartmentName)
	}
	if params.Location != nil {
		q = q.Set("location = ?", *params.Location)
	}
	if params.CompanyName != nil {
		q = q.Set("company_name = ?", *params.CompanyName)
	}
	if params.ContactEmail != nil {
		q = q.Set("contact_email = ?", *params.ContactEmail)
	}
	if params.ApplicationLink != nil {
		q = q.Set("application_link = ?", *params.ApplicationLink)
	}
	if params.JobDescription != nil {
		q = q.Set("job_description = ?", *params.JobDescription)
	}
	if params.ReferralStatus != nil {
		q = q.Set("referral_status = ?", *params.ReferralStatus)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes a posting.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.JobPost)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// DistinctValues returns the distinct non-null, non-empty values of a
// whitelisted column, for search suggestions.
func (r *Repository) DistinctValues(ctx context.Context, column string) ([]string, error) {
	if !suggestionColumns[column] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAttribute, column)
	}

	var values []string
	err := r.db.NewSelect().
		Model((*database.JobPost)(nil)).
		ColumnExpr("DISTINCT ?", bun.Ident(column)).
		Where("? IS NOT NULL", bun.Ident(column)).
		Where("? <> ''", bun.Ident(column)).
		Scan(ctx, &values)

	if err != nil {
		return nil, fmt.Errorf("failed to get distinct %s values: %w", column, err)
	}

	return values, nil
}

func mapDBJobToModel(dbj *database.JobPost) *JobPost {
	return &JobPost{
		ID:              dbj.ID,
		PostingDate:     dbj.PostingDate,
		RoleName:        dbj.RoleName,
		DepartmentName:  dbj.DepartmentName,
		Location:        dbj.Location,
		CompanyName:     dbj.CompanyName,
		ContactEmail:    dbj.ContactEmail,
		ApplicationLink: dbj.ApplicationLink,
		JobDescription:  dbj.JobDescription,
		ReferralStatus:  dbj.ReferralStatus,
		CreatedAt:       dbj.CreatedAt,
		UpdatedAt:       dbj.UpdatedAt,
	}
}
