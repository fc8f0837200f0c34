package job

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hirel/referral-network/internal/httputil"
	"github.com/hirel/referral-network/internal/logging"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Store is the persistence surface the job handlers need.
type Store interface {
	Create(ctx context.Context, params CreateParams) (*JobPost, error)
	GetByID(ctx context.Context, id uuid.UUID) (*JobPost, error)
	List(ctx context.Context, params SearchParams) ([]*JobPost, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*JobPost, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DistinctValues(ctx context.Context, column string) ([]string, error)
}

// Handler contains HTTP handlers for job posting endpoints.
type Handler struct {
	store Store
	cache *SuggestionCache
}

// NewHandler creates a job handler. The cache may be nil; suggestions then
// always hit the database.
func NewHandler(store Store, cache *SuggestionCache) *Handler {
	return &Handler{store: store, cache: cache}
}

// CreateJobRequest is the body for POST /jobs.
type CreateJobRequest struct {
	RoleName        string  `json:"role_name"`
	DepartmentName  *string `json:"department_name"`
	Location        *string `json:"location"`
	CompanyName     string  `json:"company_name"`
	ContactEmail    *string `json:"contact_email"`
	ApplicationLink *string `json:"application_link"`
	JobDescription  string  `json:"job_description"`
	ReferralStatus  *string `json:"referral_status"`
}

// UpdateJobRequest is the body for PUT /jobs/{id}; nil fields are unchanged.
type UpdateJobRequest struct {
	RoleName        *string `json:"role_name"`
	DepartmentName  *string `json:"department_name"`
	Location        *string `json:"location"`
	CompanyName     *string `json:"company_name"`
	ContactEmail    *string `json:"contact_email"`
	ApplicationLink *string `json:"application_link"`
	JobDescription  *string `json:"job_description"`
	ReferralStatus  *string `json:"referral_status"`
}

// SuggestionList is the payload of the suggestion endpoints.
type SuggestionList struct {
	Suggestions []string `json:"suggestions"`
}

// Create handles POST /jobs.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.RoleName == "" || req.CompanyName == "" || req.JobDescription == "" {
		httputil.RespondErrorWithCode(w, "role_name, company_name and job_description are required", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}
	if req.ApplicationLink != nil && !isValidURL(*req.ApplicationLink) {
		httputil.RespondErrorWithCode(w, "application_link must be a valid URL", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	created, err := h.store.Create(r.Context(), CreateParams{
		RoleName:        req.RoleName,
		DepartmentName:  req.DepartmentName,
		Location:        req.Location,
		CompanyName:     req.CompanyName,
		ContactEmail:    req.ContactEmail,
		ApplicationLink: req.ApplicationLink,
		JobDescription:  req.JobDescription,
		ReferralStatus:  req.ReferralStatus,
	})
	if err != nil {
		logger.Error("job creation failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create job", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("job created", "job_id", created.ID)
	httputil.RespondJSON(w, created, http.StatusCreated)
}

// List handles GET /jobs with optional substring filters and pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	query := r.URL.Query()

	params := SearchParams{
		RoleName:       query.Get("role_name"),
		CompanyName:    query.Get("company_name"),
		Location:       query.Get("location"),
		DepartmentName: query.Get("department_name"),
		Offset:         parseIntParam(query.Get("skip"), 0),
		Limit:          parseIntParam(query.Get("limit"), defaultListLimit),
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	if params.Limit <= 0 || params.Limit > maxListLimit {
		params.Limit = defaultListLimit
	}

	jobs, err := h.store.List(r.Context(), params)
	if err != nil {
		logger.Error("job listing failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list jobs", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, jobs, http.StatusOK)
}

// Get handles GET /jobs/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}

	found, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, r, err, "failed to get job")
		return
	}

	httputil.RespondJSON(w, found, http.StatusOK)
}

// Update handles PUT /jobs/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}

	var req UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.ApplicationLink != nil && !isValidURL(*req.ApplicationLink) {
		httputil.RespondErrorWithCode(w, "application_link must be a valid URL", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	updated, err := h.store.Update(r.Context(), id, UpdateParams{
		RoleName:        req.RoleName,
		DepartmentName:  req.DepartmentName,
		Location:        req.Location,
		CompanyName:     req.CompanyName,
		ContactEmail:    req.ContactEmail,
		ApplicationLink: req.ApplicationLink,
		JobDescription:  req.JobDescription,
		ReferralStatus:  req.ReferralStatus,
	})
	if err != nil {
		h.respondStoreError(w, r, err, "failed to update job")
		return
	}

	httputil.RespondJSON(w, updated, http.StatusOK)
}

// Delete handles DELETE /jobs/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.respondStoreError(w, r, err, "failed to delete job")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RoleNameSuggestions handles GET /jobs/suggestions/role-names.
func (h *Handler) RoleNameSuggestions(w http.ResponseWriter, r *http.Request) {
	h.suggestions(w, r, "role_name")
}

// CompanyNameSuggestions handles GET /jobs/suggestions/company-names.
func (h *Handler) CompanyNameSuggestions(w http.ResponseWriter, r *http.Request) {
	h.suggestions(w, r, "company_name")
}

// LocationSuggestions handles GET /jobs/suggestions/locations.
func (h *Handler) LocationSuggestions(w http.ResponseWriter, r *http.Request) {
	h.suggestions(w, r, "location")
}

// DepartmentNameSuggestions handles GET /jobs/suggestions/department-names.
func (h *Handler) DepartmentNameSuggestions(w http.ResponseWriter, r *http.Request) {
	h.suggestions(w, r, "department_name")
}

// suggestions serves distinct values for a column, cache first. Cache errors
// degrade to a database read.
func (h *Handler) suggestions(w http.ResponseWriter, r *http.Request, column string) {
	logger := logging.FromContext(r.Context())

	if h.cache != nil {
		values, found, err := h.cache.Get(r.Context(), column)
		if err != nil {
			logger.Warn("suggestion cache read failed", "column", column, "error", err.Error())
		} else if found {
			httputil.RespondJSON(w, SuggestionList{Suggestions: values}, http.StatusOK)
			return
		}
	}

	values, err := h.store.DistinctValues(r.Context(), column)
	if err != nil {
		logger.Error("suggestion query failed", "column", column, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to load suggestions", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	if values == nil {
		values = []string{}
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), column, values); err != nil {
			logger.Warn("suggestion cache write failed", "column", column, "error", err.Error())
		}
	}

	httputil.RespondJSON(w, SuggestionList{Suggestions: values}, http.StatusOK)
}

func (h *Handler) jobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid job id", httputil.CodeValidationFailed, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if errors.Is(err, ErrNotFound) {
		httputil.RespondErrorWithCode(w, "job not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}
	logging.FromContext(r.Context()).Error(msg, "error", err.Error())
	httputil.RespondErrorWithCode(w, msg, httputil.CodeInternalError, http.StatusInternalServerError)
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
