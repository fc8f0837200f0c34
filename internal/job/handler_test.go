package job

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*JobPost

	lastSearch    SearchParams
	distinct      map[string][]string
	distinctCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:     make(map[uuid.UUID]*JobPost),
		distinct: make(map[string][]string),
	}
}

func (s *fakeStore) Create(_ context.Context, params CreateParams) (*JobPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	post := &JobPost{
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
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.jobs[post.ID] = post
	return post, nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*JobPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post, ok := s.jobs[id]; ok {
		return post, nil
	}
	return nil, ErrNotFound
}

func (s *fakeStore) List(_ context.Context, params SearchParams) ([]*JobPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSearch = params
	out := make([]*JobPost, 0, len(s.jobs))
	for _, post := range s.jobs {
		out = append(out, post)
	}
	return out, nil
}

func (s *fakeStore) Update(_ context.Context, id uuid.UUID, params UpdateParams) (*JobPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if params.RoleName != nil {
		post.RoleName = *params.RoleName
	}
	if params.CompanyName != nil {
		post.CompanyName = *params.CompanyName
	}
	if params.JobDescription != nil {
		post.JobDescription = *params.JobDescription
	}
	if params.Location != nil {
		post.Location = params.Location
	}
	if params.ReferralStatus != nil {
		post.ReferralStatus = params.ReferralStatus
	}
	post.UpdatedAt = time.Now().UTC()
	return post, nil
}

func (s *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *fakeStore) DistinctValues(_ context.Context, column string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.distinctCalls++
	return s.distinct[column], nil
}

// newJobRouter mounts the handler the way the application router does, so
// chi's URL parameters resolve.
func newJobRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/jobs", h.Create)
	r.Get("/jobs", h.List)
	r.Get("/jobs/suggestions/role-names", h.RoleNameSuggestions)
	r.Get("/jobs/{id}", h.Get)
	r.Put("/jobs/{id}", h.Update)
	r.Delete("/jobs/{id}", h.Delete)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJobHandler_CreateAndGet(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	router := newJobRouter(NewHandler(store, nil))

	rec := doJSON(t, router, http.MethodPost, "/jobs", CreateJobRequest{
		RoleName:        "Backend Engineer",
		CompanyName:     "Acme",
		JobDescription:  "Build APIs",
		Location:        strPtr("Remote"),
		ApplicationLink: strPtr("https://acme.example.com/jobs/1"),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created JobPost
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.ID)
	require.NotNil(t, created.PostingDate)

	rec = doJSON(t, router, http.MethodGet, "/jobs/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched JobPost
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Backend Engineer", fetched.RoleName)
}

func TestJobHandler_CreateValidation(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	router := newJobRouter(NewHandler(store, nil))

	tests := []struct {
		name string
		body CreateJobRequest
	}{
		{name: "missing role name", body: CreateJobRequest{CompanyName: "Acme", JobDescription: "d"}},
		{name: "missing company name", body: CreateJobRequest{RoleName: "SRE", JobDescription: "d"}},
		{name: "missing description", body: CreateJobRequest{RoleName: "SRE", CompanyName: "Acme"}},
		{name: "bad application link", body: CreateJobRequest{
			RoleName: "SRE", CompanyName: "Acme", JobDescription: "d",
			ApplicationLink: strPtr("not a url"),
		}},
		{name: "non-http link", body: CreateJobRequest{
			RoleName: "SRE", CompanyName: "Acme", JobDescription: "d",
			ApplicationLink: strPtr("ftp://acme.example.com"),
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/jobs", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, store.jobs)
}

func TestJobHandler_ListParamParsing(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	router := newJobRouter(NewHandler(store, nil))

	rec := doJSON(t, router, http.MethodGet, "/jobs?role_name=engineer&company_name=acme&skip=20&limit=50", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "engineer", store.lastSearch.RoleName)
	assert.Equal(t, "acme", store.lastSearch.CompanyName)
	assert.Equal(t, 20, store.lastSearch.Offset)
	assert.Equal(t, 50, store.lastSearch.Limit)
}

func TestJobHandler_ListClampsBadPagination(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	router := newJobRouter(NewHandler(store, nil))

	rec := doJSON(t, router, http.MethodGet, "/jobs?skip=-5&limit=9999", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, store.lastSearch.Offset)
	assert.Equal(t, defaultListLimit, store.lastSearch.Limit)

	rec = doJSON(t, router, http.MethodGet, "/jobs?skip=abc&limit=abc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, store.lastSearch.Offset)
	assert.Equal(t, defaultListLimit, store.lastSearch.Limit)
}

func TestJobHandler_UnknownIDIsNotFound(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	router := newJobRouter(NewHandler(store, nil))

	missing := uuid.New().String()
	for _, tc := range []struct {
		method string
		body   any
	}{
		{method: http.MethodGet},
		{method: http.MethodPut, body: UpdateJobRequest{RoleName: strPtr("x")}},
		{method: http.MethodDelete},
	} {
		rec := doJSON(t, router, tc.method, "/jobs/"+missing, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "method %s", tc.method)
	}
}

func TestJobHandler_MalformedIDIsBadRequest(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	router := newJobRouter(NewHandler(store, nil))

	rec := doJSON(t, router, http.MethodGet, "/jobs/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobHandler_UpdateAndDelete(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	router := newJobRouter(NewHandler(store, nil))

	created, err := store.Create(context.Background(), CreateParams{
		RoleName: "SRE", CompanyName: "Acme", JobDescription: "ops",
	})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPut, "/jobs/"+created.ID.String(), UpdateJobRequest{
		RoleName:       strPtr("Senior SRE"),
		ReferralStatus: strPtr("open"),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated JobPost
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Senior SRE", updated.RoleName)
	assert.Equal(t, "Acme", updated.CompanyName)
	require.NotNil(t, updated.ReferralStatus)
	assert.Equal(t, "open", *updated.ReferralStatus)

	rec = doJSON(t, router, http.MethodDelete, "/jobs/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/jobs/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobHandler_SuggestionsWithoutCache(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.distinct["role_name"] = []string{"Backend Engineer", "SRE"}
	router := newJobRouter(NewHandler(store, nil))

	rec := doJSON(t, router, http.MethodGet, "/jobs/suggestions/role-names", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SuggestionList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Backend Engineer", "SRE"}, resp.Suggestions)
}

func TestJobHandler_SuggestionsNeverNull(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	router := newJobRouter(NewHandler(store, nil))

	rec := doJSON(t, router, http.MethodGet, "/jobs/suggestions/role-names", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"suggestions": []}`, rec.Body.String())
}

func TestJobHandler_SuggestionsCacheHitSkipsStore(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.distinct["role_name"] = []string{"Backend Engineer"}

	cache, _ := newTestCache(t, time.Minute)
	router := newJobRouter(NewHandler(store, cache))

	// First read warms the cache from the store.
	rec := doJSON(t, router, http.MethodGet, "/jobs/suggestions/role-names", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, store.distinctCalls)

	// Second read is served from the cache.
	rec = doJSON(t, router, http.MethodGet, "/jobs/suggestions/role-names", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.distinctCalls)

	var resp SuggestionList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Backend Engineer"}, resp.Suggestions)
}

func TestJobHandler_SuggestionsDegradeWhenCacheDown(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.distinct["role_name"] = []string{"Backend Engineer"}

	cache, mr := newTestCache(t, time.Minute)
	mr.Close()
	router := newJobRouter(NewHandler(store, cache))

	rec := doJSON(t, router, http.MethodGet, "/jobs/suggestions/role-names", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SuggestionList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Backend Engineer"}, resp.Suggestions)
}
