package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hirel/referral-network/internal/user"
)

func strPtr(s string) *string { return &s }

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	mu     sync.Mutex
	users  map[int64]*user.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*user.User)}
}

func (s *fakeUserStore) add(u *user.User) *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		s.nextID++
		u.ID = s.nextID
	} else if u.ID > s.nextID {
		s.nextID = u.ID
	}
	s.users[u.ID] = u
	return u
}

func (s *fakeUserStore) FindByIdentifier(_ context.Context, identifier string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if (u.Email != nil && *u.Email == identifier) ||
			(u.MobileNumber != nil && *u.MobileNumber == identifier) {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *fakeUserStore) FindByID(_ context.Context, id int64) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (s *fakeUserStore) Create(_ context.Context, email, mobileNumber *string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now().UTC()
	u := &user.User{
		ID:           s.nextID,
		Email:        email,
		MobileNumber: mobileNumber,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	return u, nil
}

// fakeOTPStore is an in-memory OTPStore with the same atomic consume
// semantics as the Postgres repository.
type fakeOTPStore struct {
	mu      sync.Mutex
	records map[int64]*OTPRecord
	nextID  int64
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{records: make(map[int64]*OTPRecord)}
}

func (s *fakeOTPStore) Create(_ context.Context, userID int64, email, mobileNumber *string, code string, expiresAt time.Time) (*OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec := &OTPRecord{
		ID:           s.nextID,
		UserID:       &userID,
		Email:        email,
		MobileNumber: mobileNumber,
		Code:         code,
		ExpiresAt:    expiresAt,
		CreatedAt:    time.Now().UTC(),
	}
	s.records[rec.ID] = rec
	return rec, nil
}

func (s *fakeOTPStore) FindValid(_ context.Context, userID int64, code string, now time.Time) (*OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *OTPRecord
	for _, rec := range s.records {
		if rec.UserID == nil || *rec.UserID != userID || rec.Code != code || rec.Used {
			continue
		}
		if !rec.ExpiresAt.After(now) {
			continue
		}
		if newest == nil || rec.CreatedAt.After(newest.CreatedAt) {
			newest = rec
		}
	}
	if newest == nil {
		return nil, ErrOTPNotFound
	}
	copied := *newest
	return &copied, nil
}

func (s *fakeOTPStore) Consume(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok || rec.Used {
		return ErrOTPAlreadyUsed
	}
	rec.Used = true
	return nil
}

// expire rewrites a stored record's expiry, simulating the passage of time.
func (s *fakeOTPStore) expire(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		rec.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	}
}

func (s *fakeOTPStore) lastID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID
}

// fakeEmailService records deliveries on a channel so tests can wait for the
// fire-and-forget goroutine.
type fakeEmailService struct {
	sent chan string
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{sent: make(chan string, 16)}
}

func (s *fakeEmailService) SendOTPEmail(_ context.Context, toEmail, code string, _ time.Duration) error {
	s.sent <- toEmail + ":" + code
	return nil
}

// trackingTokenService counts verification calls on top of a real service.
type trackingTokenService struct {
	TokenService
	verifyCalls atomic.Int32
}

func (s *trackingTokenService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	s.verifyCalls.Add(1)
	return s.TokenService.VerifyToken(tokenStr)
}
