package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/hirel/referral-network/internal/httputil"
	"github.com/hirel/referral-network/internal/logging"
	"github.com/hirel/referral-network/internal/user"
)

// Middleware resolves the acting identity for protected routes. Two bearer
// shapes are accepted, distinguished only by value: the static automation
// secret, and a signed access token. Automation wins when both would match.
type Middleware struct {
	users  UserStore
	tokens TokenService
	logger *logging.Logger

	automationToken  string
	automationUserID int64
}

func NewMiddleware(users UserStore, tokens TokenService, logger *logging.Logger, automationToken string, automationUserID int64) *Middleware {
	return &Middleware{
		users:            users,
		tokens:           tokens,
		logger:           logger,
		automationToken:  automationToken,
		automationUserID: automationUserID,
	}
}

// RequireUser resolves the bearer credential to a user and stores it in the
// request context. Every failure path is collapsed into one opaque 401; the
// root cause stays in the server logs.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			m.unauthorized(w, "missing or malformed authorization header")
			return
		}

		if m.automationToken != "" &&
			subtle.ConstantTimeCompare([]byte(token), []byte(m.automationToken)) == 1 {
			automationUser, err := m.users.FindByID(r.Context(), m.automationUserID)
			if err != nil {
				// The automation identity is provisioned out of band; its
				// absence is a deployment error, not a bad credential.
				m.logger.Error("automation identity cannot be resolved",
					"automation_user_id", m.automationUserID,
					"error", err.Error(),
				)
				httputil.RespondErrorWithCode(w, "server misconfiguration", httputil.CodeInternalError, http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(user.NewContext(r.Context(), automationUser)))
			return
		}

		claims, err := m.tokens.VerifyToken(token)
		if err != nil {
			m.unauthorized(w, "token verification failed: "+err.Error())
			return
		}

		actingUser, err := m.users.FindByID(r.Context(), claims.UserID)
		if err != nil {
			// Covers a valid token for a since-deleted user.
			m.unauthorized(w, "token subject not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(user.NewContext(r.Context(), actingUser)))
	})
}

// RequireActiveUser resolves the user and fails closed when the account is
// inactive.
func (m *Middleware) RequireActiveUser(next http.Handler) http.Handler {
	return m.RequireUser(m.activeGate(next))
}

// RequireAdmin resolves the user and fails closed unless the account is both
// active and an admin.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireUser(m.activeGate(m.adminGate(next)))
}

// AdminOnly applies just the admin gate. Intended for routes already behind
// RequireUser or RequireActiveUser, so the credential is not resolved twice.
func (m *Middleware) AdminOnly(next http.Handler) http.Handler {
	return m.adminGate(next)
}

func (m *Middleware) activeGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current, ok := user.FromContext(r.Context())
		if !ok || !current.IsActive {
			httputil.RespondErrorWithCode(w, "inactive user", httputil.CodeForbidden, http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) adminGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current, ok := user.FromContext(r.Context())
		if !ok || !current.IsAdmin {
			httputil.RespondErrorWithCode(w, "the user doesn't have enough privileges", httputil.CodeForbidden, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) unauthorized(w http.ResponseWriter, reason string) {
	m.logger.Warn("authentication failed", "reason", reason)
	w.Header().Set("WWW-Authenticate", "Bearer")
	httputil.RespondErrorWithCode(w, "could not validate credentials", httputil.CodeUnauthorized, http.StatusUnauthorized)
}

// bearerToken extracts the credential from the standard authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
