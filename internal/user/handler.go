package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/hirel/referral-network/internal/httputil"
	"github.com/hirel/referral-network/internal/logging"
)

// MobileNumberPattern is a loose E.164 check shared by the profile and OTP
// request handlers.
var MobileNumberPattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// ProfileStore is the persistence surface the profile handlers need.
type ProfileStore interface {
	UpdateProfile(ctx context.Context, userID int64, fullName, mobileNumber *string) (*User, error)
}

// Handler contains HTTP handlers for the /users/me endpoints.
type Handler struct {
	store ProfileStore
}

func NewHandler(store ProfileStore) *Handler {
	return &Handler{store: store}
}

// ProfileUpdateRequest is the body for PUT /users/me.
type ProfileUpdateRequest struct {
	FullName     *string `json:"full_name"`
	MobileNumber *string `json:"mobile_number"`
}

// Me returns the authenticated user's details.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	current, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "could not validate credentials", httputil.CodeUnauthorized, http.StatusUnauthorized)
		return
	}

	httputil.RespondJSON(w, current, http.StatusOK)
}

// UpdateMe updates the authenticated user's full name and/or mobile number.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	current, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "could not validate credentials", httputil.CodeUnauthorized, http.StatusUnauthorized)
		return
	}

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid profile update body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.MobileNumber != nil && !MobileNumberPattern.MatchString(*req.MobileNumber) {
		httputil.RespondErrorWithCode(w, "invalid mobile number format", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	updated, err := h.store.UpdateProfile(r.Context(), current.ID, req.FullName, req.MobileNumber)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoFieldsToUpdate):
			httputil.RespondErrorWithCode(w, "no fields provided for update", httputil.CodeValidationFailed, http.StatusBadRequest)
		case errors.Is(err, ErrDuplicateIdentifier):
			logger.Warn("profile update failed: mobile number collision", "user_id", current.ID)
			httputil.RespondErrorWithCode(w, "mobile number already registered by another user", httputil.CodeConflict, http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		default:
			logger.Error("profile update failed", "user_id", current.ID, "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update profile", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("profile updated", "user_id", updated.ID)
	httputil.RespondJSON(w, updated, http.StatusOK)
}
