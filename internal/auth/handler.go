package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/hirel/referral-network/internal/httputil"
	"github.com/hirel/referral-network/internal/logging"
	"github.com/hirel/referral-network/internal/user"
)

// Handler contains HTTP handlers for the passwordless login endpoints.
type Handler struct {
	service       *Service
	isDevelopment bool
	otpLength     int
}

func NewHandler(service *Service, isDevelopment bool, otpLength int) *Handler {
	return &Handler{
		service:       service,
		isDevelopment: isDevelopment,
		otpLength:     otpLength,
	}
}

// OTPRequest is the body for POST /auth/request-otp. Exactly one of the two
// identifiers must be provided.
type OTPRequest struct {
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
}

// OTPVerifyRequest is the body for POST /auth/verify-otp.
type OTPVerifyRequest struct {
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	OTPCode      string `json:"otp_code"`
}

// MsgResponse is a plain acknowledgement payload.
type MsgResponse struct {
	Msg string `json:"msg"`
}

// RequestOTP issues a one-time code for an email or mobile identifier,
// creating the account on first contact.
func (h *Handler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid otp request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	identifier, ok := h.validateIdentifier(w, req.Email, req.MobileNumber)
	if !ok {
		return
	}

	code, err := h.service.RequestOTP(r.Context(), req.Email, req.MobileNumber)
	if err != nil {
		logger.Error("otp request failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to process OTP request", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	msg := fmt.Sprintf("OTP has been sent to %s.", identifier)
	if h.isDevelopment {
		// Never echoed outside development; production clients only get the
		// acknowledgement.
		msg = fmt.Sprintf("OTP has been sent to %s. (OTP for testing: %s)", identifier, code)
	}

	httputil.RespondJSON(w, MsgResponse{Msg: msg}, http.StatusOK)
}

// VerifyOTP exchanges a valid one-time code for a signed access token.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req OTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid otp verify body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if _, ok := h.validateIdentifier(w, req.Email, req.MobileNumber); !ok {
		return
	}
	if len(req.OTPCode) != h.otpLength {
		httputil.RespondErrorWithCode(w,
			fmt.Sprintf("otp_code must be exactly %d digits", h.otpLength),
			httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	tokens, err := h.service.VerifyOTP(r.Context(), req.Email, req.MobileNumber, req.OTPCode)
	if err != nil {
		if errors.Is(err, ErrInvalidOTP) {
			logger.Warn("otp verification failed")
			httputil.RespondErrorWithCode(w, "invalid or expired OTP", httputil.CodeInvalidOTP, http.StatusBadRequest)
			return
		}
		logger.Error("otp verification failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to verify OTP", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, tokens, http.StatusOK)
}

// validateIdentifier rejects requests carrying both identifiers or neither,
// and checks the shape of whichever one is present. Returns the identifier
// value on success.
func (h *Handler) validateIdentifier(w http.ResponseWriter, email, mobileNumber string) (string, bool) {
	if (email == "") == (mobileNumber == "") {
		httputil.RespondErrorWithCode(w,
			"either email or mobile number must be provided, but not both",
			httputil.CodeIdentifierRequired, http.StatusBadRequest)
		return "", false
	}

	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			httputil.RespondErrorWithCode(w, "invalid email format", httputil.CodeValidationFailed, http.StatusBadRequest)
			return "", false
		}
		return email, true
	}

	if !user.MobileNumberPattern.MatchString(mobileNumber) {
		httputil.RespondErrorWithCode(w, "invalid mobile number format", httputil.CodeValidationFailed, http.StatusBadRequest)
		return "", false
	}
	return mobileNumber, true
}
