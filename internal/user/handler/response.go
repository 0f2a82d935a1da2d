package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hacktopia/platform/internal/auth"
	"github.com/hacktopia/platform/internal/response"
	"github.com/hacktopia/platform/internal/user/model"
)

// Response codes of the auth and profile endpoints.
const (
	CodeUserCreated         = "USER_CREATED"
	CodeLoggedIn            = "LOGGED_IN_SUCCESSFULLY"
	CodeOTPSent             = "OTP_SENT_SUCCESSFULLY"
	CodeOTPNotSent          = "OTP_NOT_SENT"
	CodeOTPVerified         = "OTP_VERIFICATION_SUCCESSFULLY"
	CodeInvalidOTP          = "INVALID_OTP"
	CodeOTPExpired          = "OTP_EXPIRED"
	CodePasswordsDoNotMatch = "PASSWORDS_DO_NOT_MATCH"
	CodePasswordChanged     = "PASSWORD_CHANGED_SUCCESSFULLY"
	CodeUsernameAvailable   = "USERNAME_AVAILABLE"
	CodeUsernameExists      = "USERNAME_ALREADY_EXISTS"
	CodeEmailExists         = "EMAIL_ALREADY_EXISTS"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeIncorrectPassword   = "INCORRECT_PASSWORD"
	CodeTokenValid          = "TOKEN_VALID"
	CodeProfileFetched      = "PROFILE_FETCHED"
	CodeProfileUpdated      = "PROFILE_UPDATED"
	CodeProfileCreated      = "PROFILE_CREATED"
	CodeProfileNotFound     = "PROFILE_NOT_FOUND"
	CodeInvalidFile         = "INVALID_FILE"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{model.ErrMissingFields, http.StatusBadRequest, response.CodeAllFieldsRequired, "Please enter all fields"},
	{model.ErrEmailExists, http.StatusBadRequest, CodeEmailExists, "Email already exists"},
	{model.ErrUsernameExists, http.StatusBadRequest, CodeUsernameExists, "Username already exists"},
	{model.ErrUserNotFound, http.StatusBadRequest, CodeUserNotFound, "User not found"},
	{model.ErrIncorrectPassword, http.StatusBadRequest, CodeIncorrectPassword, "Incorrect password"},
	{model.ErrPasswordsDoNotMatch, http.StatusBadRequest, CodePasswordsDoNotMatch, "Passwords do not match"},
	{model.ErrInvalidOTP, http.StatusBadRequest, CodeInvalidOTP, "Invalid OTP"},
	{model.ErrOTPExpired, http.StatusBadRequest, CodeOTPExpired, "OTP expired"},
	{model.ErrOTPAmbiguous, http.StatusBadRequest, response.CodeAllFieldsRequired, "userId is required for this OTP"},
	{model.ErrOTPNotSent, http.StatusInternalServerError, CodeOTPNotSent, "OTP could not be sent"},
	{model.ErrProfileNotFound, http.StatusBadRequest, CodeProfileNotFound, "Profile not found"},
	{model.ErrInvalidFile, http.StatusBadRequest, CodeInvalidFile, "Only image files up to 10MB are allowed"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid token"},
}

// writeError maps a service error to its envelope. Unknown errors are logged
// and answered with a generic 500.
func writeError(c *gin.Context, logger *zap.SugaredLogger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			response.Fail(c, m.status, m.code, m.message)
			return
		}
	}

	logger.Errorw("request failed", "path", c.FullPath(), "error", err)
	response.Internal(c)
}
