// Package handler provides HTTP handlers for auth and profile endpoints.
package handler

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hacktopia/platform/internal/auth"
	"github.com/hacktopia/platform/internal/response"
	"github.com/hacktopia/platform/internal/user/model"
	"github.com/hacktopia/platform/internal/user/service"
	"github.com/hacktopia/platform/internal/user/storage"
)

// pictureField is the multipart field carrying the profile picture.
const pictureField = "user_profile"

// Handler handles HTTP requests for auth and profile endpoints.
type Handler struct {
	service service.Service
	files   storage.Storage
	strict  bool
	logger  *zap.SugaredLogger
}

// New creates a new handler. In strict mode body user ids must match the token subject.
func New(svc service.Service, files storage.Storage, strict bool, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, files: files, strict: strict, logger: logger}
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FieldsRequired(c)
		return
	}

	session, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.Success(c, CodeUserCreated, "User created successfully", gin.H{
		"token":  session.Token,
		"userId": session.UserID,
	})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FieldsRequired(c)
		return
	}

	session, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.Success(c, CodeLoggedIn, "Logged in successfully", gin.H{
		"token":  session.Token,
		"userId": session.UserID,
	})
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FieldsRequired(c)
		return
	}

	reset, err := h.service.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.Success(c, CodeOTPSent, "OTP sent successfully", gin.H{
		"token":  reset.Token,
		"userId": reset.UserID,
	})
}

// VerifyOTP handles POST /auth/verify-otp.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req model.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FieldsRequired(c)
		return
	}

	session, err := h.service.VerifyOTP(c.Request.Context(), req.OTP, req.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.Success(c, CodeOTPVerified, "OTP verified successfully", gin.H{
		"token":  session.Token,
		"userId": session.UserID,
	})
}

// ResetPassword handles POST /auth/change-password.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FieldsRequired(c)
		return
	}

	if h.strict && auth.UserID(c) != req.UserID {
		response.Fail(c, http.StatusForbidden, response.CodeForbidden, "Forbidden")
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), &req); err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.Success(c, CodePasswordChanged, "Password changed successfully", nil)
}

// CheckUser handles GET /auth/check-user?userName=.
func (h *Handler) CheckUser(c *gin.Context) {
	available, err := h.service.UserNameAvailable(c.Request.Context(), c.Query("userName"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	if !available {
		response.Fail(c, http.StatusBadRequest, CodeUsernameExists, "Username already exists")
		return
	}
	response.Success(c, CodeUsernameAvailable, "Username is available", nil)
}

// ValidateToken handles POST /token/validate.
func (h *Handler) ValidateToken(c *gin.Context) {
	var req model.ValidateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FieldsRequired(c)
		return
	}

	claims, err := h.service.ValidateToken(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, model.ErrMissingFields) {
			response.FieldsRequired(c)
			return
		}
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, model.ErrUserNotFound) {
			response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid token")
			return
		}
		writeError(c, h.logger, err)
		return
	}

	response.Success(c, CodeTokenValid, "Token is valid", gin.H{"user": claims.Identity})
}

// GetProfile handles GET /user/profile.
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.service.GetProfile(c.Request.Context(), auth.UserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.Success(c, CodeProfileFetched, "Profile fetched successfully", gin.H{"profile": profile})
}

// UpdateProfile handles multipart POST /user/profile with optional userName
// and user_profile fields.
func (h *Handler) UpdateProfile(c *gin.Context) {
	req := model.UpdateProfileRequest{UserName: c.PostForm("userName")}

	fileHeader, err := c.FormFile(pictureField)
	switch {
	case err == nil:
		file, openErr := fileHeader.Open()
		if openErr != nil {
			writeError(c, h.logger, openErr)
			return
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				h.logger.Warnw("failed to close upload", "error", closeErr)
			}
		}()
		req.Picture = &model.Upload{Filename: fileHeader.Filename, Size: fileHeader.Size, Content: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		response.FieldsRequired(c)
		return
	}

	result, err := h.service.UpdateProfile(c.Request.Context(), auth.UserID(c), &req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	if result.Created {
		response.Success(c, CodeProfileCreated, "Profile created successfully", gin.H{"profile": result.Profile})
		return
	}
	response.Success(c, CodeProfileUpdated, "Profile updated successfully", gin.H{"profile": result.Profile})
}

// ChangePassword handles POST /user/change-password.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FieldsRequired(c)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), auth.UserID(c), &req); err != nil {
		writeError(c, h.logger, err)
		return
	}

	response.Success(c, CodePasswordChanged, "Password changed successfully", nil)
}

// ServeUpload handles GET /uploads/:file.
func (h *Handler) ServeUpload(c *gin.Context) {
	path, err := h.files.Path(c.Param("file"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.CodeNotFound, "File not found")
		return
	}
	if info, statErr := os.Stat(path); statErr != nil || info.IsDir() {
		response.Fail(c, http.StatusNotFound, response.CodeNotFound, "File not found")
		return
	}

	c.File(path)
}
